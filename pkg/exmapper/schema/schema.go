// Package schema declares column descriptor tables for record types and
// resolves them into ordered column lists.
//
// A table is declared once per type, without reflection:
//
//	var users = schema.New("user",
//		schema.String("Name", func(u *User) *string { return &u.Name }, schema.Title("姓名")),
//		schema.Int("Sex", func(u *User) *int { return &u.Sex },
//			schema.Title("性别"), schema.Translate("0=男,1=女,2=未知")),
//	)
//
// Extend lifts the fields of exactly one parent table into a child
// table, the way an embedded struct contributes its own fields.
package schema

import (
	"fmt"
	"sort"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/translate"
)

// Schema is the descriptor table of T.
type Schema[T any] struct {
	name      string
	inherited []Field[T]
	fields    []Field[T]
}

// New returns a table named name holding fields in declaration order.
func New[T any](name string, fields ...Field[T]) *Schema[T] {
	return &Schema[T]{name: name, fields: fields}
}

// Extend returns a table for T that starts with the own fields of base,
// reached through project, followed by fields. Fields base itself
// inherited are not carried over.
func Extend[T, B any](base *Schema[B], project func(*T) *B, name string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{name: name, fields: fields}
	if base == nil {
		return s
	}
	for _, bf := range base.fields {
		s.inherited = append(s.inherited, lift(bf, project))
	}
	return s
}

func lift[T, B any](bf Field[B], project func(*T) *B) Field[T] {
	f := Field[T]{Name: bf.Name, Kind: bf.Kind, columns: bf.columns}
	if bf.Get != nil {
		f.Get = func(rec *T) (any, error) {
			b := project(rec)
			if b == nil {
				return nil, models.CoercionError(bf.Name, fmt.Errorf("embedded value is nil"))
			}
			return bf.Get(b)
		}
	}
	if bf.Set != nil {
		f.Set = func(rec *T, v any) error {
			b := project(rec)
			if b == nil {
				return models.CoercionError(bf.Name, fmt.Errorf("embedded value is nil"))
			}
			return bf.Set(b, v)
		}
	}
	return f
}

// Name returns the table name.
func (s *Schema[T]) Name() string {
	return s.name
}

// Fields returns inherited fields followed by own fields.
func (s *Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], 0, len(s.inherited)+len(s.fields))
	out = append(out, s.inherited...)
	return append(out, s.fields...)
}

// Column is a resolved column of T.
type Column[T any] struct {
	models.ColumnDefinition
	Kind  coerce.Kind
	Table *translate.Table
	Get   Getter[T]
	Set   Setter[T]
}

// Resolve returns the columns taking part in op, ordered by Order and
// then by declaration and attachment order. Translation expressions are
// parsed here so bad metadata fails before any row is touched.
func (s *Schema[T]) Resolve(op models.Operation) ([]Column[T], error) {
	var cols []Column[T]

	for _, f := range s.Fields() {
		for _, def := range f.columns {
			if !def.Matches(op) {
				continue
			}
			if def.Title == "" {
				def.Title = def.FieldName
			}

			col := Column[T]{
				ColumnDefinition: def,
				Kind:             f.Kind,
				Get:              f.Get,
				Set:              f.Set,
			}
			if def.Translation != "" {
				table, err := translate.Parse(def.Translation, def.TranslationDelimiter, def.TranslationKVDelimiter)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", def.Title, err)
				}
				col.Table = table
			}
			if err := validate(col, op); err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
	}

	if len(cols) == 0 {
		return nil, models.ConfigError("resolve", "%s has no columns for %s", s.describe(), op)
	}

	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Order < cols[j].Order
	})
	return cols, nil
}

func validate[T any](col Column[T], op models.Operation) error {
	if col.Width < 0 || col.Height < 0 {
		return models.ConfigError("resolve", "column %q has negative geometry", col.Title)
	}
	if col.Get == nil && op != models.OpImport {
		return models.ConfigError("resolve", "column %q has no getter", col.Title)
	}
	if col.Set == nil && op != models.OpExport {
		return models.ConfigError("resolve", "column %q has no setter", col.Title)
	}
	return nil
}

func (s *Schema[T]) describe() string {
	if s.name != "" {
		return fmt.Sprintf("schema %q", s.name)
	}
	var zero T
	return fmt.Sprintf("schema of %T", zero)
}
