package schema

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// Getter reads a field value from a record.
type Getter[T any] func(rec *T) (any, error)

// Setter assigns a coerced value to a record field.
type Setter[T any] func(rec *T, v any) error

// Field is one declared field of T with its column attachments.
type Field[T any] struct {
	Name string
	Kind coerce.Kind
	Get  Getter[T]
	Set  Setter[T]

	columns []models.ColumnDefinition
}

// Also attaches another column to the field, e.g. to export it twice
// with different formats.
func (f Field[T]) Also(opts ...ColumnOption) Field[T] {
	cols := make([]models.ColumnDefinition, len(f.columns), len(f.columns)+1)
	copy(cols, f.columns)
	f.columns = append(cols, newDefinition(f.Name, opts))
	return f
}

// Columns returns the column attachments in declaration order.
func (f Field[T]) Columns() []models.ColumnDefinition {
	out := make([]models.ColumnDefinition, len(f.columns))
	copy(out, f.columns)
	return out
}

// Bare declares a field without any column attachment. Resolve skips it.
func (f Field[T]) Bare() Field[T] {
	f.columns = nil
	return f
}

func newDefinition(name string, opts []ColumnOption) models.ColumnDefinition {
	def := models.NewColumnDefinition(name)
	for _, opt := range opts {
		opt(&def)
	}
	return def
}

// NewField declares a field from an explicit getter/setter pair.
func NewField[T any](name string, kind coerce.Kind, get Getter[T], set Setter[T], opts ...ColumnOption) Field[T] {
	return Field[T]{
		Name:    name,
		Kind:    kind,
		Get:     get,
		Set:     set,
		columns: []models.ColumnDefinition{newDefinition(name, opts)},
	}
}

func typed[T, F any](name string, kind coerce.Kind, ref func(*T) *F, opts []ColumnOption) Field[T] {
	get := func(rec *T) (any, error) {
		return *ref(rec), nil
	}
	set := func(rec *T, v any) error {
		fv, ok := v.(F)
		if !ok {
			return models.CoercionError(name, fmt.Errorf("cannot assign %T to %s field", v, kind))
		}
		*ref(rec) = fv
		return nil
	}
	return NewField[T](name, kind, get, set, opts...)
}

// String declares a string field.
func String[T any](name string, ref func(*T) *string, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindString, ref, opts)
}

// Int declares an int field.
func Int[T any](name string, ref func(*T) *int, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindInt, ref, opts)
}

// Int64 declares an int64 field.
func Int64[T any](name string, ref func(*T) *int64, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindInt64, ref, opts)
}

// Float32 declares a float32 field.
func Float32[T any](name string, ref func(*T) *float32, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindFloat32, ref, opts)
}

// Float64 declares a float64 field.
func Float64[T any](name string, ref func(*T) *float64, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindFloat64, ref, opts)
}

// Decimal declares a decimal field.
func Decimal[T any](name string, ref func(*T) *decimal.Decimal, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindDecimal, ref, opts)
}

// Bool declares a bool field.
func Bool[T any](name string, ref func(*T) *bool, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindBool, ref, opts)
}

// Time declares a time field.
func Time[T any](name string, ref func(*T) *time.Time, opts ...ColumnOption) Field[T] {
	return typed(name, coerce.KindTime, ref, opts)
}

// Nested declares a field whose column reads and writes a nested
// property reached through path. get reports false when a segment of the
// path is absent; set must create missing intermediate values.
func Nested[T any](name, path string, kind coerce.Kind, get func(*T) (any, bool), set Setter[T], opts ...ColumnOption) Field[T] {
	getter := func(rec *T) (any, error) {
		v, ok := get(rec)
		if !ok {
			return nil, models.CoercionError(name, fmt.Errorf("associated path %q is absent", path))
		}
		return v, nil
	}
	opts = append([]ColumnOption{func(d *models.ColumnDefinition) { d.AssociatedPath = path }}, opts...)
	return NewField[T](name, kind, getter, set, opts...)
}
