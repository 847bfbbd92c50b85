package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// Record is a dynamic record. Nested properties are nested maps.
type Record map[string]any

// ParsePath splits a dotted property path such as "dept.leader.name".
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
	}
	return segments, nil
}

// Lookup follows path through nested maps. It reports false when a
// segment is missing or an intermediate value is not a map.
func (r Record) Lookup(path []string) (any, bool) {
	var cur any = map[string]any(r)
	for _, seg := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Assign stores v at path, creating intermediate maps as needed.
// A non-map intermediate value is an error.
func (r Record) Assign(path []string, v any) error {
	if len(path) == 0 {
		return errors.New("empty path")
	}
	if r == nil {
		return errors.New("assignment to nil record")
	}
	m := map[string]any(r)
	for i, seg := range path[:len(path)-1] {
		next, ok := m[seg]
		if !ok || next == nil {
			child := map[string]any{}
			m[seg] = child
			m = child
			continue
		}
		child, ok := asMap(next)
		if !ok {
			return fmt.Errorf("%s is a %T, not an object", strings.Join(path[:i+1], "."), next)
		}
		m = child
	}
	m[path[len(path)-1]] = v
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

// RecordField declares a field of a dynamic record. When associate is
// set, the column reads and writes name.associate instead of name; a
// missing segment of the associated path is a coercion error on read.
func RecordField(name string, kind coerce.Kind, associate string, opts ...ColumnOption) (Field[Record], error) {
	full := name
	if associate != "" {
		full = name + "." + associate
	}
	path, err := ParsePath(full)
	if err != nil {
		return Field[Record]{}, models.ConfigError("resolve", "field %q: %v", name, err)
	}

	get := func(rec *Record) (any, error) {
		if associate == "" {
			return (*rec)[name], nil
		}
		v, ok := rec.lookup(path)
		if !ok {
			return nil, models.CoercionError(name, fmt.Errorf("associated path %q is absent", full))
		}
		return v, nil
	}
	set := func(rec *Record, v any) error {
		if *rec == nil {
			*rec = Record{}
		}
		if err := rec.assign(path, v); err != nil {
			return models.CoercionError(name, err)
		}
		return nil
	}

	if associate != "" {
		opts = append([]ColumnOption{func(d *models.ColumnDefinition) { d.AssociatedPath = associate }}, opts...)
	}
	return NewField[Record](name, kind, get, set, opts...), nil
}

func (r *Record) lookup(path []string) (any, bool) {
	if *r == nil {
		return nil, false
	}
	return (*r).Lookup(path)
}

func (r *Record) assign(path []string, v any) error {
	return (*r).Assign(path, v)
}
