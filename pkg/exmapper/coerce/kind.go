// Package coerce converts between typed field values and spreadsheet
// cell values.
//
// Export goes through ToCellValue, import through ToFieldValue. Both
// apply the date format, translation table and cell type of a
// models.ColumnDefinition in a fixed order:
//
//	export: date format > translation > cell type (string/numeric)
//	import: reverse translation > declared field kind
//
// Import is lenient: blank cells mapped to numeric, boolean or time
// fields produce the zero value of the field kind instead of an error.
package coerce

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the declared type of a field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindBool
	KindTime
)

var kindNames = map[Kind]string{
	KindString:  "string",
	KindInt:     "int",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindDecimal: "decimal",
	KindBool:    "bool",
	KindTime:    "time",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a kind name. Empty means string.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return KindString, nil
	case "integer", "long":
		return KindInt64, nil
	case "double", "number":
		return KindFloat64, nil
	case "float":
		return KindFloat32, nil
	case "date", "datetime":
		return KindTime, nil
	case "boolean":
		return KindBool, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindString, fmt.Errorf("unknown field kind %q", s)
}

// Zero returns the zero value of the kind.
func (k Kind) Zero() any {
	switch k {
	case KindInt:
		return 0
	case KindInt64:
		return int64(0)
	case KindFloat32:
		return float32(0)
	case KindFloat64:
		return float64(0)
	case KindDecimal:
		return decimal.Zero
	case KindBool:
		return false
	case KindTime:
		return time.Time{}
	default:
		return ""
	}
}

// Numeric reports whether the kind holds a number.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindInt64, KindFloat32, KindFloat64, KindDecimal:
		return true
	}
	return false
}
