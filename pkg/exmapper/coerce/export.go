package coerce

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/translate"
)

// TimeLayout is used to stringify times of columns without a date format.
const TimeLayout = "2006-01-02 15:04:05"

// ToCellValue converts a field value into a value writable to a cell.
// table is the parsed def.Translation; when nil and def.Translation is
// set, the expression is parsed on the fly. A zero time.Time counts as
// no value.
func ToCellValue(value any, def models.ColumnDefinition, table *translate.Table) (any, error) {
	value = Deref(value)
	if t, ok := value.(time.Time); ok && t.IsZero() {
		value = nil
	}

	if def.DateFormat != "" && value != nil {
		if t, ok := asTime(value); ok {
			return FormatDate(t, def.DateFormat), nil
		}
	}

	if def.Translation != "" && value != nil {
		if table == nil {
			var err error
			table, err = translate.Parse(def.Translation, def.TranslationDelimiter, def.TranslationKVDelimiter)
			if err != nil {
				return nil, err
			}
		}
		return table.Forward(Stringify(value)), nil
	}

	switch def.CellType {
	case models.CellNumeric:
		s := def.DefaultValue
		if value != nil {
			s = Stringify(value)
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, models.CoercionError(def.FieldName, fmt.Errorf("%q is not numeric", s))
		}
		return n, nil
	default:
		if value == nil {
			return def.DefaultValue, nil
		}
		return def.Prefix + Stringify(value) + def.Suffix, nil
	}
}

// Stringify returns the text form of a field value. nil becomes "".
func Stringify(value any) string {
	switch v := Deref(value).(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(TimeLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case decimal.Decimal:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Deref returns the value a pointer points to, or nil for nil pointers.
// Non-pointer values are returned unchanged.
func Deref(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer {
		return value
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		// Dynamic records decoded from JSON carry times as RFC 3339 text.
		t, err := time.Parse(time.RFC3339Nano, v)
		return t, err == nil
	}
	return time.Time{}, false
}
