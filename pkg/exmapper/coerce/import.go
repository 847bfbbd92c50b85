package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/translate"
)

// ToFieldValue converts a raw cell into a value of the declared kind.
// table is the parsed def.Translation; when nil and def.Translation is
// set, the expression is parsed on the fly.
func ToFieldValue(raw models.RawCell, kind Kind, def models.ColumnDefinition, table *translate.Table) (any, error) {
	if def.Translation != "" && !raw.Absent() {
		if table == nil {
			var err error
			table, err = translate.Parse(def.Translation, def.TranslationDelimiter, def.TranslationKVDelimiter)
			if err != nil {
				return nil, err
			}
		}
		text := raw.String()
		if code := table.Reverse(text); code != text {
			raw = models.TextCell(code)
		}
	}

	var (
		v   any
		err error
	)
	switch {
	case kind == KindString:
		v = toString(raw, def)
	case kind.Numeric():
		v, err = toNumber(raw, kind)
	case kind == KindBool:
		v, err = toBool(raw)
	case kind == KindTime:
		v, err = toTime(raw, def)
	default:
		err = fmt.Errorf("unsupported field kind %v", kind)
	}
	if err != nil {
		return nil, models.CoercionError(def.FieldName, err)
	}
	return v, nil
}

func toString(raw models.RawCell, def models.ColumnDefinition) string {
	if raw.Kind == models.ValueNumber && raw.IsDate {
		t, err := excelize.ExcelDateToTime(raw.Number, false)
		if err == nil {
			if def.DateFormat != "" {
				return FormatDate(t, def.DateFormat)
			}
			return t.Format(TimeLayout)
		}
	}

	s := raw.String()
	if strings.HasSuffix(s, ".0") && isNumeric(s) {
		return strings.TrimSuffix(s, ".0")
	}
	return s
}

func toNumber(raw models.RawCell, kind Kind) (any, error) {
	var d decimal.Decimal
	switch raw.Kind {
	case models.ValueAbsent:
		return kind.Zero(), nil
	case models.ValueNumber:
		if kind == KindFloat64 {
			return raw.Number, nil
		}
		d = decimal.NewFromFloat(raw.Number)
	case models.ValueBool:
		if raw.Bool {
			d = decimal.NewFromInt(1)
		}
	default:
		s := strings.TrimSpace(raw.Text)
		if s == "" {
			return kind.Zero(), nil
		}
		if kind == KindFloat64 || kind == KindFloat32 {
			bits := 64
			if kind == KindFloat32 {
				bits = 32
			}
			f, err := strconv.ParseFloat(s, bits)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", s)
			}
			if kind == KindFloat32 {
				return float32(f), nil
			}
			return f, nil
		}
		var err error
		d, err = decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
	}

	switch kind {
	case KindInt:
		if err := checkRange(d, math.MinInt, math.MaxInt); err != nil {
			return nil, err
		}
		return int(d.IntPart()), nil
	case KindInt64:
		if err := checkRange(d, math.MinInt64, math.MaxInt64); err != nil {
			return nil, err
		}
		return d.IntPart(), nil
	case KindFloat32:
		return float32(d.InexactFloat64()), nil
	case KindFloat64:
		return d.InexactFloat64(), nil
	default:
		return d, nil
	}
}

// checkRange fails when the integer part of d does not fit in [lo, hi].
func checkRange(d decimal.Decimal, lo, hi int64) error {
	whole := d.Truncate(0)
	if whole.LessThan(decimal.NewFromInt(lo)) || whole.GreaterThan(decimal.NewFromInt(hi)) {
		return fmt.Errorf("%s is out of range", d.String())
	}
	return nil
}

func toBool(raw models.RawCell) (bool, error) {
	switch raw.Kind {
	case models.ValueAbsent:
		return false, nil
	case models.ValueBool:
		return raw.Bool, nil
	case models.ValueNumber:
		return raw.Number != 0, nil
	}
	s := strings.TrimSpace(raw.Text)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", s)
	}
	return b, nil
}

func toTime(raw models.RawCell, def models.ColumnDefinition) (time.Time, error) {
	switch raw.Kind {
	case models.ValueAbsent:
		return time.Time{}, nil
	case models.ValueNumber:
		t, err := excelize.ExcelDateToTime(raw.Number, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %v: %w", raw.Number, err)
		}
		return t, nil
	case models.ValueText:
	default:
		return time.Time{}, fmt.Errorf("cell %q is not a date", raw.String())
	}

	s := strings.TrimSpace(raw.Text)
	if s == "" {
		return time.Time{}, nil
	}
	if def.DateFormat != "" {
		t, err := ParseDate(s, def.DateFormat)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q does not match date format %q", s, def.DateFormat)
		}
		return t, nil
	}
	if t, ok := parseAnyDate(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is not a date", s)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
