package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// XLSXReader reads xlsx documents with excelize.
type XLSXReader struct {
	f    *excelize.File
	rows map[string][][]string
}

// OpenXLSX opens an xlsx document from r.
func OpenXLSX(r io.Reader) (Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &XLSXReader{f: f, rows: make(map[string][][]string)}, nil
}

// OpenXLSXFile opens the xlsx document at path.
func OpenXLSXFile(path string) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &XLSXReader{f: f, rows: make(map[string][][]string)}, nil
}

// Close releases the workbook.
func (r *XLSXReader) Close() error {
	return r.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (r *XLSXReader) SheetNames() []string {
	return r.f.GetSheetList()
}

// OpenSheet implements Reader.
func (r *XLSXReader) OpenSheet(name string) (Sheet, error) {
	list := r.f.GetSheetList()
	if name == "" {
		if len(list) == 0 {
			return Sheet{}, ErrSheetNotFound
		}
		return Sheet{Name: list[0], Index: 0}, nil
	}
	for i, s := range list {
		if s == name {
			return Sheet{Name: s, Index: i}, nil
		}
	}
	return Sheet{}, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// sheetRows returns the raw (unformatted) cell text of a sheet. Rows are
// read once per sheet.
func (r *XLSXReader) sheetRows(sh Sheet) ([][]string, error) {
	if rows, ok := r.rows[sh.Name]; ok {
		return rows, nil
	}
	rows, err := r.f.GetRows(sh.Name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	r.rows[sh.Name] = rows
	return rows, nil
}

// RowCount implements Reader.
func (r *XLSXReader) RowCount(sh Sheet) (int, error) {
	rows, err := r.sheetRows(sh)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ColumnCount implements Reader.
func (r *XLSXReader) ColumnCount(sh Sheet, row int) (int, error) {
	rows, err := r.sheetRows(sh)
	if err != nil {
		return 0, err
	}
	if row < 0 || row >= len(rows) {
		return 0, nil
	}
	return len(rows[row]), nil
}

// CellValue implements Reader.
func (r *XLSXReader) CellValue(sh Sheet, row, col int) (models.RawCell, error) {
	rows, err := r.sheetRows(sh)
	if err != nil {
		return models.RawCell{}, err
	}
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return models.RawCell{}, nil
	}
	value := rows[row][col]
	if value == "" {
		return models.RawCell{}, nil
	}

	cell, err := CellName(row, col)
	if err != nil {
		return models.RawCell{}, err
	}
	typ, err := r.f.GetCellType(sh.Name, cell)
	if err != nil {
		return models.RawCell{}, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return models.RawCell{Kind: models.ValueBool, Bool: value == "1" || strings.EqualFold(value, "true")}, nil
	case excelize.CellTypeError:
		return models.RawCell{Kind: models.ValueError, Text: value}, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeDate:
		return models.TextCell(value), nil
	}

	// Unset, number and formula cells carry numbers unless the cached
	// value is text.
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return models.TextCell(value), nil
	}
	return models.RawCell{Kind: models.ValueNumber, Number: n, IsDate: r.isDateFormatted(sh.Name, cell)}, nil
}

func (r *XLSXReader) isDateFormatted(sheet, cell string) bool {
	styleID, err := r.f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := r.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return IsDateFormat(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

// isBuiltinDateFormat reports whether a built-in number format id shows
// a date or time.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// IsDateFormat reports whether a number format code shows a date or
// time. Quoted literals, escaped characters and bracketed sections other
// than elapsed time are ignored.
func IsDateFormat(code string) bool {
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			section := strings.ToLower(code[i+1 : i+end])
			if strings.Trim(section, "hms") == "" {
				return true
			}
			i += end
		default:
			b.WriteByte(c)
		}
	}

	plain := strings.ToLower(b.String())
	if plain == "general" {
		return false
	}
	return strings.ContainsAny(plain, "ymdhs")
}
