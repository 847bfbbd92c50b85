package document

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter builds xlsx documents with excelize.
//
// Drop-down lists and prompts targeting the same cells are merged into
// one data validation, since a cell holds at most one. A validation that
// partially overlaps another one on the same sheet is rejected.
type XLSXWriter struct {
	f           *excelize.File
	sheets      int
	validations []*pendingValidation
}

type pendingValidation struct {
	sheet string
	dv    *excelize.DataValidation
}

// NewXLSX returns an empty xlsx writer.
func NewXLSX() (Writer, error) {
	return NewXLSXWriter(), nil
}

// NewXLSXWriter returns an empty xlsx writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{f: excelize.NewFile()}
}

// Close releases the workbook.
func (w *XLSXWriter) Close() error {
	return w.f.Close()
}

// CreateSheet implements Writer. The first sheet reuses the default
// sheet of a new workbook.
func (w *XLSXWriter) CreateSheet(name string) (Sheet, error) {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return Sheet{}, err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return Sheet{}, err
	}
	sh := Sheet{Name: name, Index: w.sheets}
	w.sheets++
	return sh, nil
}

// CreateStyle implements Writer.
func (w *XLSXWriter) CreateStyle(spec StyleSpec) (Style, error) {
	style := &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: string(spec.Align),
			Vertical:   string(spec.VerticalAlign),
		},
	}
	if spec.FontFamily != "" || spec.FontSize > 0 || spec.FontColor != "" || spec.Bold {
		style.Font = &excelize.Font{
			Bold:   spec.Bold,
			Family: spec.FontFamily,
			Size:   spec.FontSize,
			Color:  spec.FontColor,
		}
	}
	if spec.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{spec.FillColor}, Pattern: 1}
	}
	if spec.BorderColor != "" {
		for _, side := range []string{"left", "right", "top", "bottom"} {
			style.Border = append(style.Border, excelize.Border{Type: side, Color: spec.BorderColor, Style: 1})
		}
	}

	id, err := w.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	return Style(id), nil
}

// WriteCell implements Writer.
func (w *XLSXWriter) WriteCell(sh Sheet, row, col int, value any, style Style) error {
	cell, err := CellName(row, col)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(sh.Name, cell, value); err != nil {
		return err
	}
	return w.f.SetCellStyle(sh.Name, cell, cell, int(style))
}

// SetColumnWidth implements Writer.
func (w *XLSXWriter) SetColumnWidth(sh Sheet, col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sh.Name, name, name, width)
}

// SetRowHeight implements Writer.
func (w *XLSXWriter) SetRowHeight(sh Sheet, row int, height float64) error {
	return w.f.SetRowHeight(sh.Name, row+1, height)
}

// AddDropdown implements Writer.
func (w *XLSXWriter) AddDropdown(sh Sheet, options []string, rows, cols Range) error {
	dv, err := w.validation(sh, rows, cols)
	if err != nil {
		return err
	}
	if err := dv.SetDropList(options); err != nil {
		return err
	}
	dv.SetError(excelize.DataValidationErrorStyleStop, "", "")
	return nil
}

// AddPrompt implements Writer.
func (w *XLSXWriter) AddPrompt(sh Sheet, title, text string, rows, cols Range) error {
	dv, err := w.validation(sh, rows, cols)
	if err != nil {
		return err
	}
	dv.SetInput(title, text)
	return nil
}

func (w *XLSXWriter) validation(sh Sheet, rows, cols Range) (*excelize.DataValidation, error) {
	ref, err := RangeRef(rows, cols)
	if err != nil {
		return nil, err
	}
	for _, p := range w.validations {
		if p.sheet != sh.Name {
			continue
		}
		pRows, pCols, err := ParseRangeRef(p.dv.Sqref)
		if err != nil {
			return nil, err
		}
		if pRows == rows && pCols == cols {
			return p.dv, nil
		}
		if pRows.Overlaps(rows) && pCols.Overlaps(cols) {
			return nil, fmt.Errorf("validation %s overlaps %s on sheet %s", ref, p.dv.Sqref, sh.Name)
		}
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = ref
	w.validations = append(w.validations, &pendingValidation{sheet: sh.Name, dv: dv})
	return dv, nil
}

// WriteTo implements Writer. Pending validations are flushed first.
func (w *XLSXWriter) WriteTo(out io.Writer) (int64, error) {
	for _, p := range w.validations {
		if err := w.f.AddDataValidation(p.sheet, p.dv); err != nil {
			return 0, err
		}
	}
	w.validations = nil
	w.f.SetActiveSheet(0)
	return w.f.WriteTo(out)
}
