package exmapper

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/document"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

// Import reads the records of a sheet. An empty sheetName selects the
// first sheet.
//
// Columns are matched to header cells by title; columns without a header
// cell are ignored. Rows without any cell in a matched column are
// skipped. The first conversion failure aborts the import.
func (p *Processor[T]) Import(r io.Reader, sheetName string) ([]T, error) {
	if p.importErr != nil {
		return nil, p.importErr
	}

	doc, err := p.open(r)
	if err != nil {
		return nil, models.IOError("import", err)
	}
	defer doc.Close()

	sh, err := doc.OpenSheet(sheetName)
	if err != nil {
		return nil, models.IOError("import", err)
	}

	run := &importRun[T]{p: p, doc: doc, sheet: sh}
	if err := run.bind(); err != nil {
		return nil, err
	}
	records, err := run.read()
	if err != nil {
		return nil, err
	}

	p.logger.Info("import finished",
		zap.String("sheet", sh.Name),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// ImportFile imports the records of a sheet of the xlsx file at path.
func (p *Processor[T]) ImportFile(path, sheetName string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.IOError("import", err)
	}
	defer f.Close()

	return p.Import(f, sheetName)
}

// importRun holds the state of one import call.
type importRun[T any] struct {
	p     *Processor[T]
	doc   document.Reader
	sheet document.Sheet
	bound []boundColumn[T]
}

type boundColumn[T any] struct {
	schema.Column[T]
	index int
}

// bind maps columns to sheet columns through the header row. Of
// duplicate titles the rightmost wins.
func (r *importRun[T]) bind() error {
	titleRow := r.p.cfg.TitleRowIndex
	n, err := r.doc.ColumnCount(r.sheet, titleRow)
	if err != nil {
		return models.IOError("import", err)
	}

	titles := make(map[string]int, n)
	for c := 0; c < n; c++ {
		cell, err := r.doc.CellValue(r.sheet, titleRow, c)
		if err != nil {
			return models.IOError("import", err)
		}
		if cell.Absent() {
			continue
		}
		titles[strings.TrimSpace(cell.String())] = c
	}

	for _, col := range r.p.importCols {
		idx, ok := titles[col.Title]
		if !ok {
			r.p.logger.Debug("column not found in header",
				zap.String("sheet", r.sheet.Name),
				zap.String("column", col.Title),
			)
			continue
		}
		r.bound = append(r.bound, boundColumn[T]{Column: col, index: idx})
	}
	return nil
}

func (r *importRun[T]) read() ([]T, error) {
	rows, err := r.doc.RowCount(r.sheet)
	if err != nil {
		return nil, models.IOError("import", err)
	}

	var records []T
	for row := r.p.cfg.DataRowStart(); row < rows; row++ {
		rec, err := r.readRow(row)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// readRow returns nil when the row has no cell in a bound column.
func (r *importRun[T]) readRow(row int) (*T, error) {
	var rec *T
	for _, col := range r.bound {
		cell, err := r.doc.CellValue(r.sheet, row, col.index)
		if err != nil {
			return nil, models.IOError("import", err)
		}
		if cell.Absent() {
			continue
		}

		v, err := coerce.ToFieldValue(cell, col.Kind, col.ColumnDefinition, col.Table)
		if err != nil {
			return nil, models.AtRow(err, "import", row)
		}
		if rec == nil {
			rec = new(T)
		}
		if err := col.Set(rec, v); err != nil {
			return nil, models.AtRow(asCoercion(col.FieldName, err), "import", row)
		}
	}
	return rec, nil
}

func asCoercion(field string, err error) error {
	var me *models.Error
	if errors.As(err, &me) {
		return err
	}
	return models.CoercionError(field, fmt.Errorf("set: %w", err))
}
