package exmapper

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/document"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/sheets"
)

// ContentType is the media type of xlsx documents.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// remarkMarker marks note columns, which get a wide fixed width.
const remarkMarker = "注："

const remarkWidth = 6000.0 / 256

// Export writes records to w as an xlsx document. Sheets are named
// sheetBase, sheetBase_1, ... and hold at most MaxRowsPerSheet records.
//
// Cells whose value cannot be read or converted are left empty and
// reported in the result; the export carries on. Any writer failure
// aborts the export with an ErrIO error.
func (p *Processor[T]) Export(w io.Writer, sheetBase string, records []T) (*ExportResult, error) {
	if p.exportErr != nil {
		return nil, p.exportErr
	}
	plans, err := sheets.Plan(len(records), p.cfg.MaxRowsPerSheet, sheetBase)
	if err != nil {
		return nil, err
	}

	run, err := p.newExportRun(p.exportCols)
	if err != nil {
		return nil, err
	}
	defer run.doc.Close()

	result := &ExportResult{Sheets: plans, Records: len(records)}
	for _, plan := range plans {
		sh, err := run.doc.CreateSheet(plan.Name)
		if err != nil {
			return nil, models.IOError("export", fmt.Errorf("create sheet %q: %w", plan.Name, err))
		}
		if err := run.writeHeader(sh); err != nil {
			return nil, err
		}

		row := p.cfg.DataRowStart()
		for i := plan.RowStart; i < plan.RowEnd; i++ {
			if err := run.writeRecord(sh, row, i, &records[i], result); err != nil {
				return nil, err
			}
			row++
		}
	}

	if _, err := run.doc.WriteTo(w); err != nil {
		return nil, models.IOError("export", err)
	}

	p.logger.Info("export finished",
		zap.String("sheet", sheetBase),
		zap.Int("records", len(records)),
		zap.Int("sheets", len(plans)),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// ExportFile exports records to dir/fileBase.xlsx.
func (p *Processor[T]) ExportFile(dir, fileBase, sheetBase string, records []T) (*ExportResult, error) {
	path := filepath.Join(dir, fileBase+".xlsx")
	f, err := os.Create(path)
	if err != nil {
		return nil, models.IOError("export", err)
	}
	defer f.Close()

	result, err := p.Export(f, sheetBase, records)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, models.IOError("export", err)
	}
	result.File = path
	return result, nil
}

// ExportHTTP exports records as a download named fileBase.xlsx.
func (p *Processor[T]) ExportHTTP(w http.ResponseWriter, fileBase, sheetBase string, records []T) (*ExportResult, error) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", ContentDisposition(fileBase+".xlsx"))
	return p.Export(w, sheetBase, records)
}

// ContentDisposition returns an attachment disposition for name. The
// plain filename parameter carries a Latin-1 rendering with unencodable
// characters replaced by '_'; filename* carries the UTF-8 name.
func ContentDisposition(name string) string {
	var fallback strings.Builder
	for _, r := range name {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		switch {
		case !ok || b < 0x20 || b == 0x7f:
			fallback.WriteByte('_')
		case b == '"' || b == '\\':
			fallback.WriteByte('\\')
			fallback.WriteByte(b)
		default:
			fallback.WriteByte(b)
		}
	}
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback.String(), url.PathEscape(name))
}

// ExportTemplate writes an empty import template: one sheet holding the
// header row of the import columns with their drop-down lists and
// prompts.
func (p *Processor[T]) ExportTemplate(w io.Writer, sheetBase string) error {
	if p.importErr != nil {
		return p.importErr
	}
	if sheetBase == "" {
		return models.ConfigError("template", "sheet name must not be empty")
	}

	run, err := p.newExportRun(p.importCols)
	if err != nil {
		return err
	}
	defer run.doc.Close()

	sh, err := run.doc.CreateSheet(sheetBase)
	if err != nil {
		return models.IOError("template", fmt.Errorf("create sheet %q: %w", sheetBase, err))
	}
	if err := run.writeHeader(sh); err != nil {
		return err
	}
	if _, err := run.doc.WriteTo(w); err != nil {
		return models.IOError("template", err)
	}
	p.logger.Debug("template written", zap.String("sheet", sheetBase), zap.Int("columns", len(p.importCols)))
	return nil
}

// exportRun holds the state of one export call.
type exportRun[T any] struct {
	p         *Processor[T]
	doc       document.Writer
	cols      []schema.Column[T]
	styles    *styleCache
	rowHeight float64
}

func (p *Processor[T]) newExportRun(cols []schema.Column[T]) (*exportRun[T], error) {
	doc, err := p.create()
	if err != nil {
		return nil, models.IOError("export", err)
	}

	run := &exportRun[T]{
		p:      p,
		doc:    doc,
		cols:   cols,
		styles: newStyleCache(doc, p.styles),
	}
	for _, col := range cols {
		run.rowHeight = max(run.rowHeight, col.Height)
	}
	return run, nil
}

func (r *exportRun[T]) writeHeader(sh document.Sheet) error {
	titleRow := r.p.cfg.TitleRowIndex
	validation := document.Span(r.p.cfg.DataRowStart(), r.p.cfg.validationRows())

	for j, col := range r.cols {
		style, err := r.styles.get(roleHeader, col.ColumnDefinition)
		if err != nil {
			return models.IOError("export", err)
		}
		if err := r.doc.WriteCell(sh, titleRow, j, col.Title, style); err != nil {
			return models.IOError("export", err)
		}

		width := col.Width + 0.72
		if strings.Contains(col.Title, remarkMarker) {
			width = remarkWidth
		}
		if err := r.doc.SetColumnWidth(sh, j, width); err != nil {
			return models.IOError("export", err)
		}

		if len(col.Combo) > 0 {
			if err := r.doc.AddDropdown(sh, col.Combo, validation, document.Span(j, 1)); err != nil {
				return models.IOError("export", fmt.Errorf("column %q: %w", col.Title, err))
			}
		}
		if col.Prompt != "" {
			if err := r.doc.AddPrompt(sh, "", col.Prompt, validation, document.Span(j, 1)); err != nil {
				return models.IOError("export", fmt.Errorf("column %q: %w", col.Title, err))
			}
		}
	}

	if r.rowHeight > 0 {
		if err := r.doc.SetRowHeight(sh, titleRow, r.rowHeight); err != nil {
			return models.IOError("export", err)
		}
	}
	return nil
}

func (r *exportRun[T]) writeRecord(sh document.Sheet, row, index int, rec *T, result *ExportResult) error {
	if r.rowHeight > 0 {
		if err := r.doc.SetRowHeight(sh, row, r.rowHeight); err != nil {
			return models.IOError("export", err)
		}
	}

	for j, col := range r.cols {
		if !col.Export {
			continue
		}

		value, err := r.cellValue(col, rec)
		if err != nil {
			r.fail(result, sh, row, index, col, err)
			continue
		}

		style, err := r.styles.get(roleData, col.ColumnDefinition)
		if err != nil {
			return models.IOError("export", err)
		}
		if err := r.doc.WriteCell(sh, row, j, value, style); err != nil {
			return models.IOError("export", err)
		}
	}
	return nil
}

func (r *exportRun[T]) cellValue(col schema.Column[T], rec *T) (any, error) {
	v, err := col.Get(rec)
	if err != nil {
		return nil, err
	}
	return coerce.ToCellValue(v, col.ColumnDefinition, col.Table)
}

func (r *exportRun[T]) fail(result *ExportResult, sh document.Sheet, row, index int, col schema.Column[T], err error) {
	err = models.AtRow(err, "export", row)
	r.p.logger.Warn("cell export failed",
		zap.String("sheet", sh.Name),
		zap.Int("row", row),
		zap.String("column", col.Title),
		zap.Error(err),
	)
	result.Failures = append(result.Failures, &RecordFailure{
		Sheet:  sh.Name,
		Row:    row,
		Record: index,
		Column: col.Title,
		Err:    err,
	})
}
