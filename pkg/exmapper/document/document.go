// Package document defines the spreadsheet collaborators the mapping
// engine reads from and writes to, and their excelize implementations.
//
// Rows and columns are 0-based everywhere in this package.
package document

import (
	"errors"
	"io"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// ErrSheetNotFound indicates the requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet identifies one worksheet of a document.
type Sheet struct {
	Name  string
	Index int
}

// Style is a handle returned by Writer.CreateStyle.
type Style int

// Range is an inclusive 0-based range of rows or columns.
type Range struct {
	First int
	Last  int
}

// Span returns the range covering n items starting at first.
func Span(first, n int) Range {
	return Range{First: first, Last: first + n - 1}
}

// Overlaps reports whether r and o share an index.
func (r Range) Overlaps(o Range) bool {
	return r.First <= o.Last && o.First <= r.Last
}

// StyleSpec describes a cell style.
type StyleSpec struct {
	FontFamily    string
	FontSize      float64
	FontColor     string
	Bold          bool
	FillColor     string
	BorderColor   string
	Align         models.Alignment
	VerticalAlign models.Alignment
}

// Reader reads cells from a document.
type Reader interface {
	io.Closer
	// OpenSheet returns the named sheet, or the first one when name is
	// empty. A missing sheet yields ErrSheetNotFound.
	OpenSheet(name string) (Sheet, error)
	// RowCount returns the number of rows up to the last non-empty one.
	RowCount(sh Sheet) (int, error)
	// ColumnCount returns the number of cells up to the last non-empty
	// one in row.
	ColumnCount(sh Sheet, row int) (int, error)
	// CellValue returns one cell. Cells outside the used range are absent.
	CellValue(sh Sheet, row, col int) (models.RawCell, error)
}

// Writer builds a document.
type Writer interface {
	io.Closer
	CreateSheet(name string) (Sheet, error)
	CreateStyle(spec StyleSpec) (Style, error)
	WriteCell(sh Sheet, row, col int, value any, style Style) error
	SetColumnWidth(sh Sheet, col int, width float64) error
	SetRowHeight(sh Sheet, row int, height float64) error
	// AddDropdown restricts the cells in rows x cols to options.
	AddDropdown(sh Sheet, options []string, rows, cols Range) error
	// AddPrompt shows a tooltip when a cell in rows x cols is selected.
	AddPrompt(sh Sheet, title, text string, rows, cols Range) error
	// WriteTo serializes the document.
	WriteTo(w io.Writer) (int64, error)
}

// OpenFunc opens a document for reading.
type OpenFunc func(r io.Reader) (Reader, error)

// CreateFunc creates an empty document for writing.
type CreateFunc func() (Writer, error)
