// Package models defines data structures shared by the mapping engine.
package models

import "fmt"

// Operation selects which side of the mapping a column takes part in.
type Operation int

const (
	// OpAll matches every column when used as a request and marks a
	// column as taking part in both import and export when used in AppliesTo.
	OpAll Operation = iota
	// OpExport marks export-only columns.
	OpExport
	// OpImport marks import-only columns.
	OpImport
)

// String returns the lower-case operation name.
func (o Operation) String() string {
	switch o {
	case OpAll:
		return "all"
	case OpExport:
		return "export"
	case OpImport:
		return "import"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ParseOperation parses "all", "export" or "import". Empty means all.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "", "all", "ALL":
		return OpAll, nil
	case "export", "EXPORT":
		return OpExport, nil
	case "import", "IMPORT":
		return OpImport, nil
	}
	return OpAll, fmt.Errorf("unknown operation %q", s)
}

// CellType is the kind of cell written on export.
type CellType int

const (
	// CellString writes the value as text.
	CellString CellType = iota
	// CellNumeric writes the value as a number.
	CellNumeric
)

// Alignment is a horizontal or vertical cell alignment name as understood
// by excelize ("left", "center", "right", "top", "bottom", ...).
// The empty value means "general".
type Alignment string

// Common alignments.
const (
	AlignGeneral Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignTop     Alignment = "top"
	AlignBottom  Alignment = "bottom"
)

// Default translation delimiters.
const (
	DefaultTranslationDelimiter   = ","
	DefaultTranslationKVDelimiter = "="
)

// Default geometry of a column.
const (
	DefaultWidth  = 16
	DefaultHeight = 14
)

// ColumnDefinition describes how one field maps to one spreadsheet column.
type ColumnDefinition struct {
	// FieldName is the declared field the column reads from and writes to.
	FieldName string
	// Title is the header text. Import matches header cells against it.
	Title string
	// Order positions the column; ties keep declaration order.
	Order int
	// Width is the column width in characters.
	Width float64
	// Height is the row height in points.
	Height float64
	// Export controls whether data cells are written. Header cells are
	// always written so the column stays fillable.
	Export bool
	// Align is the horizontal alignment.
	Align Alignment
	// VerticalAlign is the vertical alignment.
	VerticalAlign Alignment
	// CellType selects text or numeric output on export.
	CellType CellType
	// DefaultValue is written for nil values of string cells.
	DefaultValue string
	// Prefix is prepended to non-nil string cells.
	Prefix string
	// Suffix is appended to non-nil string cells.
	Suffix string
	// DateFormat is a yyyy-MM-dd style pattern.
	DateFormat string
	// Translation is a "code=label,code=label" expression.
	Translation string
	// TranslationDelimiter separates pairs in Translation.
	TranslationDelimiter string
	// TranslationKVDelimiter separates code and label in a pair.
	TranslationKVDelimiter string
	// AssociatedPath is a dotted path into the field's value.
	AssociatedPath string
	// AppliesTo restricts the column to import or export.
	AppliesTo Operation
	// Combo restricts input to a drop-down list.
	Combo []string
	// Prompt is shown as an input tooltip.
	Prompt string
}

// NewColumnDefinition returns a definition with default values for the
// given field.
func NewColumnDefinition(fieldName string) ColumnDefinition {
	return ColumnDefinition{
		FieldName:              fieldName,
		Title:                  fieldName,
		Width:                  DefaultWidth,
		Height:                 DefaultHeight,
		Export:                 true,
		TranslationDelimiter:   DefaultTranslationDelimiter,
		TranslationKVDelimiter: DefaultTranslationKVDelimiter,
	}
}

// Matches reports whether the column takes part in op.
func (d ColumnDefinition) Matches(op Operation) bool {
	return op == OpAll || d.AppliesTo == OpAll || d.AppliesTo == op
}
