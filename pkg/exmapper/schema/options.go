package schema

import "github.com/ukaji3/exmapper-go/pkg/exmapper/models"

// ColumnOption sets one attribute of a column definition.
type ColumnOption func(*models.ColumnDefinition)

// Title sets the header text.
func Title(title string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Title = title }
}

// Order sets the column position. Ties keep declaration order.
func Order(order int) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Order = order }
}

// Width sets the column width in characters.
func Width(width float64) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Width = width }
}

// Height sets the row height in points.
func Height(height float64) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Height = height }
}

// Align sets the horizontal alignment.
func Align(a models.Alignment) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Align = a }
}

// VerticalAlign sets the vertical alignment.
func VerticalAlign(a models.Alignment) ColumnOption {
	return func(d *models.ColumnDefinition) { d.VerticalAlign = a }
}

// Numeric writes the column as numeric cells.
func Numeric() ColumnOption {
	return func(d *models.ColumnDefinition) { d.CellType = models.CellNumeric }
}

// Default sets the value written for nil fields.
func Default(v string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.DefaultValue = v }
}

// Prefix sets the text prepended to exported values.
func Prefix(s string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Prefix = s }
}

// Suffix sets the text appended to exported values.
func Suffix(s string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Suffix = s }
}

// DateFormat sets a yyyy-MM-dd style date pattern.
func DateFormat(pattern string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.DateFormat = pattern }
}

// Translate sets a "code=label,code=label" translation expression.
func Translate(expr string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Translation = expr }
}

// TranslateDelimiters overrides the pair and key/value delimiters of the
// translation expression.
func TranslateDelimiters(pair, kv string) ColumnOption {
	return func(d *models.ColumnDefinition) {
		d.TranslationDelimiter = pair
		d.TranslationKVDelimiter = kv
	}
}

// AppliesTo restricts the column to one operation.
func AppliesTo(op models.Operation) ColumnOption {
	return func(d *models.ColumnDefinition) { d.AppliesTo = op }
}

// Combo restricts input to the given drop-down options.
func Combo(options ...string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Combo = options }
}

// Prompt sets an input tooltip.
func Prompt(text string) ColumnOption {
	return func(d *models.ColumnDefinition) { d.Prompt = text }
}

// NoExport keeps the header but leaves data cells empty on export.
func NoExport() ColumnOption {
	return func(d *models.ColumnDefinition) { d.Export = false }
}
