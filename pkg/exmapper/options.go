// Package exmapper imports and exports typed records from and to xlsx
// documents, driven by per-type column descriptor tables.
package exmapper

import (
	"go.uber.org/zap"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/document"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

// Defaults of Config.
const (
	DefaultMaxRowsPerSheet = 10000
	DefaultValidationRows  = 100
)

// Config configures a Processor. It is validated once by New and never
// changes afterwards.
type Config struct {
	// MaxRowsPerSheet is the number of records per sheet before the
	// export continues on a new sheet.
	MaxRowsPerSheet int
	// TitleRowIndex is the 0-based header row.
	TitleRowIndex int
	// DataRowStartIndex is the 0-based first data row.
	// If nil, defaults to TitleRowIndex + 1.
	DataRowStartIndex *int
	// ValidationRows is the number of data rows drop-down lists and
	// prompts cover. If zero, defaults to DefaultValidationRows.
	ValidationRows int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRowsPerSheet: DefaultMaxRowsPerSheet,
		ValidationRows:  DefaultValidationRows,
	}
}

// DataRowStart returns the first data row.
func (c Config) DataRowStart() int {
	if c.DataRowStartIndex != nil {
		return *c.DataRowStartIndex
	}
	return c.TitleRowIndex + 1
}

// validationRows returns the number of rows covered by data validations.
func (c Config) validationRows() int {
	if c.ValidationRows > 0 {
		return c.ValidationRows
	}
	return DefaultValidationRows
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxRowsPerSheet <= 0 {
		return models.ConfigError("config", "max rows per sheet must be greater than 0, got %d", c.MaxRowsPerSheet)
	}
	if c.TitleRowIndex < 0 {
		return models.ConfigError("config", "title row index must not be negative, got %d", c.TitleRowIndex)
	}
	if c.DataRowStart() <= c.TitleRowIndex {
		return models.ConfigError("config", "data row start %d must come after title row %d", c.DataRowStart(), c.TitleRowIndex)
	}
	if c.ValidationRows < 0 {
		return models.ConfigError("config", "validation rows must not be negative, got %d", c.ValidationRows)
	}
	return nil
}

// Option customizes a Processor.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
	open   document.OpenFunc
	create document.CreateFunc
	styles StyleSet
}

func defaultSettings() settings {
	return settings{
		logger: zap.NewNop(),
		open:   document.OpenXLSX,
		create: document.NewXLSX,
		styles: DefaultStyles(),
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l == nil {
			l = zap.NewNop()
		}
		s.logger = l
	}
}

// WithReader replaces the document reader used by Import.
func WithReader(open document.OpenFunc) Option {
	return func(s *settings) { s.open = open }
}

// WithWriter replaces the document writer used by Export.
func WithWriter(create document.CreateFunc) Option {
	return func(s *settings) { s.create = create }
}

// WithStyles replaces the header and data cell styles.
func WithStyles(styles StyleSet) Option {
	return func(s *settings) { s.styles = styles }
}

// WithFile returns c overridden by the values set in a schema file's
// config section.
func (c Config) WithFile(fc schema.FileConfig) Config {
	if fc.MaxRowsPerSheet != nil {
		c.MaxRowsPerSheet = *fc.MaxRowsPerSheet
	}
	if fc.TitleRowIndex != nil {
		c.TitleRowIndex = *fc.TitleRowIndex
	}
	if fc.DataRowStartIndex != nil {
		start := *fc.DataRowStartIndex
		c.DataRowStartIndex = &start
	}
	if fc.ValidationRows != nil {
		c.ValidationRows = *fc.ValidationRows
	}
	return c
}
