package exmapper

import (
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

// Processor imports and exports records of type T. Its resolved columns
// are read-only, so a Processor may serve concurrent calls.
type Processor[T any] struct {
	schema *schema.Schema[T]
	cfg    Config
	settings

	exportCols []schema.Column[T]
	exportErr  error
	importCols []schema.Column[T]
	importErr  error
}

// New returns a Processor for s. The export and import column lists are
// resolved once here; a schema lacking columns for one direction only
// fails when that direction is used.
func New[T any](s *schema.Schema[T], cfg Config, opts ...Option) (*Processor[T], error) {
	if s == nil {
		return nil, models.ConfigError("new", "nil schema")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor[T]{
		schema:   s,
		cfg:      cfg,
		settings: defaultSettings(),
	}
	for _, opt := range opts {
		opt(&p.settings)
	}

	p.exportCols, p.exportErr = s.Resolve(models.OpExport)
	p.importCols, p.importErr = s.Resolve(models.OpImport)
	return p, nil
}

// Config returns the processor configuration.
func (p *Processor[T]) Config() Config {
	return p.cfg
}

// Columns returns the resolved columns for op.
func (p *Processor[T]) Columns(op models.Operation) ([]schema.Column[T], error) {
	switch op {
	case models.OpExport:
		return p.exportCols, p.exportErr
	case models.OpImport:
		return p.importCols, p.importErr
	default:
		return p.schema.Resolve(op)
	}
}
