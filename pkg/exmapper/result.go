package exmapper

import (
	"go.uber.org/multierr"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// ExportResult describes a finished export.
type ExportResult struct {
	// Sheets lists the sheets written, in order.
	Sheets []models.SheetPlan
	// Records is the number of records exported.
	Records int
	// Failures holds the cells that could not be written. Their records
	// were still exported with those cells left empty.
	Failures []*RecordFailure
	// File is the written path, set by ExportFile.
	File string
}

// OK reports whether every cell was written.
func (r *ExportResult) OK() bool {
	return len(r.Failures) == 0
}

// Err combines all failures into one error, or returns nil.
func (r *ExportResult) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}
