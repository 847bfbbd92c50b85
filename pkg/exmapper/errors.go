package exmapper

import (
	"fmt"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// ErrConfiguration indicates bad or missing column metadata, a malformed
// translation expression or an invalid Config.
var ErrConfiguration = models.ErrConfiguration

// ErrCoercion indicates a cell or field value that cannot be converted.
var ErrCoercion = models.ErrCoercion

// ErrIO indicates a missing sheet or an unreadable/unwritable stream.
var ErrIO = models.ErrIO

// RecordFailure is an export failure of one cell. The rest of the
// record's row is still written.
type RecordFailure struct {
	Sheet  string // sheet name
	Row    int    // 0-based sheet row
	Record int    // index into the exported records
	Column string // column title
	Err    error
}

func (e *RecordFailure) Error() string {
	return fmt.Sprintf("record %d (sheet %q, row %d, column %q): %v", e.Record, e.Sheet, e.Row, e.Column, e.Err)
}

func (e *RecordFailure) Unwrap() error {
	return e.Err
}
