// Package sheets splits an export into row-bounded sheets.
package sheets

import (
	"strconv"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// Plan returns one SheetPlan per sheet needed to hold totalRows records
// with at most maxRowsPerSheet records each. At least one sheet is
// returned so an empty export still gets a header-only sheet.
func Plan(totalRows, maxRowsPerSheet int, baseName string) ([]models.SheetPlan, error) {
	if maxRowsPerSheet < 1 {
		return nil, models.ConfigError("plan", "max rows per sheet must be greater than 0, got %d", maxRowsPerSheet)
	}
	if totalRows < 0 {
		return nil, models.ConfigError("plan", "negative row count %d", totalRows)
	}
	if baseName == "" {
		return nil, models.ConfigError("plan", "sheet name must not be empty")
	}

	count := (totalRows + maxRowsPerSheet - 1) / maxRowsPerSheet
	if count == 0 {
		count = 1
	}

	plans := make([]models.SheetPlan, 0, count)
	for i := 0; i < count; i++ {
		start := i * maxRowsPerSheet
		end := min(start+maxRowsPerSheet, totalRows)
		if end < start {
			end = start
		}
		plans = append(plans, models.SheetPlan{
			Index:    i,
			Name:     Name(baseName, i),
			RowStart: start,
			RowEnd:   end,
		})
	}
	return plans, nil
}

// Name returns the name of sheet index: baseName for 0, baseName_index
// otherwise.
func Name(baseName string, index int) string {
	if index == 0 {
		return baseName
	}
	return baseName + "_" + strconv.Itoa(index)
}
