package document

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellName returns the A1 name of a 0-based cell.
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

// RangeRef returns the A1 reference of rows x cols, e.g. "B2:B101".
func RangeRef(rows, cols Range) (string, error) {
	if rows.First < 0 || cols.First < 0 || rows.Last < rows.First || cols.Last < cols.First {
		return "", fmt.Errorf("invalid range rows %v cols %v", rows, cols)
	}
	start, err := CellName(rows.First, cols.First)
	if err != nil {
		return "", err
	}
	end, err := CellName(rows.Last, cols.Last)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}

// ParseRangeRef is the inverse of RangeRef. It accepts absolute refs,
// an optional sheet prefix and single cells; reversed corners are
// normalized.
func ParseRangeRef(ref string) (rows, cols Range, err error) {
	area := ref
	if i := strings.LastIndexByte(area, '!'); i >= 0 {
		area = area[i+1:]
	}
	area = strings.ReplaceAll(area, "$", "")

	from, to, isArea := strings.Cut(area, ":")
	if !isArea {
		to = from
	}
	if strings.Contains(to, ":") {
		return Range{}, Range{}, fmt.Errorf("invalid range %q", ref)
	}

	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return Range{}, Range{}, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return Range{}, Range{}, err
	}
	rows = Range{First: min(r1, r2) - 1, Last: max(r1, r2) - 1}
	cols = Range{First: min(c1, c2) - 1, Last: max(c1, c2) - 1}
	return rows, cols, nil
}
