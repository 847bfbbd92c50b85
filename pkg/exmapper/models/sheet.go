package models

// SheetPlan is the computed row range and name of one output sheet.
type SheetPlan struct {
	// Index is the 0-based sheet position.
	Index int `json:"index"`
	// Name is the sheet name.
	Name string `json:"name"`
	// RowStart is the first record index (inclusive).
	RowStart int `json:"row_start"`
	// RowEnd is the last record index (exclusive).
	RowEnd int `json:"row_end"`
}

// Len returns the number of records the sheet holds.
func (p SheetPlan) Len() int {
	return p.RowEnd - p.RowStart
}
