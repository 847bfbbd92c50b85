package models

import "strconv"

// ValueKind is the kind of a raw cell value read from a document.
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueText
	ValueNumber
	ValueBool
	ValueError
)

// RawCell is one cell as read from a document.
type RawCell struct {
	Kind ValueKind
	// Text holds text and error values.
	Text string
	// Number holds numeric values.
	Number float64
	// Bool holds boolean values.
	Bool bool
	// IsDate is set for numeric cells carrying a date number format.
	IsDate bool
}

// TextCell returns a text cell.
func TextCell(s string) RawCell {
	return RawCell{Kind: ValueText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(n float64) RawCell {
	return RawCell{Kind: ValueNumber, Number: n}
}

// DateCell returns a numeric cell flagged as a date serial.
func DateCell(serial float64) RawCell {
	return RawCell{Kind: ValueNumber, Number: serial, IsDate: true}
}

// Absent reports whether the cell holds nothing.
func (c RawCell) Absent() bool {
	return c.Kind == ValueAbsent
}

// String returns the textual form of the cell. Numbers use the shortest
// locale-free representation.
func (c RawCell) String() string {
	switch c.Kind {
	case ValueText, ValueError:
		return c.Text
	case ValueNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}
