package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration indicates bad or missing column metadata or config.
var ErrConfiguration = errors.New("configuration error")

// ErrCoercion indicates a value that cannot be converted to or from its
// declared type.
var ErrCoercion = errors.New("coercion error")

// ErrIO indicates a missing sheet or an unreadable/unwritable stream.
var ErrIO = errors.New("io error")

// Error carries the kind of a mapping failure and where it happened.
type Error struct {
	Kind  error  // ErrConfiguration, ErrCoercion or ErrIO
	Op    string // "resolve", "export", "import", ...
	Field string // column field name, if any
	Row   int    // 0-based sheet row, -1 if unknown
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Op != "" {
		fmt.Fprintf(&b, " during %s", e.Op)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q", e.Field)
		if e.Row >= 0 {
			fmt.Fprintf(&b, ", row %d", e.Row)
		}
		b.WriteString(")")
	} else if e.Row >= 0 {
		fmt.Fprintf(&b, " (row %d)", e.Row)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConfigError returns a configuration error.
func ConfigError(op string, format string, args ...any) *Error {
	return &Error{Kind: ErrConfiguration, Op: op, Row: -1, Err: fmt.Errorf(format, args...)}
}

// CoercionError returns a coercion error for field.
func CoercionError(field string, err error) *Error {
	return &Error{Kind: ErrCoercion, Field: field, Row: -1, Err: err}
}

// IOError wraps err as an io error.
func IOError(op string, err error) *Error {
	return &Error{Kind: ErrIO, Op: op, Row: -1, Err: err}
}

// AtRow returns err annotated with op and row when it is an *Error.
// Other errors are returned unchanged.
func AtRow(err error, op string, row int) error {
	var me *Error
	if !errors.As(err, &me) {
		return err
	}
	cp := *me
	cp.Op = op
	cp.Row = row
	return &cp
}
