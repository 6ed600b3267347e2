package cif

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every error caused by the content of a CIF file.
var ErrFormat = errors.New("malformed CIF")

// FormatError reports a CIF file that cannot be read. Line is zero when the
// problem is not tied to a specific line (e.g. a missing tag).
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cif: line %d: %s", e.Line, e.Msg)
	}
	return "cif: " + e.Msg
}

// Is makes errors.Is(err, ErrFormat) true for every FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErr(line int, format string, a ...interface{}) error {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, a...)}
}
