package csvimport

import (
	"errors"
	"fmt"
)

// File-level errors. Any of these aborts the import before row
// validation starts.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrMissingHeader   = errors.New("file has no header row")
	ErrNoDataRows      = errors.New("file contains no data rows")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrTooManyRows     = errors.New("file exceeds maximum row count")
)

// RowError describes a single rejected row. Line numbers are 1-based
// and count the header, matching what a spreadsheet shows the user.
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d, field %q: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
