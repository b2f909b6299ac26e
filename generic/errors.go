/*
errors.go - Centralized error types for the generic building blocks

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Table errors - Missing columns
  2. Date errors - Unparseable dates and competencies

USAGE:
  if errors.Is(err, generic.ErrMissingColumn) {
      var mc *generic.MissingColumnsError
      errors.As(err, &mc)
  }

SEE ALSO:
  - table.go: Raises MissingColumnsError
  - voucher/errors.go: Wraps these with validation context
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingColumn is returned when a table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingColumnsError names the table and every column it lacks.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("table %q: missing columns [%s]", e.Table, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumn
}
