package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownColumn is returned when a column name is not part of a table.
	ErrUnknownColumn = errors.New("schema: unknown column")

	// ErrDecimalScale is returned for a decimal column with a scale but no
	// precision.
	ErrDecimalScale = errors.New("schema: decimal precision cannot be empty if scale is specified")
)

// UnknownColumnError reports a reference to a column the table does not
// define.
type UnknownColumnError struct {
	Table  string
	Column string
}

// Error returns the error string.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("schema: unknown column %q in table %q", e.Column, e.Table)
}

// Is reports whether the target error is ErrUnknownColumn.
func (e *UnknownColumnError) Is(err error) bool {
	return err == ErrUnknownColumn
}

// ColumnError is an invalid column definition.
type ColumnError struct {
	Table  string
	Column string
	Err    error
}

// Error returns the error string.
func (e *ColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s.%s: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ColumnError) Unwrap() error {
	return e.Err
}

// ValidationResult holds the results of table validation.
type ValidationResult struct {
	Errors   []*ColumnError
	Warnings []*ColumnError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the validation errors joined, or nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}
