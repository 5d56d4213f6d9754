package mapper

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("mapper: record not found")

	// ErrBindCount is returned when the number of positional placeholders
	// in a condition does not match the number of bound values.
	ErrBindCount = errors.New("mapper: wrong number of bind variables")

	// ErrMissingBind is returned when a named placeholder has no value.
	ErrMissingBind = errors.New("mapper: missing value for named bind variable")

	// ErrInvalidLimit is returned when a LIMIT value is neither an integer
	// nor a comma separated list of integers.
	ErrInvalidLimit = errors.New("mapper: invalid limit")
)

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the primary key that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("mapper: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("mapper: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the model label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the primary key that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the primary key
// that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// BindError describes a condition whose placeholders could not be bound.
type BindError struct {
	Condition string // Condition with placeholders
	Err       error  // ErrBindCount or ErrMissingBind
	detail    string
}

// Error returns the error string.
func (e *BindError) Error() string {
	return fmt.Sprintf("%v (%s) in: %s", e.Err, e.detail, e.Condition)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBindCountError returns a BindError for a condition with want
// placeholders but got values.
func NewBindCountError(condition string, got, want int) *BindError {
	return &BindError{
		Condition: condition,
		Err:       ErrBindCount,
		detail:    fmt.Sprintf("%d for %d", got, want),
	}
}

// NewMissingBindError returns a BindError for the named placeholder name.
func NewMissingBindError(condition, name string) *BindError {
	return &BindError{
		Condition: condition,
		Err:       ErrMissingBind,
		detail:    ":" + name,
	}
}

// IsBindError returns true if the error is a BindError.
func IsBindError(err error) bool {
	if err == nil {
		return false
	}
	var e *BindError
	return errors.As(err, &e)
}

// LimitError reports a LIMIT value that could not be sanitized.
type LimitError struct {
	Value any
}

// Error returns the error string.
func (e *LimitError) Error() string {
	return fmt.Sprintf("mapper: invalid limit %#v", e.Value)
}

// Is reports whether the target error is ErrInvalidLimit.
func (e *LimitError) Is(err error) bool {
	return err == ErrInvalidLimit
}

// AggregateError represents multiple errors collected while building a
// query or running a batch.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "mapper: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("mapper: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Table string // Table being queried
	Op    string // Operation (e.g., "select", "count", "exists")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("mapper: querying %s (%s): %v", e.Table, e.Op, e.Err)
	}
	return fmt.Sprintf("mapper: querying %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(table, op string, err error) *QueryError {
	return &QueryError{Table: table, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps an insert, update or delete error with additional
// context.
type MutationError struct {
	Table string // Table being mutated
	Op    string // Operation (e.g., "insert", "update", "delete")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("mapper: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(table, op string, err error) *MutationError {
	return &MutationError{Table: table, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
