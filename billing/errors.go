/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine itself never errors on business outcomes (missing enrollment,
  missing fee settings); these errors belong to the surrounding data and
  transport layers.

USAGE:
  Callers classify with errors.Is or the helpers below:

    if billing.IsNotFound(err) {
        writeError(w, http.StatusNotFound, ...)
    }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrCourseNotFound is returned when a referenced course doesn't exist.
	ErrCourseNotFound = errors.New("course not found")

	// ErrDuplicateOrder is returned when an order ID already exists.
	ErrDuplicateOrder = errors.New("duplicate order")

	// ErrInvalidYear is returned for report years outside a sane range.
	ErrInvalidYear = errors.New("invalid report year")

	// ErrInvalidCycle is returned when stored fee settings carry an
	// unrecognized billing cycle.
	ErrInvalidCycle = errors.New("invalid billing cycle")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidCycleError reports the offending cycle value.
type InvalidCycleError struct {
	CourseID CourseID
	Cycle    string
}

func (e *InvalidCycleError) Error() string {
	return fmt.Sprintf("invalid billing cycle %q for course %s", e.Cycle, e.CourseID)
}

func (e *InvalidCycleError) Unwrap() error { return ErrInvalidCycle }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrInvalidCycle) ||
		errors.Is(err, ErrDuplicateOrder)
}
