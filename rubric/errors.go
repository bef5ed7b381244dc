package rubric

import (
	"errors"
	"fmt"
)

// Configuration errors are raised at Criterion/Rubric construction.
// Evaluation errors are raised when scoring or alignment receives
// malformed or incomplete result data. All of them are scoped to the
// single call that triggered them; the rubric involved stays usable.
var (
	// ErrInvalidCriterion indicates that a criterion definition violates
	// an identifier or reserved-name constraint.
	ErrInvalidCriterion = errors.New("invalid criterion")

	// ErrInvalidRubric indicates that a rubric configuration violates a
	// structural invariant (size limits, duplicate ids, threshold).
	ErrInvalidRubric = errors.New("invalid rubric")

	// ErrMalformedResult indicates that a textual result payload could
	// not be parsed as JSON.
	ErrMalformedResult = errors.New("malformed result")

	// ErrInvalidResultShape indicates that a result payload is not an
	// object/mapping at the top level.
	ErrInvalidResultShape = errors.New("result must be an object")

	// ErrMissingResults indicates that one or more criterion ids defined
	// in the rubric are absent from the submitted result.
	ErrMissingResults = errors.New("missing criterion results")

	// ErrNonBooleanResult indicates that a criterion id maps to a value
	// that is not strictly boolean.
	ErrNonBooleanResult = errors.New("non-boolean criterion result")

	// ErrResultTypeMismatch indicates that alignment inputs mix single
	// results with sequences, or contain an element without a pass/fail
	// outcome.
	ErrResultTypeMismatch = errors.New("result type mismatch")

	// ErrLengthMismatch indicates that alignment sequences differ in length.
	ErrLengthMismatch = errors.New("result length mismatch")
)

// ValidationError collects multiple validation failures for one entity.
// It is used at configuration boundaries where reporting every problem
// at once is more useful than the first one.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
