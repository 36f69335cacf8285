package queries

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no template has the requested name or revision.
	ErrNotFound = errors.New("template not found")

	// ErrDuplicate is returned when registering a name and revision twice.
	ErrDuplicate = errors.New("template already registered")

	// ErrInvalid is returned for templates that fail validation.
	ErrInvalid = errors.New("invalid template")
)

// NotFoundError names the missing template. Revision is 0 when the latest was
// requested.
type NotFoundError struct {
	Name     string
	Revision int
}

func (e *NotFoundError) Error() string {
	if e.Revision > 0 {
		return fmt.Sprintf("template %q revision %d not found", e.Name, e.Revision)
	}
	return fmt.Sprintf("template %q not found", e.Name)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError wraps every problem found in one template revision.
type ValidationError struct {
	Name     string
	Revision int
	Problems []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rev %d: %v", e.Name, e.Revision, errors.Join(e.Problems...))
}

// Unwrap exposes the individual problems and ErrInvalid to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrInvalid}, e.Problems...)
}
