package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ValidationError represents bad or missing input.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return e.Reason
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// IndexOutOfRangeError is returned when a positional reference does not
// address an element of the current sequence. It matches ErrValidation.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

func (e IndexOutOfRangeError) Is(target error) bool {
	switch target.(type) {
	case IndexOutOfRangeError, *IndexOutOfRangeError, ValidationError, *ValidationError:
		return true
	}
	return false
}

// ConflictError is returned when a caller's snapshot version no longer
// matches the stored one.
type ConflictError struct {
	Expected string
	Actual   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %s, got %s", e.Expected, e.Actual)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var (
	// ErrNotFound is the sentinel error for missing resources.
	ErrNotFound = NotFoundError{}
	// ErrValidation is the sentinel error for rejected input.
	ErrValidation = ValidationError{}
	// ErrIndexOutOfRange is the sentinel error for bad positional references.
	ErrIndexOutOfRange = IndexOutOfRangeError{}
	// ErrConflict is the sentinel error for stale snapshot versions.
	ErrConflict = ConflictError{}
)
