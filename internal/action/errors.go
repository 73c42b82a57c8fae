package action

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedAction = errors.New("unsupported action type")
	ErrSubmission        = errors.New("transaction submission failed")
	ErrSigning           = errors.New("message signing failed")
	ErrReverted          = errors.New("transaction reverted")
)

// Error ties a dispatch failure class to its cause, so that errors.Is
// matches the class and errors.As reaches the cause.
type Error struct {
	Kind    error
	Purpose string
	Cause   error
}

func (e *Error) Error() string {
	if e.Purpose == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Purpose, e.Cause)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}
