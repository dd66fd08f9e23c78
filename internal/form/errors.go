package form

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Page implementations when a control no longer exists.
var ErrNotFound = errors.New("element not found")

// ActionError means the page could not apply a resolved action to a control.
type ActionError struct {
	Control string
	Action  string
	Cause   error
}

func (e *ActionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("action %s failed on %s: %v", e.Action, e.Control, e.Cause)
	}
	return fmt.Sprintf("action %s failed on %s", e.Action, e.Control)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}
