package apply

import "fmt"

// NavigationError means a continue, review or submit control was found but could not
// be actioned.
type NavigationError struct {
	Control string
	Page    int
	Cause   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation error on page %d (%s): %v", e.Page, e.Control, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// SessionFatalError aborts the whole application attempt.
type SessionFatalError struct {
	Message string
	Cause   error
}

func (e *SessionFatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("application aborted: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("application aborted: %s", e.Message)
}

func (e *SessionFatalError) Unwrap() error {
	return e.Cause
}
