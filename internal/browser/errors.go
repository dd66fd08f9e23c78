package browser

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned by Login when email or password is empty.
var ErrNoCredentials = errors.New("linkedin credentials not configured")

// Error represents a failed browser operation.
type Error struct {
	Op       string
	Selector string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	target := e.Op
	if e.Selector != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.Selector)
	}
	if e.Cause != nil {
		return fmt.Sprintf("browser %s: %s: %v", target, e.Message, e.Cause)
	}
	return fmt.Sprintf("browser %s: %s", target, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
