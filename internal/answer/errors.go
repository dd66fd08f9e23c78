package answer

import (
	"fmt"

	"github.com/jonathan/job-agent/internal/classify"
)

// ResolutionError means a policy failed for one control. The control is skipped.
type ResolutionError struct {
	Category classify.Category
	Message  string
	Cause    error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolution failed for %s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("resolution failed for %s: %s", e.Category, e.Message)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}
