package network

import (
	"fmt"

	"github.com/jonathan/job-agent/internal/types"
)

// MessageLimit is LinkedIn's connection note limit.
const MessageLimit = 300

// truncateAbove leaves headroom under MessageLimit; longer notes are cut to
// truncateAbove-3 runes plus an ellipsis.
const truncateAbove = 295

// ConnectionMessage drafts the note sent with a connection request.
func ConnectionMessage(c types.Contact, job types.Job) string {
	var msg string
	if n := c.MutualConnections; n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		msg = fmt.Sprintf("Hi %s, I noticed we have %d mutual connection%s. I recently applied for the %s role at %s and would love to connect and learn about your experience there.",
			c.FirstName(), n, plural, job.Title, c.Company)
	} else {
		msg = fmt.Sprintf("Hi %s, I recently applied for the %s position at %s and was impressed by the team's work in %s. I'd love to connect and learn more about your experience there.",
			c.FirstName(), job.Title, c.Company, ExtractDepartment(c.Title))
	}
	return truncate(msg)
}

func truncate(msg string) string {
	r := []rune(msg)
	if len(r) <= truncateAbove {
		return msg
	}
	return string(r[:truncateAbove-3]) + "..."
}
