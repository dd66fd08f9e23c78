// Package types provides the records shared by the job monitor, networking and
// tracker packages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Job sources
const (
	SourceLinkedIn       = "LinkedIn"
	SourceCompanyWebsite = "Company Website"
)

// Job statuses that are not application outcomes
const (
	StatusFound        = "Found"
	StatusManualReview = "Manual Review Required"
)

// TimeLayout is how timestamps are rendered in CSV exports.
const TimeLayout = "2006-01-02 15:04:05"

// Job is a listing discovered by a search or a careers page check
type Job struct {
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	EasyApply bool      `json:"easy_apply"`
	Keyword   string    `json:"keyword"`
	FoundAt   time.Time `json:"found_date"`
	Status    string    `json:"status"`
	// Contacts is the number of networking targets saved for this job.
	Contacts int `json:"networking_contacts,omitempty"`
	// RunID identifies the monitor run that last touched the job.
	RunID string `json:"run_id,omitempty"`
}

// DedupeJobs keeps the first occurrence of each URL, preserving order.
func DedupeJobs(jobs []Job) []Job {
	seen := make(map[string]bool, len(jobs))
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.URL] {
			continue
		}
		seen[j.URL] = true
		out = append(out, j)
	}
	return out
}
