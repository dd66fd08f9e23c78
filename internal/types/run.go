package types

import "time"

// RunState is persisted after every monitor run
type RunState struct {
	RunID              string    `json:"run_id"`
	LastRun            time.Time `json:"last_run"`
	JobsFound          int       `json:"jobs_found"`
	JobsApplied        int       `json:"jobs_applied"`
	NetworkingContacts int       `json:"networking_contacts"`
}

// RunSummary is what a monitor run reports when it finishes
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	LoggedIn   bool
	Found      []Job
	Applied    []Job
	Contacts   []Contact
	ExportPath string
}

// SuccessRate is applied/found as a percentage, 0 when nothing was found.
func (s *RunSummary) SuccessRate() float64 {
	if len(s.Found) == 0 {
		return 0
	}
	return float64(len(s.Applied)) / float64(len(s.Found)) * 100
}

// State condenses the summary into the persisted run state.
func (s *RunSummary) State() RunState {
	return RunState{
		RunID:              s.RunID,
		LastRun:            s.FinishedAt,
		JobsFound:          len(s.Found),
		JobsApplied:        len(s.Applied),
		NetworkingContacts: len(s.Contacts),
	}
}
