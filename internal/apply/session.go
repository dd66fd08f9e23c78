// Package apply drives multi-page job application flows: fill the page, then
// continue, review or submit, bounded by a page ceiling.
package apply

import (
	"fmt"
	"time"

	"github.com/jonathan/job-agent/internal/form"
)

// Outcome is the terminal state of an application attempt.
type Outcome string

// Terminal states.
const (
	Applied         Outcome = "Applied"
	ReadyToSubmit   Outcome = "Ready to Submit - Confirmation Required"
	ManualRequired  Outcome = "Manual Application Required"
	Errored         Outcome = "Error"
	MaxPagesReached Outcome = "Max Pages Reached"
	Done            Outcome = "Done"
)

// Success reports whether the outcome counts as a completed application for
// follow-up steps such as networking.
func (o Outcome) Success() bool {
	switch o {
	case Applied, ReadyToSubmit, Done:
		return true
	}
	return false
}

// Page ceilings for the two flows.
const (
	PrimaryMaxPages   = 10
	SecondaryMaxPages = 5
)

// Session is the state of one application attempt. It is created when the attempt
// starts and discarded once Outcome is set.
type Session struct {
	JobURL       string
	Page         int
	Outcome      Outcome
	Err          error
	Continues    int
	Reviews      int
	ControlsSeen int
	Filled       int
	Failed       int
	StartedAt    time.Time
	FinishedAt   time.Time
	Reports      []*form.Report
}

// Status renders the outcome the way it is stored in the job tracker.
func (s *Session) Status() string {
	if s.Outcome == Errored && s.Err != nil {
		return fmt.Sprintf("Error: %v", s.Err)
	}
	return string(s.Outcome)
}

func (s *Session) finish(o Outcome, err error) *Session {
	s.Outcome = o
	s.Err = err
	s.FinishedAt = time.Now()
	return s
}

func (s *Session) record(r *form.Report) {
	s.Reports = append(s.Reports, r)
	s.ControlsSeen += len(r.Results)
	s.Filled += r.Count(form.OutcomeFilled)
	s.Failed += r.Count(form.OutcomeFailed)
}
