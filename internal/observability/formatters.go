// Package observability provides logging setup and formatted terminal output for
// monitor runs.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jonathan/job-agent/internal/answer"
	"github.com/jonathan/job-agent/internal/apply"
	"github.com/jonathan/job-agent/internal/form"
	"github.com/jonathan/job-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 70
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs the final summary of a monitor run with next steps.
func (p *Printer) PrintRunSummary(s *types.RunSummary) {
	if s == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString("JOBS:\n")
	sb.WriteString(fmt.Sprintf("  • Total jobs found: %d\n", len(s.Found)))
	sb.WriteString(fmt.Sprintf("  • Applications submitted: %d\n", len(s.Applied)))
	if len(s.Found) > 0 {
		sb.WriteString(fmt.Sprintf("  • Success rate: %.1f%%\n", s.SuccessRate()))
	} else {
		sb.WriteString("  • Success rate: N/A\n")
	}
	if !s.LoggedIn {
		sb.WriteString("  • Not logged in: monitor-only run\n")
	}
	sb.WriteString("\n")

	sb.WriteString("NETWORKING:\n")
	sb.WriteString(fmt.Sprintf("  • People identified for networking: %d\n", len(s.Contacts)))
	if len(s.Applied) > 0 {
		sb.WriteString(fmt.Sprintf("  • Average per job applied: %.1f\n", float64(len(s.Contacts))/float64(len(s.Applied))))
	} else {
		sb.WriteString("  • Average per job: N/A\n")
	}
	sb.WriteString("\n")

	sb.WriteString("NEXT STEPS:\n")
	for i, step := range NextSteps(s) {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}
	if s.ExportPath != "" {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Exported: %s\n", s.ExportPath))
	}

	p.printBox("JOB MONITOR - FINAL SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// NextSteps lists the follow-ups suggested after a run.
func NextSteps(s *types.RunSummary) []string {
	if len(s.Applied) > 0 {
		return []string{
			"Review job_tracker_master.csv for applied jobs",
			"Check networking_targets.csv for people to connect with",
			"Send personalized connection requests on LinkedIn",
			"Follow up on applications in 3-5 days",
		}
	}
	return []string{
		"Review job_tracker_master.csv for found jobs",
		"Manually apply to interesting positions",
		"Consider enabling auto_apply in config.json",
	}
}

// PrintContacts outputs networking targets with their scores and messages.
func (p *Printer) PrintContacts(contacts []types.Contact) {
	if len(contacts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d people to connect with:\n\n", len(contacts)))

	count := min(len(contacts), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := contacts[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (score %d)\n", i+1, c.Name, c.Score))
		sb.WriteString(fmt.Sprintf("    %s at %s\n", c.Title, c.Company))
		if c.MutualConnections > 0 {
			sb.WriteString(fmt.Sprintf("    Mutual connections: %d\n", c.MutualConnections))
		}
		sb.WriteString(fmt.Sprintf("    %s\n", c.ProfileURL))
		if c.Message != "" {
			sb.WriteString(fmt.Sprintf("    Message: %s\n", c.Message))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(contacts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more contacts", len(contacts)-maxItemsToShow))
	}

	p.printBox("NETWORKING TARGETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSession outputs one application attempt: a coloured outcome line followed by
// what happened to each control.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSession(s *apply.Session) {
	if s == nil {
		return
	}

	outcomeColor(s.Outcome).Fprintf(p.out, "%s", s.Status())
	fmt.Fprintf(p.out, "  %s\n", s.JobURL)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages: %d  Continue: %d  Review: %d\n", s.Page, s.Continues, s.Reviews))
	sb.WriteString(fmt.Sprintf("Controls: %d  Filled: %d  Failed: %d\n", s.ControlsSeen, s.Filled, s.Failed))

	for i, r := range s.Reports {
		if len(r.Results) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\nPage %d:\n", i+1))
		for _, res := range r.Results {
			sb.WriteString(fmt.Sprintf("  %s %s", outcomeMark(res.Outcome), labelOf(res.Control)))
			if res.Action.Kind != answer.Skip {
				sb.WriteString(fmt.Sprintf(" -> %s", res.Action))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("APPLICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcomeLine prints a single coloured status line, used for batch output.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcomeLine(job types.Job) {
	cyan.Fprintf(p.out, "%-40s", truncate(job.Title+" @ "+job.Company, 40))
	fmt.Fprint(p.out, "  ")
	outcomeColor(apply.Outcome(job.Status)).Fprintln(p.out, job.Status)
}

func outcomeColor(o apply.Outcome) *color.Color {
	switch {
	case o == apply.Applied:
		return green
	case o.Success() || o == apply.ManualRequired || o == apply.MaxPagesReached:
		return yellow
	case strings.HasPrefix(string(o), string(apply.Errored)):
		return red
	default:
		return cyan
	}
}

func outcomeMark(o form.Outcome) string {
	switch o {
	case form.OutcomeFilled:
		return "+"
	case form.OutcomeAlreadyFilled:
		return "="
	case form.OutcomeFailed:
		return "!"
	default:
		return "-"
	}
}

func labelOf(c form.Control) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Selector
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
