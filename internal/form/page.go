// Package form defines the page-automation boundary and fills a page's form
// controls one at a time.
package form

import (
	"context"
	"strings"

	"github.com/jonathan/job-agent/internal/classify"
)

// Control is one form field discovered on the current page.
type Control struct {
	Kind     classify.Kind
	ID       string   // element id, used to locate the control again
	Name     string   // name attribute (radio groups share it)
	Selector string   // CSS selector that addresses the control
	Label    string   // associated label or legend text, possibly empty
	Options  []string // option labels for dropdowns and radio groups
	Value    string   // current value; non-empty means already filled
}

// Filled reports whether the control already holds a value.
func (c Control) Filled() bool {
	return strings.TrimSpace(c.Value) != ""
}

// ClassifyText is the text the classifier sees: the label, or for file inputs the
// label and element id (upload inputs are often unlabeled).
func (c Control) ClassifyText() string {
	if c.Kind == classify.KindFile {
		return strings.TrimSpace(c.Label + " " + c.ID + " " + c.Name)
	}
	return c.Label
}

// Criteria describes a button to look for, e.g. the Continue button.
type Criteria struct {
	Name string // human-readable name for logs
	CSS  string // CSS selector; comma-separated alternatives allowed
}

// Handle addresses a control found with Find.
type Handle struct {
	Selector string
	Index    int // position among the elements matching Selector
	Text     string
}

// Page is what the form engine needs from the browser. Every call is fallible and
// blocking calls honour ctx.
type Page interface {
	// Controls lists the fillable controls of the current page in document order.
	Controls(ctx context.Context) ([]Control, error)
	SetValue(ctx context.Context, c Control, text string) error
	SelectOption(ctx context.Context, c Control, index int) error
	Upload(ctx context.Context, c Control, path string) error
	// Find returns ok=false when no visible element matches.
	Find(ctx context.Context, criteria Criteria) (h Handle, ok bool, err error)
	Click(ctx context.Context, h Handle) error
	Navigate(ctx context.Context, url string) error
	// Settle waits for asynchronous page content after an action.
	Settle(ctx context.Context) error
}
