package form

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-agent/internal/answer"
	"github.com/jonathan/job-agent/internal/classify"
)

// Outcome of processing one control.
type Outcome string

// Control outcomes.
const (
	OutcomeFilled        Outcome = "filled"
	OutcomeAlreadyFilled Outcome = "already-filled"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// ControlResult records what happened to one control.
type ControlResult struct {
	Control  Control
	Category classify.Category
	Action   answer.Action
	Outcome  Outcome
	Err      error
}

// Report summarizes one pass over a page.
type Report struct {
	Results []ControlResult
}

// Count returns how many controls ended with the given outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Actions returns how many set-value, select-option or upload commands were issued,
// successful or not.
func (r *Report) Actions() int {
	n := 0
	for _, res := range r.Results {
		if res.Action.Kind != answer.Skip {
			n++
		}
	}
	return n
}

// DispatcherOptions tunes the dispatcher.
type DispatcherOptions struct {
	// YesNoFallback answers unclassified dropdowns and radio groups whose options are
	// plain yes/no with the generic yes/no heuristic instead of skipping them.
	YesNoFallback bool
}

// Resolver chooses the action for one classified control. *answer.Resolver is the
// production implementation.
type Resolver interface {
	Resolve(kind classify.Kind, category classify.Category, label string, options []string) (answer.Action, error)
}

// Dispatcher fills every control on a page using the classifier and resolver.
type Dispatcher struct {
	resolver Resolver
	logger   *zap.Logger
	opts     DispatcherOptions
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(resolver Resolver, logger *zap.Logger, opts DispatcherOptions) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{resolver: resolver, logger: logger, opts: opts}
}

// FillPage processes the page's controls sequentially in document order. Failures on
// a single control are logged and recorded; they never stop the pass. Only a failure
// to list the controls is returned.
func (d *Dispatcher) FillPage(ctx context.Context, page Page) (*Report, error) {
	controls, err := page.Controls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list form controls: %w", err)
	}

	report := &Report{Results: make([]ControlResult, 0, len(controls))}
	for _, c := range controls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, d.fillControl(ctx, page, c))
	}

	d.logger.Debug("page filled",
		zap.Int("controls", len(controls)),
		zap.Int("filled", report.Count(OutcomeFilled)),
		zap.Int("skipped", report.Count(OutcomeSkipped)),
		zap.Int("failed", report.Count(OutcomeFailed)),
	)
	return report, nil
}

func (d *Dispatcher) fillControl(ctx context.Context, page Page, c Control) ControlResult {
	res := ControlResult{Control: c, Category: classify.Unclassified, Action: answer.SkipAction()}

	if c.Filled() {
		res.Outcome = OutcomeAlreadyFilled
		return res
	}

	res.Category = d.categorize(c)

	action, err := d.resolver.Resolve(c.Kind, res.Category, c.Label, c.Options)
	if err != nil {
		d.logger.Warn("could not resolve answer",
			zap.String("control", describe(c)),
			zap.String("category", string(res.Category)),
			zap.Error(err),
		)
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Action = action

	if action.Kind == answer.Skip {
		if res.Category != classify.Unclassified {
			d.logger.Debug("no matching answer", zap.String("control", describe(c)), zap.String("category", string(res.Category)))
		}
		res.Outcome = OutcomeSkipped
		return res
	}

	if err := apply(ctx, page, c, action); err != nil {
		err = &ActionError{Control: describe(c), Action: action.Kind.String(), Cause: err}
		d.logger.Warn("could not fill control", zap.Error(err))
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Outcome = OutcomeFilled
	return res
}

func (d *Dispatcher) categorize(c Control) classify.Category {
	category := classify.Classify(c.Kind, c.ClassifyText())
	if category == classify.Unclassified && d.opts.YesNoFallback && isYesNoChoice(c) {
		return classify.GenericYesNo
	}
	return category
}

func apply(ctx context.Context, page Page, c Control, action answer.Action) error {
	switch action.Kind {
	case answer.SetValue:
		return page.SetValue(ctx, c, action.Text)
	case answer.SelectOption:
		if action.Index < 0 || action.Index >= len(c.Options) {
			return fmt.Errorf("option index %d out of range (%d options)", action.Index, len(c.Options))
		}
		return page.SelectOption(ctx, c, action.Index)
	case answer.UploadFile:
		return page.Upload(ctx, c, action.Text)
	}
	return nil
}

func isYesNoChoice(c Control) bool {
	if c.Kind != classify.KindDropdown && c.Kind != classify.KindRadio {
		return false
	}
	var yes, no bool
	for _, opt := range c.Options {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "yes":
			yes = true
		case "no":
			no = true
		}
	}
	return yes && no
}

func describe(c Control) string {
	id := c.ID
	if id == "" {
		id = c.Selector
	}
	if c.Label == "" {
		return fmt.Sprintf("%s[%s]", c.Kind, id)
	}
	return fmt.Sprintf("%s[%s] %q", c.Kind, id, c.Label)
}
