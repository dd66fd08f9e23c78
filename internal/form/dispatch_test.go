package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/job-agent/internal/answer"
	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/form"
	"github.com/jonathan/job-agent/internal/form/formtest"
	"github.com/jonathan/job-agent/internal/profile"
)

func intPtr(v int) *int { return &v }

func testProfile() *profile.Profile {
	return &profile.Profile{
		Phone:                "+1 (212) 555-0100",
		LinkedInURL:          "https://linkedin.com/in/ada",
		TotalYearsExperience: intPtr(6),
		PythonYears:          intPtr(4),
		ResumePath:           "/docs/resume.pdf",
	}
}

func applicationScreen() *formtest.Screen {
	return &formtest.Screen{
		Controls: []form.Control{
			{Kind: classify.KindText, ID: "phone", Label: "Mobile phone number"},
			{Kind: classify.KindText, ID: "py", Label: "Years of Python experience"},
			{Kind: classify.KindText, ID: "li", Label: "LinkedIn profile"},
			{Kind: classify.KindText, ID: "city", Label: "City"},
			{Kind: classify.KindDropdown, ID: "edu", Label: "Highest degree", Options: []string{"Select", "High school", "Bachelor's", "Master's"}},
			{Kind: classify.KindDropdown, ID: "dis", Label: "Disability status", Options: []string{"Yes", "No", "I don't wish to answer"}},
			{Kind: classify.KindRadio, ID: "reloc", Name: "reloc", Label: "Are you willing to relocate?", Options: []string{"Yes", "No"}},
			{Kind: classify.KindFile, ID: "resume-upload"},
		},
	}
}

func newDispatcher(logger *zap.Logger, opts form.DispatcherOptions) *form.Dispatcher {
	return form.NewDispatcher(answer.NewResolver(testProfile()), logger, opts)
}

func TestFillPage_FillsEachControlInOrder(t *testing.T) {
	page := formtest.NewPage(applicationScreen())

	report, err := newDispatcher(nil, form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)

	require.Len(t, page.Commands, 7, page.String())
	assert.Equal(t, formtest.Command{Op: "set-value", Target: "phone", Value: "12125550100"}, page.Commands[0])
	assert.Equal(t, formtest.Command{Op: "set-value", Target: "py", Value: "4"}, page.Commands[1])
	assert.Equal(t, formtest.Command{Op: "set-value", Target: "li", Value: "https://linkedin.com/in/ada"}, page.Commands[2])
	assert.Equal(t, formtest.Command{Op: "select-option", Target: "edu", Value: "Bachelor's"}, page.Commands[3])
	assert.Equal(t, formtest.Command{Op: "select-option", Target: "dis", Value: "I don't wish to answer"}, page.Commands[4])
	assert.Equal(t, formtest.Command{Op: "select-option", Target: "reloc", Value: "Yes"}, page.Commands[5])
	assert.Equal(t, formtest.Command{Op: "upload", Target: "resume-upload", Value: "/docs/resume.pdf"}, page.Commands[6])

	assert.Equal(t, 7, report.Count(form.OutcomeFilled))
	assert.Equal(t, 1, report.Count(form.OutcomeSkipped))
	assert.Equal(t, classify.Unclassified, report.Results[3].Category)
}

func TestFillPage_SecondPassIsIdempotent(t *testing.T) {
	page := formtest.NewPage(applicationScreen())
	d := newDispatcher(nil, form.DispatcherOptions{})

	_, err := d.FillPage(context.Background(), page)
	require.NoError(t, err)
	first := page.Fills()

	report, err := d.FillPage(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, first, page.Fills(), "second pass must not issue any fill commands")
	assert.Equal(t, 0, report.Actions())
	assert.Equal(t, 7, report.Count(form.OutcomeAlreadyFilled))
}

func TestFillPage_PrefilledControlsAreNotOverwritten(t *testing.T) {
	screen := &formtest.Screen{Controls: []form.Control{
		{Kind: classify.KindText, ID: "phone", Label: "Phone", Value: "555 user typed"},
		{Kind: classify.KindDropdown, ID: "edu", Label: "Degree", Options: []string{"Bachelor"}, Value: "Bachelor"},
	}}
	page := formtest.NewPage(screen)

	report, err := newDispatcher(nil, form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)

	assert.Empty(t, page.Commands)
	assert.Equal(t, 2, report.Count(form.OutcomeAlreadyFilled))
}

func TestFillPage_ActionFailureIsIsolated(t *testing.T) {
	screen := applicationScreen()
	screen.FailActions = map[string]error{"py": errors.New("element detached")}
	page := formtest.NewPage(screen)

	core, logs := observer.New(zapcore.WarnLevel)
	report, err := newDispatcher(zap.New(core), form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(form.OutcomeFailed))
	assert.Equal(t, 6, report.Count(form.OutcomeFilled), "controls after the failure are still filled")

	failed := report.Results[1]
	var actionErr *form.ActionError
	require.ErrorAs(t, failed.Err, &actionErr)
	assert.Equal(t, "set-value", actionErr.Action)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "could not fill control", logs.All()[0].Message)
}

// failingResolver reports a resolution error for one label and defers to the
// profile resolver for everything else.
type failingResolver struct {
	label string
	next  form.Resolver
}

func (f failingResolver) Resolve(kind classify.Kind, category classify.Category, label string, options []string) (answer.Action, error) {
	if label == f.label {
		return answer.SkipAction(), &answer.ResolutionError{Category: category, Message: "policy panicked", Cause: errors.New("boom")}
	}
	return f.next.Resolve(kind, category, label, options)
}

func TestFillPage_ResolutionFailureIsIsolated(t *testing.T) {
	page := formtest.NewPage(applicationScreen())
	resolver := failingResolver{label: "Highest degree", next: answer.NewResolver(testProfile())}

	core, logs := observer.New(zapcore.WarnLevel)
	report, err := form.NewDispatcher(resolver, zap.New(core), form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)

	require.Len(t, report.Results, 8)
	failed := report.Results[4]
	assert.Equal(t, "edu", failed.Control.ID)
	assert.Equal(t, form.OutcomeFailed, failed.Outcome)
	assert.Equal(t, classify.Education, failed.Category)
	var resErr *answer.ResolutionError
	require.ErrorAs(t, failed.Err, &resErr)
	assert.Equal(t, answer.SkipAction(), failed.Action)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "could not resolve answer", entry.Message)
	assert.Equal(t, string(classify.Education), entry.ContextMap()["category"])

	for _, res := range report.Results[5:] {
		assert.Equal(t, form.OutcomeFilled, res.Outcome, "control %s after the failure is still filled", res.Control.ID)
	}
	assert.Equal(t, 1, report.Count(form.OutcomeFailed))
	assert.Equal(t, 6, report.Count(form.OutcomeFilled))
}

func TestFillPage_UnlabeledControlIsSkipped(t *testing.T) {
	page := formtest.NewPage(&formtest.Screen{Controls: []form.Control{
		{Kind: classify.KindText, ID: "mystery"},
		{Kind: classify.KindDropdown, ID: "mystery-select", Options: []string{"Yes", "No"}},
	}})

	report, err := newDispatcher(nil, form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)

	assert.Empty(t, page.Commands)
	assert.Equal(t, 2, report.Count(form.OutcomeSkipped))
}

func TestFillPage_YesNoFallback(t *testing.T) {
	controls := []form.Control{
		{Kind: classify.KindRadio, ID: "q1", Label: "Do you require visa sponsorship?", Options: []string{"Yes", "No"}},
		{Kind: classify.KindDropdown, ID: "q2", Label: "Do you enjoy puzzles?", Options: []string{"Select", "Yes", "No"}},
		{Kind: classify.KindDropdown, ID: "q3", Label: "Preferred shift", Options: []string{"Day", "Night"}},
	}

	page := formtest.NewPage(&formtest.Screen{Controls: append([]form.Control(nil), controls...)})
	_, err := newDispatcher(nil, form.DispatcherOptions{YesNoFallback: true}).FillPage(context.Background(), page)
	require.NoError(t, err)

	require.Len(t, page.Commands, 2, page.String())
	assert.Equal(t, "q1", page.Commands[0].Target)
	assert.Equal(t, "Yes", page.Commands[0].Value, "radio label with sponsorship classifies as work authorization first")
	assert.Equal(t, "q2", page.Commands[1].Target)
	assert.Equal(t, "Yes", page.Commands[1].Value)

	page = formtest.NewPage(&formtest.Screen{Controls: append([]form.Control(nil), controls[1:]...)})
	_, err = newDispatcher(nil, form.DispatcherOptions{}).FillPage(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, page.Commands, "fallback is off by default")
}

func TestFillPage_ControlsError(t *testing.T) {
	page := formtest.NewPage()
	page.ControlsErr = errors.New("target closed")

	report, err := newDispatcher(nil, form.DispatcherOptions{}).FillPage(context.Background(), page)
	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "failed to list form controls")
}

func TestFillPage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := formtest.NewPage(applicationScreen())
	_, err := newDispatcher(nil, form.DispatcherOptions{}).FillPage(ctx, page)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.Commands)
}

func TestControl_ClassifyText(t *testing.T) {
	c := form.Control{Kind: classify.KindFile, ID: "cover-letter-input", Label: "Attach"}
	assert.Equal(t, "Attach cover-letter-input", c.ClassifyText())

	c = form.Control{Kind: classify.KindText, ID: "phone-1", Label: "Phone"}
	assert.Equal(t, "Phone", c.ClassifyText())
}
