package apply

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/form"
	"github.com/jonathan/job-agent/internal/profile"
)

// Entry points and modal controls for the supported application hosts.
var (
	EasyApplyButton  = form.Criteria{Name: "easy-apply", CSS: `button.jobs-apply-button`}
	DismissButton    = form.Criteria{Name: "dismiss", CSS: `button[aria-label='Dismiss']`}
	WorkdayApply     = form.Criteria{Name: "workday-apply", CSS: `a[data-automation-id='apply']`}
	GreenhouseSubmit = form.Criteria{Name: "greenhouse-submit", CSS: `#submit_app`}
	greenhouseFields = []string{"first_name", "last_name", "email", "phone"}
	greenhouseResume = form.Control{Kind: classify.KindFile, ID: "resume", Name: "resume", Selector: `input[type='file'][name='resume']`}
	greenhouseCover  = form.Control{Kind: classify.KindFile, ID: "cover_letter", Name: "cover_letter", Selector: `input[type='file'][name='cover_letter']`}
)

// Platform identifies which flow handles a job URL.
type Platform string

const (
	PlatformLinkedIn   Platform = "linkedin"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformWorkday    Platform = "workday"
)

// DetectPlatform picks the flow from the URL host. Anything unrecognised is treated
// as a LinkedIn Easy Apply listing.
func DetectPlatform(jobURL string) Platform {
	host := jobURL
	if u, err := url.Parse(jobURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "myworkdayjobs.com"), strings.Contains(host, "workday"):
		return PlatformWorkday
	default:
		return PlatformLinkedIn
	}
}

// Applier runs complete application attempts against a single page.
type Applier struct {
	page      form.Page
	profile   *profile.Profile
	navigator *Navigator
	opts      Options
	logger    *zap.Logger
}

// NewApplier wires a navigator over dispatcher. A nil profile means nothing is known
// about the candidate.
func NewApplier(page form.Page, p *profile.Profile, dispatcher *form.Dispatcher, opts Options, logger *zap.Logger) *Applier {
	if p == nil {
		p = &profile.Profile{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	nav := NewNavigator(dispatcher, opts, logger)
	return &Applier{page: page, profile: p, navigator: nav, opts: nav.opts, logger: logger}
}

// ApplyTo dispatches to the flow for the job URL's host.
func (a *Applier) ApplyTo(ctx context.Context, jobURL string) *Session {
	switch DetectPlatform(jobURL) {
	case PlatformGreenhouse:
		return a.Greenhouse(ctx, jobURL)
	case PlatformWorkday:
		return a.Workday(ctx, jobURL)
	default:
		return a.EasyApply(ctx, jobURL)
	}
}

// EasyApply opens the listing, starts the Easy Apply modal and walks it. The modal is
// dismissed afterwards unless the application was submitted.
func (a *Applier) EasyApply(ctx context.Context, jobURL string) *Session {
	log := a.logger.With(zap.String("job_url", jobURL), zap.String("flow", "easy-apply"))

	if s := a.open(ctx, jobURL, log); s != nil {
		return s
	}

	h, ok, err := a.page.Find(ctx, EasyApplyButton)
	if err != nil {
		return a.fail(jobURL, &SessionFatalError{Message: "probing for easy apply button", Cause: err}, log)
	}
	if !ok {
		log.Info("no easy apply button, manual application required")
		return a.terminal(jobURL, ManualRequired)
	}
	if err := a.page.Click(ctx, h); err != nil {
		return a.fail(jobURL, &NavigationError{Control: EasyApplyButton.Name, Cause: err}, log)
	}
	if err := a.page.Settle(ctx); err != nil {
		log.Warn("easy apply modal did not settle", zap.Error(err))
	}

	s := a.navigator.Run(ctx, a.page)
	s.JobURL = jobURL

	if s.Outcome != Applied {
		a.dismiss(ctx, log)
	}
	log.Info("application finished", zap.String("status", s.Status()), zap.Int("pages", s.Page))
	return s
}

// Greenhouse fills the standard Greenhouse fields and attaches documents. It submits
// only when auto-submit is on.
func (a *Applier) Greenhouse(ctx context.Context, jobURL string) *Session {
	log := a.logger.With(zap.String("job_url", jobURL), zap.String("flow", "greenhouse"))

	if s := a.open(ctx, jobURL, log); s != nil {
		return s
	}

	values := map[string]string{
		"first_name": a.profile.FirstName,
		"last_name":  a.profile.LastName,
		"email":      a.profile.Email,
		"phone":      a.profile.Phone,
	}
	s := &Session{JobURL: jobURL, Page: 1, StartedAt: time.Now()}
	for _, id := range greenhouseFields {
		v := values[id]
		if v == "" {
			continue
		}
		c := form.Control{Kind: classify.KindText, ID: id, Name: id, Selector: "#" + id}
		s.ControlsSeen++
		if err := a.page.SetValue(ctx, c, v); err != nil {
			s.Failed++
			log.Warn("could not fill greenhouse field", zap.String("field", id), zap.Error(err))
			continue
		}
		s.Filled++
	}

	for _, doc := range []struct {
		control form.Control
		path    string
	}{
		{greenhouseResume, a.profile.ResumePath},
		{greenhouseCover, a.profile.CoverLetterPath},
	} {
		if doc.path == "" {
			continue
		}
		s.ControlsSeen++
		if err := a.page.Upload(ctx, doc.control, doc.path); err != nil {
			s.Failed++
			log.Warn("could not attach document", zap.String("field", doc.control.ID), zap.Error(err))
			continue
		}
		s.Filled++
	}

	if !a.opts.AutoSubmit {
		log.Info("greenhouse form filled, awaiting confirmation")
		return s.finish(ReadyToSubmit, nil)
	}

	h, ok, err := a.page.Find(ctx, GreenhouseSubmit)
	if err != nil {
		return s.finish(Errored, &SessionFatalError{Message: "probing for greenhouse submit", Cause: err})
	}
	if !ok {
		return s.finish(Done, nil)
	}
	if err := a.page.Click(ctx, h); err != nil {
		log.Warn("greenhouse submit not actionable", zap.Error(err))
		return s.finish(Done, nil)
	}
	log.Info("greenhouse application submitted")
	return s.finish(Applied, nil)
}

// Workday only opens the application; account creation is left to the candidate.
func (a *Applier) Workday(ctx context.Context, jobURL string) *Session {
	log := a.logger.With(zap.String("job_url", jobURL), zap.String("flow", "workday"))

	if s := a.open(ctx, jobURL, log); s != nil {
		return s
	}
	h, ok, err := a.page.Find(ctx, WorkdayApply)
	if err != nil {
		return a.fail(jobURL, &SessionFatalError{Message: "probing for workday apply", Cause: err}, log)
	}
	if ok {
		if err := a.page.Click(ctx, h); err != nil {
			log.Warn("workday apply not actionable", zap.Error(err))
		}
	}
	log.Info("workday requires account creation, manual application required")
	return a.terminal(jobURL, ManualRequired)
}

func (a *Applier) open(ctx context.Context, jobURL string, log *zap.Logger) *Session {
	if err := a.page.Navigate(ctx, jobURL); err != nil {
		return a.fail(jobURL, &SessionFatalError{Message: "opening job page", Cause: err}, log)
	}
	if err := a.page.Settle(ctx); err != nil {
		log.Warn("job page did not settle", zap.Error(err))
	}
	return nil
}

func (a *Applier) dismiss(ctx context.Context, log *zap.Logger) {
	h, ok, err := a.page.Find(ctx, DismissButton)
	if err != nil || !ok {
		return
	}
	if err := a.page.Click(ctx, h); err != nil {
		log.Debug("could not dismiss application modal", zap.Error(err))
	}
}

func (a *Applier) terminal(jobURL string, o Outcome) *Session {
	s := &Session{JobURL: jobURL, StartedAt: time.Now()}
	return s.finish(o, nil)
}

func (a *Applier) fail(jobURL string, err error, log *zap.Logger) *Session {
	log.Error("application failed", zap.Error(err))
	s := &Session{JobURL: jobURL, StartedAt: time.Now()}
	return s.finish(Errored, err)
}
