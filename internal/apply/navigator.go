package apply

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-agent/internal/form"
)

// Buttons looked for after each page, in priority order.
var (
	ContinueButton = form.Criteria{Name: "continue", CSS: `button[aria-label*='Continue'], button[aria-label*='Next']`}
	ReviewButton   = form.Criteria{Name: "review", CSS: `button[aria-label*='Review']`}
	SubmitButton   = form.Criteria{Name: "submit", CSS: `button[aria-label*='Submit']`}
)

// Options configures a Navigator.
type Options struct {
	MaxPages   int
	AutoSubmit bool
}

// PrimaryOptions is the Easy Apply flow with the 10 page ceiling.
func PrimaryOptions(autoSubmit bool) Options {
	return Options{MaxPages: PrimaryMaxPages, AutoSubmit: autoSubmit}
}

// SecondaryOptions is the quick auto-apply flow with the 5 page ceiling.
func SecondaryOptions(autoSubmit bool) Options {
	return Options{MaxPages: SecondaryMaxPages, AutoSubmit: autoSubmit}
}

// Navigator walks an application flow page by page.
type Navigator struct {
	dispatcher *form.Dispatcher
	opts       Options
	logger     *zap.Logger
}

// NewNavigator creates a Navigator. A non-positive MaxPages uses the primary ceiling.
func NewNavigator(dispatcher *form.Dispatcher, opts Options, logger *zap.Logger) *Navigator {
	if opts.MaxPages <= 0 {
		opts.MaxPages = PrimaryMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{dispatcher: dispatcher, opts: opts, logger: logger}
}

// Run fills and advances the flow on page until a terminal state. It never returns
// an error: failures are reported through Session.Outcome and Session.Err.
func (n *Navigator) Run(ctx context.Context, page form.Page) *Session {
	s := &Session{StartedAt: time.Now()}

	for s.Page < n.opts.MaxPages {
		if err := ctx.Err(); err != nil {
			return s.finish(Errored, &SessionFatalError{Message: "cancelled", Cause: err})
		}
		s.Page++
		log := n.logger.With(zap.Int("page", s.Page))
		log.Info("processing application page")

		report, err := n.dispatcher.FillPage(ctx, page)
		if err != nil {
			log.Warn("could not fill page", zap.Error(err))
		} else {
			s.record(report)
		}

		next, err := n.advance(ctx, page, s, log)
		if err != nil {
			log.Error("application aborted", zap.Error(err))
			return s.finish(Errored, err)
		}
		if next != "" {
			return s.finish(next, nil)
		}
	}

	n.logger.Warn("reached max pages without submitting", zap.Int("max_pages", n.opts.MaxPages))
	return s.finish(MaxPagesReached, nil)
}

// advance tries continue, review and submit in order. An empty outcome means the
// flow moved to another page.
func (n *Navigator) advance(ctx context.Context, page form.Page, s *Session, log *zap.Logger) (Outcome, error) {
	for _, criteria := range []form.Criteria{ContinueButton, ReviewButton} {
		moved, err := n.tryClick(ctx, page, criteria, s, log)
		if err != nil {
			return "", err
		}
		if moved {
			if criteria.Name == ContinueButton.Name {
				s.Continues++
			} else {
				s.Reviews++
			}
			return "", nil
		}
	}

	h, ok, err := page.Find(ctx, SubmitButton)
	if err != nil {
		return "", &SessionFatalError{Message: "probing for submit button", Cause: err}
	}
	if !ok {
		log.Info("no navigation controls found, treating flow as complete")
		return Done, nil
	}

	if !n.opts.AutoSubmit {
		log.Info("ready to submit - manual confirmation required")
		return ReadyToSubmit, nil
	}

	if err := page.Click(ctx, h); err != nil {
		log.Warn("submit button not actionable", zap.Error(&NavigationError{Control: SubmitButton.Name, Page: s.Page, Cause: err}))
		return Done, nil
	}
	if err := page.Settle(ctx); err != nil {
		log.Warn("page did not settle after submit", zap.Error(err))
	}
	log.Info("application submitted")
	return Applied, nil
}

// tryClick clicks the button when present. A button that is found but cannot be
// clicked counts as absent.
func (n *Navigator) tryClick(ctx context.Context, page form.Page, criteria form.Criteria, s *Session, log *zap.Logger) (bool, error) {
	h, ok, err := page.Find(ctx, criteria)
	if err != nil {
		return false, &SessionFatalError{Message: "probing for " + criteria.Name + " button", Cause: err}
	}
	if !ok {
		return false, nil
	}
	if err := page.Click(ctx, h); err != nil {
		log.Warn("navigation control not actionable",
			zap.Error(&NavigationError{Control: criteria.Name, Page: s.Page, Cause: err}))
		return false, nil
	}
	if err := page.Settle(ctx); err != nil {
		log.Warn("page did not settle", zap.String("after", criteria.Name), zap.Error(err))
	}
	return true, nil
}
