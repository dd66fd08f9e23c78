// Package monitor runs one pass of the job agent: search, apply, network, check
// careers pages, then persist and summarize.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-agent/internal/apply"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/fetch"
	"github.com/jonathan/job-agent/internal/tracker"
	"github.com/jonathan/job-agent/internal/types"
)

// Authenticator logs the browser session in, reporting whether it succeeded.
type Authenticator interface {
	LoginOrWarn(ctx context.Context, email, password string) bool
}

// Searcher finds new listings.
type Searcher interface {
	SearchAll(ctx context.Context, keywords, locations []string, known map[string]bool) []types.Job
}

// Applier submits one application.
type Applier interface {
	ApplyTo(ctx context.Context, jobURL string) *apply.Session
}

// ContactFinder finds people to network with after an application.
type ContactFinder interface {
	Find(ctx context.Context, job types.Job) []types.Contact
}

// CareersChecker looks for keywords on company careers pages.
type CareersChecker interface {
	CheckAll(ctx context.Context, pages []fetch.CareersPage, keywords []string) []types.Job
}

// Deps are the collaborators of a Monitor. Auth, Applier, Finder and Careers may be
// nil, disabling the corresponding step.
type Deps struct {
	Auth     Authenticator
	Searcher Searcher
	Applier  Applier
	Finder   ContactFinder
	Careers  CareersChecker
	Store    tracker.Store
	Exporter tracker.Exporter
}

// Monitor orchestrates a run.
type Monitor struct {
	cfg     config.Config
	deps    Deps
	pacer   *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
	onApply func(types.Job, *apply.Session)
}

// New creates a Monitor. Applications are paced by cfg.ApplicationDelay.
func New(cfg config.Config, deps Deps, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		cfg:    cfg,
		deps:   deps,
		pacer:  Pacer(cfg.ApplicationDelay()),
		logger: logger,
		now:    time.Now,
	}
}

// OnApply registers a callback invoked after every application attempt.
func (m *Monitor) OnApply(fn func(types.Job, *apply.Session)) {
	m.onApply = fn
}

// Pacer returns a limiter allowing one event per delay; zero disables pacing.
func Pacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Run performs one monitor pass. The summary is returned even when persisting the
// results fails.
func (m *Monitor) Run(ctx context.Context) (*types.RunSummary, error) {
	summary := &types.RunSummary{RunID: tracker.NewRunID(), StartedAt: m.now()}
	log := m.logger.With(zap.String("run_id", summary.RunID))
	log.Info("job monitor run started",
		zap.Strings("keywords", m.cfg.Keywords),
		zap.Strings("locations", m.cfg.Locations),
		zap.Bool("auto_apply", m.cfg.AutoApply))

	summary.LoggedIn = m.login(ctx, log)

	known, err := m.deps.Store.KnownURLs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load tracked jobs: %w", err)
	}

	found := m.deps.Searcher.SearchAll(ctx, m.cfg.Keywords, m.cfg.Locations, known)
	log.Info("linkedin search finished", zap.Int("new_jobs", len(found)))
	for i := range found {
		found[i].RunID = summary.RunID
		if found[i].Status == "" {
			found[i].Status = types.StatusFound
		}
	}

	if m.cfg.AutoApply && summary.LoggedIn && m.deps.Applier != nil {
		for i := range found {
			if ctx.Err() != nil {
				break
			}
			if !found[i].EasyApply {
				continue
			}
			session, contacts := m.applyAndNetwork(ctx, &found[i], log)
			if session != nil && session.Outcome.Success() {
				summary.Applied = append(summary.Applied, found[i])
			}
			summary.Contacts = append(summary.Contacts, contacts...)
		}
	} else if m.cfg.AutoApply {
		log.Warn("auto-apply enabled but not logged in, skipping applications")
	}

	if m.deps.Careers != nil && len(m.cfg.CompaniesToMonitor) > 0 && ctx.Err() == nil {
		matches := m.deps.Careers.CheckAll(ctx, fetch.PagesFromMap(m.cfg.CompaniesToMonitor), m.cfg.Keywords)
		for i := range matches {
			matches[i].RunID = summary.RunID
		}
		found = types.DedupeJobs(append(found, matches...))
	}
	summary.Found = found

	summary.FinishedAt = m.now()
	return summary, m.save(ctx, summary, log)
}

// ApplyOne applies to a single listing outside a full run and records the result.
func (m *Monitor) ApplyOne(ctx context.Context, job types.Job) (*apply.Session, []types.Contact, error) {
	if m.deps.Applier == nil {
		return nil, nil, fmt.Errorf("no applier configured")
	}
	if job.RunID == "" {
		job.RunID = tracker.NewRunID()
	}
	if job.FoundAt.IsZero() {
		job.FoundAt = m.now()
	}

	session, contacts := m.applyAndNetwork(ctx, &job, m.logger)
	if session == nil {
		return nil, nil, ctx.Err()
	}
	ctx = context.WithoutCancel(ctx)
	if err := m.deps.Store.UpsertJobs(ctx, []types.Job{job}); err != nil {
		return session, contacts, err
	}
	if err := m.deps.Store.UpsertContacts(ctx, contacts); err != nil {
		return session, contacts, err
	}
	return session, contacts, nil
}

func (m *Monitor) login(ctx context.Context, log *zap.Logger) bool {
	if m.deps.Auth == nil {
		return false
	}
	if !m.cfg.HasCredentials() {
		log.Warn("no linkedin credentials, running in monitor-only mode")
		return false
	}
	return m.deps.Auth.LoginOrWarn(ctx, m.cfg.LinkedInEmail, m.cfg.LinkedInPassword)
}

// applyAndNetwork applies to job, updating its status, and on success looks for
// networking contacts. The session is nil when ctx ended before the attempt started.
func (m *Monitor) applyAndNetwork(ctx context.Context, job *types.Job, log *zap.Logger) (*apply.Session, []types.Contact) {
	log = log.With(zap.String("job_title", job.Title), zap.String("company", job.Company))

	if err := m.pacer.Wait(ctx); err != nil {
		log.Warn("application interrupted", zap.Error(err))
		return nil, nil
	}

	log.Info("applying to job", zap.String("url", job.URL))
	session := m.deps.Applier.ApplyTo(ctx, job.URL)
	job.Status = session.Status()
	if m.onApply != nil {
		m.onApply(*job, session)
	}

	if !session.Outcome.Success() {
		log.Warn("application unsuccessful", zap.String("status", job.Status))
		return session, nil
	}
	log.Info("application finished", zap.String("status", job.Status), zap.Int("pages", session.Page))

	if !m.cfg.FindNetworkingContacts || m.deps.Finder == nil {
		return session, nil
	}
	contacts := m.deps.Finder.Find(ctx, *job)
	job.Contacts = len(contacts)
	if len(contacts) == 0 {
		log.Warn("no networking contacts found")
	} else {
		log.Info("networking contacts found", zap.Int("count", len(contacts)))
	}
	return session, contacts
}

func (m *Monitor) save(ctx context.Context, s *types.RunSummary, log *zap.Logger) error {
	// persistence runs even after cancellation so a stopped run keeps what it found
	ctx = context.WithoutCancel(ctx)

	if err := m.deps.Store.UpsertJobs(ctx, s.Found); err != nil {
		return err
	}
	if err := m.deps.Store.UpsertContacts(ctx, s.Contacts); err != nil {
		return err
	}
	if err := m.deps.Store.SaveRun(ctx, s.State()); err != nil {
		return err
	}

	path, err := m.deps.Exporter.ExportRun(s.Found, s.FinishedAt)
	if err != nil {
		return err
	}
	s.ExportPath = path
	if path != "" {
		log.Info("saved run jobs", zap.Int("jobs", len(s.Found)), zap.String("path", path))
	}

	if err := m.deps.Exporter.ExportAll(ctx, m.deps.Store); err != nil {
		return err
	}
	if err := m.deps.Exporter.SaveState(s.State()); err != nil {
		return err
	}
	log.Info("job monitor run finished",
		zap.Int("found", len(s.Found)),
		zap.Int("applied", len(s.Applied)),
		zap.Int("contacts", len(s.Contacts)))
	return nil
}
