package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/job-agent/internal/apply"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/fetch"
	"github.com/jonathan/job-agent/internal/tracker"
	"github.com/jonathan/job-agent/internal/types"
)

type fakeAuth struct {
	ok    bool
	calls int
}

func (f *fakeAuth) LoginOrWarn(context.Context, string, string) bool {
	f.calls++
	return f.ok
}

type fakeSearcher struct {
	jobs  []types.Job
	known map[string]bool
	after func()
}

func (f *fakeSearcher) SearchAll(_ context.Context, _, _ []string, known map[string]bool) []types.Job {
	f.known = known
	var out []types.Job
	for _, j := range f.jobs {
		if !known[j.URL] {
			out = append(out, j)
		}
	}
	if f.after != nil {
		f.after()
	}
	return out
}

type fakeApplier struct {
	outcomes map[string]apply.Outcome
	applied  []string
}

func (f *fakeApplier) ApplyTo(_ context.Context, jobURL string) *apply.Session {
	f.applied = append(f.applied, jobURL)
	o, ok := f.outcomes[jobURL]
	if !ok {
		o = apply.ReadyToSubmit
	}
	return &apply.Session{JobURL: jobURL, Outcome: o, Page: 2}
}

type fakeFinder struct{ jobs []string }

func (f *fakeFinder) Find(_ context.Context, job types.Job) []types.Contact {
	f.jobs = append(f.jobs, job.URL)
	return []types.Contact{
		{Name: "Grace Hopper", Company: job.Company, ProfileURL: "https://in/grace-" + job.Company, JobURL: job.URL, Score: 60},
		{Name: "Ada Lovelace", Company: job.Company, ProfileURL: "https://in/ada-" + job.Company, JobURL: job.URL, Score: 40},
	}
}

type fakeCareers struct{ pages []fetch.CareersPage }

func (f *fakeCareers) CheckAll(_ context.Context, pages []fetch.CareersPage, _ []string) []types.Job {
	f.pages = pages
	return []types.Job{{
		Title:   "Potential match at Globex",
		Company: "Globex",
		URL:     "https://globex.example.com/careers",
		Source:  types.SourceCompanyWebsite,
		Status:  types.StatusManualReview,
	}}
}

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func listing(id, company string, easy bool) types.Job {
	return types.Job{
		Title:     "Operations Analyst",
		Company:   company,
		URL:       "https://www.linkedin.com/jobs/view/" + id,
		Source:    types.SourceLinkedIn,
		EasyApply: easy,
		FoundAt:   now,
	}
}

type harness struct {
	cfg      config.Config
	auth     *fakeAuth
	searcher *fakeSearcher
	applier  *fakeApplier
	finder   *fakeFinder
	careers  *fakeCareers
	store    *tracker.SQLiteStore
	exporter tracker.Exporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := tracker.OpenSQLite(context.Background(), filepath.Join(dir, "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.AutoApply = true
	cfg.LinkedInEmail = "ada@example.com"
	cfg.LinkedInPassword = "secret"
	cfg.ApplicationDelaySeconds = 0
	cfg.CompaniesToMonitor = map[string]string{"Globex": "https://globex.example.com/careers"}

	return &harness{
		cfg:  cfg,
		auth: &fakeAuth{ok: true},
		searcher: &fakeSearcher{jobs: []types.Job{
			listing("1", "Acme", true),
			listing("2", "Initech", false),
			listing("3", "Umbrella", true),
		}},
		applier:  &fakeApplier{outcomes: map[string]apply.Outcome{"https://www.linkedin.com/jobs/view/3": apply.ManualRequired}},
		finder:   &fakeFinder{},
		careers:  &fakeCareers{},
		store:    store,
		exporter: tracker.Exporter{Dir: filepath.Join(dir, "output")},
	}
}

func (h *harness) monitor(logger *zap.Logger) *Monitor {
	m := New(h.cfg, Deps{
		Auth:     h.auth,
		Searcher: h.searcher,
		Applier:  h.applier,
		Finder:   h.finder,
		Careers:  h.careers,
		Store:    h.store,
		Exporter: h.exporter,
	}, logger)
	m.now = func() time.Time { return now }
	return m
}

func TestRun_AppliesToEasyApplyAndNetworks(t *testing.T) {
	h := newHarness(t)

	summary, err := h.monitor(nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.LoggedIn)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/1",
		"https://www.linkedin.com/jobs/view/3",
	}, h.applier.applied, "only easy apply listings")
	assert.Equal(t, []string{"https://www.linkedin.com/jobs/view/1"}, h.finder.jobs, "networking only after success")

	require.Len(t, summary.Applied, 1)
	assert.Equal(t, string(apply.ReadyToSubmit), summary.Applied[0].Status)
	assert.Equal(t, 2, summary.Applied[0].Contacts)
	assert.Len(t, summary.Contacts, 2)

	require.Len(t, summary.Found, 4)
	assert.Equal(t, types.StatusFound, summary.Found[1].Status)
	assert.Equal(t, string(apply.ManualRequired), summary.Found[2].Status)
	assert.Equal(t, types.SourceCompanyWebsite, summary.Found[3].Source)
	for _, j := range summary.Found {
		assert.Equal(t, summary.RunID, j.RunID)
	}
	assert.InDelta(t, 25.0, summary.SuccessRate(), 0.001)
}

func TestRun_Persists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	summary, err := h.monitor(nil).Run(ctx)
	require.NoError(t, err)

	jobs, err := h.store.Jobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 4)

	contacts, err := h.store.Contacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	last, err := h.store.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, last.RunID)
	assert.Equal(t, 1, last.JobsApplied)

	assert.Equal(t, h.exporter.RunFile(now), summary.ExportPath)
	for _, name := range []string{tracker.MasterFile, tracker.ContactsFile, tracker.StateFile} {
		_, err := os.Stat(filepath.Join(h.exporter.Dir, name))
		assert.NoError(t, err, name)
	}

	st, err := h.exporter.LoadState()
	require.NoError(t, err)
	assert.Equal(t, 4, st.JobsFound)
}

func TestRun_SkipsTrackedListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.monitor(nil).Run(ctx)
	require.NoError(t, err)
	h.applier.applied = nil

	summary, err := h.monitor(nil).Run(ctx)
	require.NoError(t, err)

	assert.True(t, h.searcher.known["https://www.linkedin.com/jobs/view/1"])
	assert.Empty(t, h.applier.applied, "tracked listings are never re-applied")
	require.Len(t, summary.Found, 1)
	assert.Equal(t, "Globex", summary.Found[0].Company)
}

func TestRun_MonitorOnlyWithoutCredentials(t *testing.T) {
	h := newHarness(t)
	h.cfg.LinkedInPassword = ""
	core, logs := observer.New(zap.WarnLevel)

	summary, err := h.monitor(zap.New(core)).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.LoggedIn)
	assert.Zero(t, h.auth.calls)
	assert.Empty(t, h.applier.applied)
	assert.Len(t, summary.Found, 4)
	assert.Equal(t, 1, logs.FilterMessage("no linkedin credentials, running in monitor-only mode").Len())
	assert.Equal(t, 1, logs.FilterMessage("auto-apply enabled but not logged in, skipping applications").Len())
}

func TestRun_LoginFailureIsMonitorOnly(t *testing.T) {
	h := newHarness(t)
	h.auth.ok = false

	summary, err := h.monitor(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.auth.calls)
	assert.False(t, summary.LoggedIn)
	assert.Empty(t, h.applier.applied)
}

func TestRun_NoNetworkingWhenDisabled(t *testing.T) {
	h := newHarness(t)
	h.cfg.FindNetworkingContacts = false

	summary, err := h.monitor(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.finder.jobs)
	assert.Empty(t, summary.Contacts)
	assert.Len(t, summary.Applied, 1)
}

func TestRun_NoCareersWithoutCompanies(t *testing.T) {
	h := newHarness(t)
	h.cfg.CompaniesToMonitor = nil

	summary, err := h.monitor(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, h.careers.pages)
	assert.Len(t, summary.Found, 3)
}

func TestRun_CareersPagesFromConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.monitor(nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fetch.CareersPage{{Company: "Globex", URL: "https://globex.example.com/careers"}}, h.careers.pages)
}

func TestRun_CancelledStillSaves(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.searcher.after = cancel

	summary, err := h.monitor(nil).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.applier.applied)
	assert.Nil(t, h.careers.pages, "careers check skipped after cancellation")
	assert.Len(t, summary.Found, 3)

	jobs, err := h.store.Jobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, len(summary.Found))
}

func TestApplyOne(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	job := types.Job{Title: "Analyst", Company: "Acme", URL: "https://boards.greenhouse.io/acme/jobs/1", Source: types.SourceCompanyWebsite}
	session, contacts, err := h.monitor(nil).ApplyOne(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, apply.ReadyToSubmit, session.Outcome)
	assert.Len(t, contacts, 2)

	jobs, err := h.store.Jobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(apply.ReadyToSubmit), jobs[0].Status)
	assert.Equal(t, 2, jobs[0].Contacts)
	assert.NotEmpty(t, jobs[0].RunID)
}

func TestOnApply(t *testing.T) {
	h := newHarness(t)
	m := h.monitor(nil)
	var seen []apply.Outcome
	m.OnApply(func(_ types.Job, s *apply.Session) { seen = append(seen, s.Outcome) })

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []apply.Outcome{apply.ReadyToSubmit, apply.ManualRequired}, seen)
}

func TestPacer(t *testing.T) {
	assert.True(t, Pacer(0).Allow())
	assert.True(t, Pacer(0).Allow())

	p := Pacer(time.Hour)
	assert.True(t, p.Allow())
	assert.False(t, p.Allow())
}
