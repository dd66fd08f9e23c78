// Package tracker persists discovered jobs, networking contacts and run history.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-agent/internal/types"
)

// ErrNotFound is returned when a lookup has no row.
var ErrNotFound = errors.New("not found")

// Store is the tracker's storage backend.
type Store interface {
	// UpsertJobs stores jobs keyed by URL; a later record replaces an earlier one.
	UpsertJobs(ctx context.Context, jobs []types.Job) error
	// UpsertContacts stores contacts keyed by profile URL, last write wins.
	UpsertContacts(ctx context.Context, contacts []types.Contact) error
	// Jobs lists every tracked job, least recently written first.
	Jobs(ctx context.Context) ([]types.Job, error)
	// Contacts lists every contact, least recently written first.
	Contacts(ctx context.Context) ([]types.Contact, error)
	// KnownURLs returns the URL of every tracked job.
	KnownURLs(ctx context.Context) (map[string]bool, error)
	// SaveRun records a finished run.
	SaveRun(ctx context.Context, state types.RunState) error
	// LastRun returns the most recent run, or ErrNotFound.
	LastRun(ctx context.Context) (*types.RunState, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// DatabaseURL selects PostgreSQL when set.
	DatabaseURL string
	// SQLitePath is used when DatabaseURL is empty.
	SQLitePath string
}

// Open connects to PostgreSQL when a database URL is configured and otherwise opens
// the local SQLite file. Both backends create their schema on open.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.DatabaseURL != "" {
		return ConnectPostgres(ctx, opts.DatabaseURL)
	}
	if opts.SQLitePath == "" {
		return nil, fmt.Errorf("tracker: neither database_url nor sqlite_path is configured")
	}
	return OpenSQLite(ctx, opts.SQLitePath)
}

// NewRunID returns a fresh identifier for a monitor run.
func NewRunID() string {
	return uuid.New().String()
}

// timestamps are stored as UTC RFC 3339 text in SQLite so ordering is lexical
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
