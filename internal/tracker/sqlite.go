package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jonathan/job-agent/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	easy_apply  INTEGER NOT NULL DEFAULT 0,
	keyword     TEXT NOT NULL DEFAULT '',
	found_at    TEXT NOT NULL,
	status      TEXT NOT NULL,
	contacts    INTEGER NOT NULL DEFAULT 0,
	run_id      TEXT NOT NULL DEFAULT '',
	seq         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS contacts (
	profile_url        TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	title              TEXT NOT NULL,
	company            TEXT NOT NULL,
	location           TEXT NOT NULL DEFAULT '',
	mutual_connections INTEGER NOT NULL DEFAULT 0,
	is_connected       INTEGER NOT NULL DEFAULT 0,
	found_at           TEXT NOT NULL,
	score              INTEGER NOT NULL DEFAULT 0,
	job_applied        TEXT NOT NULL DEFAULT '',
	job_url            TEXT NOT NULL DEFAULT '',
	message            TEXT NOT NULL DEFAULT '',
	seq                INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	run_id              TEXT PRIMARY KEY,
	last_run            TEXT NOT NULL,
	jobs_found          INTEGER NOT NULL,
	jobs_applied        INTEGER NOT NULL,
	networking_contacts INTEGER NOT NULL
);`

// SQLiteStore is the default local tracker.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create tracker directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite tracker: %w", err)
	}
	// one writer; the run is sequential anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tracker schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertJobs implements Store.
func (s *SQLiteStore) UpsertJobs(ctx context.Context, jobs []types.Job) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, j := range jobs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO jobs (url, title, company, location, source, easy_apply, keyword, found_at, status, contacts, run_id, seq)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM jobs))
				 ON CONFLICT (url) DO UPDATE SET
					title = excluded.title, company = excluded.company, location = excluded.location,
					source = excluded.source, easy_apply = excluded.easy_apply, keyword = excluded.keyword,
					found_at = excluded.found_at, status = excluded.status, contacts = excluded.contacts,
					run_id = excluded.run_id, seq = excluded.seq`,
				j.URL, j.Title, j.Company, j.Location, j.Source, j.EasyApply, j.Keyword,
				formatTime(j.FoundAt), j.Status, j.Contacts, j.RunID,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert job %s: %w", j.URL, err)
			}
		}
		return nil
	})
}

// UpsertContacts implements Store.
func (s *SQLiteStore) UpsertContacts(ctx context.Context, contacts []types.Contact) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range contacts {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO contacts (profile_url, name, title, company, location, mutual_connections, is_connected, found_at, score, job_applied, job_url, message, seq)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM contacts))
				 ON CONFLICT (profile_url) DO UPDATE SET
					name = excluded.name, title = excluded.title, company = excluded.company,
					location = excluded.location, mutual_connections = excluded.mutual_connections,
					is_connected = excluded.is_connected, found_at = excluded.found_at, score = excluded.score,
					job_applied = excluded.job_applied, job_url = excluded.job_url, message = excluded.message,
					seq = excluded.seq`,
				c.ProfileURL, c.Name, c.Title, c.Company, c.Location, c.MutualConnections, c.IsConnected,
				formatTime(c.FoundAt), c.Score, c.JobApplied, c.JobURL, c.Message,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert contact %s: %w", c.ProfileURL, err)
			}
		}
		return nil
	})
}

// Jobs implements Store.
func (s *SQLiteStore) Jobs(ctx context.Context) ([]types.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, company, location, source, easy_apply, keyword, found_at, status, contacts, run_id
		 FROM jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []types.Job
	for rows.Next() {
		var (
			j     types.Job
			found string
		)
		if err := rows.Scan(&j.URL, &j.Title, &j.Company, &j.Location, &j.Source, &j.EasyApply,
			&j.Keyword, &found, &j.Status, &j.Contacts, &j.RunID); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if j.FoundAt, err = parseTime(found); err != nil {
			return nil, fmt.Errorf("job %s has bad found_at: %w", j.URL, err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Contacts implements Store.
func (s *SQLiteStore) Contacts(ctx context.Context) ([]types.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_url, name, title, company, location, mutual_connections, is_connected, found_at, score, job_applied, job_url, message
		 FROM contacts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []types.Contact
	for rows.Next() {
		var (
			c     types.Contact
			found string
		)
		if err := rows.Scan(&c.ProfileURL, &c.Name, &c.Title, &c.Company, &c.Location, &c.MutualConnections,
			&c.IsConnected, &found, &c.Score, &c.JobApplied, &c.JobURL, &c.Message); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if c.FoundAt, err = parseTime(found); err != nil {
			return nil, fmt.Errorf("contact %s has bad found_at: %w", c.ProfileURL, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// KnownURLs implements Store.
func (s *SQLiteStore) KnownURLs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job urls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	known := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan job url: %w", err)
		}
		known[u] = true
	}
	return known, rows.Err()
}

// SaveRun implements Store.
func (s *SQLiteStore) SaveRun(ctx context.Context, st types.RunState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, last_run, jobs_found, jobs_applied, networking_contacts)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO UPDATE SET last_run = excluded.last_run, jobs_found = excluded.jobs_found,
			jobs_applied = excluded.jobs_applied, networking_contacts = excluded.networking_contacts`,
		st.RunID, formatTime(st.LastRun), st.JobsFound, st.JobsApplied, st.NetworkingContacts,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", st.RunID, err)
	}
	return nil
}

// LastRun implements Store.
func (s *SQLiteStore) LastRun(ctx context.Context) (*types.RunState, error) {
	var (
		st      types.RunState
		lastRun string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, last_run, jobs_found, jobs_applied, networking_contacts
		 FROM runs ORDER BY last_run DESC LIMIT 1`,
	).Scan(&st.RunID, &lastRun, &st.JobsFound, &st.JobsApplied, &st.NetworkingContacts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	if st.LastRun, err = parseTime(lastRun); err != nil {
		return nil, fmt.Errorf("run %s has bad last_run: %w", st.RunID, err)
	}
	return &st, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
