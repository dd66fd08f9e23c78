package tracker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-agent/internal/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tracked_jobs (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	easy_apply  BOOLEAN NOT NULL DEFAULT FALSE,
	keyword     TEXT NOT NULL DEFAULT '',
	found_at    TIMESTAMPTZ NOT NULL,
	status      TEXT NOT NULL,
	contacts    INTEGER NOT NULL DEFAULT 0,
	run_id      TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE TABLE IF NOT EXISTS networking_contacts (
	profile_url        TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	title              TEXT NOT NULL,
	company            TEXT NOT NULL,
	location           TEXT NOT NULL DEFAULT '',
	mutual_connections INTEGER NOT NULL DEFAULT 0,
	is_connected       BOOLEAN NOT NULL DEFAULT FALSE,
	found_at           TIMESTAMPTZ NOT NULL,
	score              INTEGER NOT NULL DEFAULT 0,
	job_applied        TEXT NOT NULL DEFAULT '',
	job_url            TEXT NOT NULL DEFAULT '',
	message            TEXT NOT NULL DEFAULT '',
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE TABLE IF NOT EXISTS monitor_runs (
	run_id              TEXT PRIMARY KEY,
	last_run            TIMESTAMPTZ NOT NULL,
	jobs_found          INTEGER NOT NULL,
	jobs_applied        INTEGER NOT NULL,
	networking_contacts INTEGER NOT NULL
);`

// PostgresStore keeps the tracker in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and creates the tracker tables.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tracker schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// UpsertJobs implements Store.
func (s *PostgresStore) UpsertJobs(ctx context.Context, jobs []types.Job) error {
	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(
			`INSERT INTO tracked_jobs (url, title, company, location, source, easy_apply, keyword, found_at, status, contacts, run_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (url) DO UPDATE SET
				title = $2, company = $3, location = $4, source = $5, easy_apply = $6, keyword = $7,
				found_at = $8, status = $9, contacts = $10, run_id = $11, updated_at = clock_timestamp()`,
			j.URL, j.Title, j.Company, j.Location, j.Source, j.EasyApply, j.Keyword,
			j.FoundAt, j.Status, j.Contacts, j.RunID,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert jobs: %w", err)
	}
	return nil
}

// UpsertContacts implements Store.
func (s *PostgresStore) UpsertContacts(ctx context.Context, contacts []types.Contact) error {
	batch := &pgx.Batch{}
	for _, c := range contacts {
		batch.Queue(
			`INSERT INTO networking_contacts (profile_url, name, title, company, location, mutual_connections, is_connected, found_at, score, job_applied, job_url, message)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (profile_url) DO UPDATE SET
				name = $2, title = $3, company = $4, location = $5, mutual_connections = $6,
				is_connected = $7, found_at = $8, score = $9, job_applied = $10, job_url = $11,
				message = $12, updated_at = clock_timestamp()`,
			c.ProfileURL, c.Name, c.Title, c.Company, c.Location, c.MutualConnections, c.IsConnected,
			c.FoundAt, c.Score, c.JobApplied, c.JobURL, c.Message,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert contacts: %w", err)
	}
	return nil
}

// Jobs implements Store.
func (s *PostgresStore) Jobs(ctx context.Context) ([]types.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT url, title, company, location, source, easy_apply, keyword, found_at, status, contacts, run_id
		 FROM tracked_jobs ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		var j types.Job
		if err := rows.Scan(&j.URL, &j.Title, &j.Company, &j.Location, &j.Source, &j.EasyApply,
			&j.Keyword, &j.FoundAt, &j.Status, &j.Contacts, &j.RunID); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Contacts implements Store.
func (s *PostgresStore) Contacts(ctx context.Context) ([]types.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT profile_url, name, title, company, location, mutual_connections, is_connected, found_at, score, job_applied, job_url, message
		 FROM networking_contacts ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []types.Contact
	for rows.Next() {
		var c types.Contact
		if err := rows.Scan(&c.ProfileURL, &c.Name, &c.Title, &c.Company, &c.Location, &c.MutualConnections,
			&c.IsConnected, &c.FoundAt, &c.Score, &c.JobApplied, &c.JobURL, &c.Message); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// KnownURLs implements Store.
func (s *PostgresStore) KnownURLs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT url FROM tracked_jobs`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job urls: %w", err)
	}
	defer rows.Close()

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
func (s *PostgresStore) SaveRun(ctx context.Context, st types.RunState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitor_runs (run_id, last_run, jobs_found, jobs_applied, networking_contacts)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id) DO UPDATE SET last_run = $2, jobs_found = $3, jobs_applied = $4, networking_contacts = $5`,
		st.RunID, st.LastRun, st.JobsFound, st.JobsApplied, st.NetworkingContacts,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", st.RunID, err)
	}
	return nil
}

// LastRun implements Store.
func (s *PostgresStore) LastRun(ctx context.Context) (*types.RunState, error) {
	var st types.RunState
	err := s.pool.QueryRow(ctx,
		`SELECT run_id, last_run, jobs_found, jobs_applied, networking_contacts
		 FROM monitor_runs ORDER BY last_run DESC LIMIT 1`,
	).Scan(&st.RunID, &st.LastRun, &st.JobsFound, &st.JobsApplied, &st.NetworkingContacts)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return &st, nil
}
