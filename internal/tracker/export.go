package tracker

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/job-agent/internal/types"
)

// Output file names inside the output directory
const (
	MasterFile   = "job_tracker_master.csv"
	ContactsFile = "networking_targets.csv"
	StateFile    = "job_monitor_state.json"
	runFileFmt   = "jobs_found_%s.csv"
	runStampFmt  = "20060102_150405"
)

var jobHeader = []string{
	"title", "company", "location", "url", "source", "easy_apply",
	"keyword", "found_date", "status", "networking_contacts", "run_id",
}

var contactHeader = []string{
	"name", "title", "company", "location", "profile_url", "mutual_connections",
	"is_connected", "found_date", "networking_score", "job_applied", "job_url", "connection_message",
}

// Exporter writes the tracker's CSV files and run state into Dir.
type Exporter struct {
	Dir string
}

// RunFile is the path of the per-run CSV for a run finished at t.
func (e Exporter) RunFile(t time.Time) string {
	return filepath.Join(e.Dir, fmt.Sprintf(runFileFmt, t.Format(runStampFmt)))
}

// ExportRun writes the jobs found by one run to a timestamped CSV and returns its path.
// Nothing is written when jobs is empty.
func (e Exporter) ExportRun(jobs []types.Job, finished time.Time) (string, error) {
	if len(jobs) == 0 {
		return "", nil
	}
	path := e.RunFile(finished)
	if err := WriteJobsCSV(path, jobs); err != nil {
		return "", err
	}
	return path, nil
}

// ExportAll rewrites the master tracker and networking target CSVs from the store.
func (e Exporter) ExportAll(ctx context.Context, store Store) error {
	jobs, err := store.Jobs(ctx)
	if err != nil {
		return err
	}
	if err := WriteJobsCSV(filepath.Join(e.Dir, MasterFile), jobs); err != nil {
		return err
	}
	contacts, err := store.Contacts(ctx)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return nil
	}
	return WriteContactsCSV(filepath.Join(e.Dir, ContactsFile), contacts)
}

// SaveState writes the run state JSON.
func (e Exporter) SaveState(st types.RunState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, StateFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}
	return nil
}

// LoadState reads the run state JSON, returning ErrNotFound when no run has been saved.
func (e Exporter) LoadState() (*types.RunState, error) {
	data, err := os.ReadFile(filepath.Join(e.Dir, StateFile))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}
	var st types.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse run state: %w", err)
	}
	return &st, nil
}

// WriteJobsCSV writes jobs with a header row, replacing any existing file.
func WriteJobsCSV(path string, jobs []types.Job) error {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.Title, j.Company, j.Location, j.URL, j.Source, strconv.FormatBool(j.EasyApply),
			j.Keyword, j.FoundAt.Format(types.TimeLayout), j.Status, strconv.Itoa(j.Contacts), j.RunID,
		})
	}
	return writeCSV(path, jobHeader, rows)
}

// WriteContactsCSV writes contacts with a header row, replacing any existing file.
func WriteContactsCSV(path string, contacts []types.Contact) error {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			c.Name, c.Title, c.Company, c.Location, c.ProfileURL, strconv.Itoa(c.MutualConnections),
			strconv.FormatBool(c.IsConnected), c.FoundAt.Format(types.TimeLayout), strconv.Itoa(c.Score),
			c.JobApplied, c.JobURL, c.Message,
		})
	}
	return writeCSV(path, contactHeader, rows)
}

// writeCSV goes through a temp file so a failed write never truncates the old export.
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
