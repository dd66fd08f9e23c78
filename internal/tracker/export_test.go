package tracker

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExporter_ExportRun(t *testing.T) {
	e := Exporter{Dir: filepath.Join(t.TempDir(), "out")}

	path, err := e.ExportRun(nil, foundAt)
	require.NoError(t, err)
	assert.Empty(t, path)

	job := sampleJob("https://a", types.StatusFound)
	job.Title = `Analyst, "Trade" Support`
	path, err = e.ExportRun([]types.Job{job}, foundAt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.Dir, "jobs_found_20250314_093000.csv"), path)

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, jobHeader, records[0])
	assert.Equal(t, []string{
		`Analyst, "Trade" Support`, "Acme", "New York, NY", "https://a", "LinkedIn", "true",
		"operations analyst", "2025-03-14 09:30:00", "Found", "0", "run-1",
	}, records[1])
}

func TestExporter_ExportAll(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()
	e := Exporter{Dir: t.TempDir()}

	require.NoError(t, store.UpsertJobs(ctx, []types.Job{
		sampleJob("https://a", types.StatusFound),
		sampleJob("https://b", types.StatusManualReview),
	}))
	require.NoError(t, e.ExportAll(ctx, store))

	records := readCSV(t, filepath.Join(e.Dir, MasterFile))
	require.Len(t, records, 3)
	assert.Equal(t, "https://b", records[2][3])

	_, err := os.Stat(filepath.Join(e.Dir, ContactsFile))
	assert.True(t, os.IsNotExist(err), "no contacts file without contacts")

	require.NoError(t, store.UpsertContacts(ctx, []types.Contact{{
		Name: "Ada Lovelace", Title: "Director", Company: "Acme", ProfileURL: "https://in/ada",
		FoundAt: foundAt, Score: 40, Message: "Hi Ada",
	}}))
	require.NoError(t, e.ExportAll(ctx, store))

	records = readCSV(t, filepath.Join(e.Dir, ContactsFile))
	require.Len(t, records, 2)
	assert.Equal(t, contactHeader, records[0])
	assert.Equal(t, "Ada Lovelace", records[1][0])
	assert.Equal(t, "40", records[1][8])
	assert.Equal(t, "Hi Ada", records[1][11])
}

func TestExporter_State(t *testing.T) {
	e := Exporter{Dir: filepath.Join(t.TempDir(), "state")}

	_, err := e.LoadState()
	assert.ErrorIs(t, err, ErrNotFound)

	st := types.RunState{RunID: "r1", LastRun: foundAt, JobsFound: 3, JobsApplied: 1, NetworkingContacts: 2}
	require.NoError(t, e.SaveState(st))

	data, err := os.ReadFile(filepath.Join(e.Dir, StateFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"jobs_applied": 1`)

	loaded, err := e.LoadState()
	require.NoError(t, err)
	assert.Equal(t, st.RunID, loaded.RunID)
	assert.True(t, loaded.LastRun.Equal(foundAt))
	assert.Equal(t, 2, loaded.NetworkingContacts)
}
