package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/tracker"
	"github.com/jonathan/job-agent/internal/types"
)

func TestWriteStatus(t *testing.T) {
	ctx := context.Background()
	store, err := tracker.OpenSQLite(ctx, filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var buf bytes.Buffer
	require.NoError(t, writeStatus(ctx, &buf, store))
	assert.Contains(t, buf.String(), "Tracked jobs: 0")
	assert.Contains(t, buf.String(), "Last run: never")

	found := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.UpsertJobs(ctx, []types.Job{
		{Title: "Analyst", Company: "Acme", URL: "https://www.linkedin.com/jobs/view/1", Status: types.StatusFound, FoundAt: found},
		{Title: "Analyst", Company: "Initech", URL: "https://www.linkedin.com/jobs/view/2", Status: types.StatusFound, FoundAt: found},
		{Title: "Potential match at Globex", Company: "Globex", URL: "https://globex.example.com/careers", Status: types.StatusManualReview, FoundAt: found},
	}))
	require.NoError(t, store.SaveRun(ctx, types.RunState{RunID: "r1", LastRun: found, JobsFound: 3, JobsApplied: 1, NetworkingContacts: 2}))

	buf.Reset()
	require.NoError(t, writeStatus(ctx, &buf, store))
	out := buf.String()
	assert.Contains(t, out, "Tracked jobs: 3")
	assert.Contains(t, out, "  Found: 2")
	assert.Contains(t, out, "  Manual Review Required: 1")
	assert.Contains(t, out, "Networking contacts: 0")
	assert.Contains(t, out, "(3 found, 1 applied, 2 contacts)")
}
