package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/types"
)

func careersServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func longPage(content string) string {
	return "<html><body><main>" + content + "<p>" + strings.Repeat("We are hiring across teams. ", 30) + "</p></main></body></html>"
}

func TestMatchKeywords(t *testing.T) {
	text := "Open roles: Trade Support Analyst, Settlements Associate"
	assert.Equal(t, []string{"trade support", "Settlements"}, MatchKeywords(text, []string{"trade support", "quant", "Settlements", " "}))
	assert.Empty(t, MatchKeywords(text, nil))
}

func TestPagesFromMap(t *testing.T) {
	pages := PagesFromMap(map[string]string{"Globex": "https://g/careers", "Acme": "https://a/careers"})
	assert.Equal(t, []CareersPage{{"Acme", "https://a/careers"}, {"Globex", "https://g/careers"}}, pages)
}

func TestCareersMonitor_Check(t *testing.T) {
	server := careersServer(t, longPage("<h2>Trade Operations Analyst</h2>"))
	m := NewCareersMonitor(nil, nil, nil, nil)

	job, err := m.Check(context.Background(), CareersPage{Company: "Acme", URL: server.URL}, []string{"operations analyst", "quant"})
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, "Potential match at Acme", job.Title)
	assert.Equal(t, types.StatusManualReview, job.Status)
	assert.Equal(t, types.SourceCompanyWebsite, job.Source)
	assert.Equal(t, "operations analyst", job.Keyword)
	assert.Equal(t, "See website", job.Location)
	assert.False(t, job.EasyApply)
}

func TestCareersMonitor_NoMatch(t *testing.T) {
	server := careersServer(t, longPage("<h2>Barista</h2>"))

	job, err := NewCareersMonitor(nil, nil, nil, nil).Check(context.Background(), CareersPage{Company: "Acme", URL: server.URL}, []string{"analyst"})
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestCareersMonitor_RendersThinPages(t *testing.T) {
	server := careersServer(t, `<html><body><div id="root"></div></body></html>`)
	var rendered []string
	renderer := func(_ context.Context, url string) (string, error) {
		rendered = append(rendered, url)
		return longPage("<li>Quant Researcher</li>"), nil
	}

	m := NewCareersMonitor(nil, renderer, nil, nil)
	res, err := m.Text(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, res.Rendered)
	assert.Equal(t, []string{server.URL}, rendered)

	job, err := m.Check(context.Background(), CareersPage{Company: "Acme", URL: server.URL}, []string{"quant"})
	require.NoError(t, err)
	require.NotNil(t, job)
}

func TestCareersMonitor_RenderFailureKeepsFetchResult(t *testing.T) {
	server := careersServer(t, `<html><body>Analyst</body></html>`)
	renderer := func(context.Context, string) (string, error) { return "", errors.New("no chrome") }

	res, err := NewCareersMonitor(nil, renderer, nil, nil).Text(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, res.Rendered)
	assert.Equal(t, "Analyst", res.Text)
}

func TestCareersMonitor_CheckAllSkipsFailures(t *testing.T) {
	good := careersServer(t, longPage("Risk Analyst"))
	pages := []CareersPage{
		{Company: "Broken", URL: "not-a-url"},
		{Company: "Good", URL: good.URL},
	}

	jobs := NewCareersMonitor(nil, nil, nil, nil).CheckAll(context.Background(), pages, []string{"risk analyst"})
	require.Len(t, jobs, 1)
	assert.Equal(t, "Good", jobs[0].Company)
}
