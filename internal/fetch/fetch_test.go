package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/jobs" {
			http.Redirect(w, r, "/careers", http.StatusFound)
			return
		}
		assert.Equal(t, DefaultUserAgent, r.UserAgent())
		_, _ = w.Write([]byte("<html><body><h1>Careers</h1></body></html>"))
	}))
	defer server.Close()

	result, err := NewClient(nil).Get(context.Background(), server.URL+"/jobs")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/careers", result.URL, "final URL after redirects")
	assert.Contains(t, result.HTML, "<h1>Careers</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.Rendered)
}

func TestClientGet_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-valid-url", "ftp://example.com/careers", "https://"} {
		_, err := NewClient(nil).Get(context.Background(), u)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, u)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestClientGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := NewClient(nil).Get(context.Background(), server.URL)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestClientGet_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer server.Close()

	result, err := NewClient(&Options{MaxBodyBytes: 10}).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, result.HTML, 10)
}

func TestVisibleText_NoiseRemoved(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Trading Operations Risk</nav>
			<main>
				<h1>Open Roles</h1>
				<p>Settlements    Analyst</p>
			</main>
			<script>var trading = 1;</script>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := VisibleText(html, nil)
	require.NoError(t, err)
	assert.Equal(t, "Open Roles\nSettlements Analyst", text)
}

func TestVisibleText_Scopes(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="hero">Join us</div>
			<div class="job-listings">
				<h2>Openings</h2>
				<p>Middle Office Associate</p>
			</div>
		</body>
	</html>`

	text, err := VisibleText(html, ListingScopes)
	require.NoError(t, err)
	assert.Equal(t, "Openings\nMiddle Office Associate", text)

	text, err = VisibleText(`<html><body><div>Some content here.</div></body></html>`, ListingScopes)
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text, "falls back to the body")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("  Loading...  "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
