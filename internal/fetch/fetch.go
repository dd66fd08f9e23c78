// Package fetch retrieves company careers pages and reduces them to text for keyword
// monitoring.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Defaults for Options.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; JobAgent/1.0)"
	DefaultMaxBodyBytes = 5 << 20
)

// Result is one fetched careers page.
type Result struct {
	// URL is where the page was finally served from, after redirects.
	URL        string
	HTML       string
	Text       string
	StatusCode int
	Rendered   bool // HTML came from a browser, not a plain GET
}

// Error reports a failed page fetch. StatusCode is set when the server answered.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Client fetches pages over plain HTTP. It is safe for concurrent use.
type Client struct {
	http *http.Client
	opts Options
}

// NewClient creates a Client; zero option fields take their defaults.
func NewClient(opts *Options) *Client {
	o := *DefaultOptions()
	if opts != nil {
		if opts.Timeout > 0 {
			o.Timeout = opts.Timeout
		}
		if opts.UserAgent != "" {
			o.UserAgent = opts.UserAgent
		}
		if opts.MaxBodyBytes > 0 {
			o.MaxBodyBytes = opts.MaxBodyBytes
		}
	}
	return &Client{http: &http.Client{Timeout: o.Timeout}, opts: o}
}

// Get downloads pageURL. Bodies beyond MaxBodyBytes are cut off. A non-2xx answer is
// an *Error alongside the partial result.
func (c *Client) Get(ctx context.Context, pageURL string) (*Result, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &Error{URL: pageURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return nil, &Error{URL: pageURL, StatusCode: resp.StatusCode, Message: "failed to read body", Cause: err}
	}

	result := &Result{URL: resp.Request.URL.String(), HTML: string(body), StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{URL: pageURL, StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// noise is stripped before keyword matching; navigation menus often list department
// names that would otherwise match.
var noise = strings.Join([]string{
	"script", "style", "noscript", "template", "svg",
	"nav", "footer", "[role='navigation']",
	".cookie-banner", "#onetrust-banner-sdk", ".popup",
	".ad", ".advertisement", ".ads",
}, ", ")

// ListingScopes narrow text extraction to the openings area of common careers page
// layouts, most specific first.
var ListingScopes = []string{
	"[data-testid='job-list']",
	".job-listings",
	".openings",
	"#careers",
	".careers",
	"main",
}

// VisibleText parses html and returns its text, one trimmed line per text block. The
// first scope selector that matches bounds the extraction; with no match the whole
// body is used.
func VisibleText(html string, scopes []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noise).Remove()

	root := doc.Find("body")
	for _, s := range scopes {
		if sel := doc.Find(s); sel.Length() > 0 {
			root = sel.First()
			break
		}
	}
	return collapseLines(root.Text()), nil
}

func collapseLines(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
