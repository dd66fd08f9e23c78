package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-agent/internal/types"
)

// CareersPage is a company careers URL to watch.
type CareersPage struct {
	Company string
	URL     string
}

// PagesFromMap turns the companies_to_monitor setting into a stable list.
func PagesFromMap(m map[string]string) []CareersPage {
	pages := make([]CareersPage, 0, len(m))
	for company, u := range m {
		pages = append(pages, CareersPage{Company: company, URL: u})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Company < pages[j].Company })
	return pages
}

// MatchKeywords returns the keywords that occur in text, case-insensitively, in the
// order given.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			found = append(found, k)
		}
	}
	return found
}

// CareersMonitor checks careers pages for search keywords.
type CareersMonitor struct {
	client   *Client
	renderer Renderer
	limiter  *rate.Limiter
	logger   *zap.Logger
	now      func() time.Time
}

// NewCareersMonitor creates a monitor. renderer is used when the plain fetch returns
// too little text; nil disables the fallback.
func NewCareersMonitor(client *Client, renderer Renderer, limiter *rate.Limiter, logger *zap.Logger) *CareersMonitor {
	if client == nil {
		client = NewClient(nil)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareersMonitor{client: client, renderer: renderer, limiter: limiter, logger: logger, now: time.Now}
}

// Text fetches a page and extracts its text, rendering it in a browser when the plain
// response looks like an empty single-page app.
func (m *CareersMonitor) Text(ctx context.Context, pageURL string) (*Result, error) {
	result, err := m.client.Get(ctx, pageURL)
	if err == nil {
		result.Text, err = VisibleText(result.HTML, ListingScopes)
	}
	if m.renderer == nil || (err == nil && !ShouldUseBrowser(result.Text)) {
		return result, err
	}

	m.logger.Debug("falling back to browser rendering", zap.String("url", pageURL), zap.NamedError("fetch_error", err))
	html, rerr := m.renderer(ctx, pageURL)
	if rerr != nil {
		if err != nil {
			return result, err
		}
		return result, nil
	}
	text, terr := VisibleText(html, ListingScopes)
	if terr != nil {
		return nil, terr
	}
	return &Result{URL: pageURL, HTML: html, Text: text, StatusCode: 200, Rendered: true}, nil
}

// Check returns a Manual Review job when any keyword appears on the page, or nil.
func (m *CareersMonitor) Check(ctx context.Context, page CareersPage, keywords []string) (*types.Job, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	m.logger.Info("checking careers page", zap.String("company", page.Company), zap.String("url", page.URL))

	result, err := m.Text(ctx, page.URL)
	if err != nil {
		return nil, fmt.Errorf("checking %s careers page: %w", page.Company, err)
	}

	found := MatchKeywords(result.Text, keywords)
	if len(found) == 0 {
		return nil, nil
	}
	m.logger.Info("potential match found", zap.String("company", page.Company), zap.Strings("keywords", found))
	return &types.Job{
		Title:    "Potential match at " + page.Company,
		Company:  page.Company,
		Location: "See website",
		URL:      page.URL,
		Source:   types.SourceCompanyWebsite,
		Keyword:  strings.Join(found, ", "),
		FoundAt:  m.now(),
		Status:   types.StatusManualReview,
	}, nil
}

// CheckAll checks every page and returns the matches. Failures are logged and skipped.
func (m *CareersMonitor) CheckAll(ctx context.Context, pages []CareersPage, keywords []string) []types.Job {
	var jobs []types.Job
	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		job, err := m.Check(ctx, p, keywords)
		if err != nil {
			m.logger.Error("careers page check failed", zap.String("company", p.Company), zap.Error(err))
			continue
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs
}
