// Package listing searches LinkedIn for Easy Apply jobs and parses the result cards.
package listing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-agent/internal/types"
)

const (
	searchBase = "https://www.linkedin.com/jobs/search/"
	siteBase   = "https://www.linkedin.com"

	// DefaultMaxCards is how many cards are read per search.
	DefaultMaxCards = 20
	// DefaultScrollPasses loads lazily rendered cards.
	DefaultScrollPasses = 3
	DefaultScrollDelay  = 2 * time.Second
)

// Card selectors
const (
	cardSelector        = "div.job-card-container"
	titleSelector       = "a.job-card-list__title"
	companySelector     = "a.job-card-container__company-name"
	locationSelector    = "li.job-card-container__metadata-item"
	applyMethodSelector = "li.job-card-container__apply-method"
)

// Scroller loads a page, scrolls it and returns the rendered HTML.
type Scroller interface {
	Scroll(ctx context.Context, url string, passes int, delay time.Duration) (string, error)
}

// SearchURL builds the Easy Apply filtered search for keyword in location.
func SearchURL(keyword, location string) string {
	return fmt.Sprintf("%s?keywords=%s&location=%s&f_AL=true", searchBase, escape(keyword), escape(location))
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(s)), "+", "%20")
}

// ParseError describes a card that could not be read.
type ParseError struct {
	Index   int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("job card %d: %s", e.Index, e.Message)
}

// ParseCards reads up to limit job cards from a search results page. Cards missing a
// title, link or company are reported in the second return value and skipped.
func ParseCards(html, keyword string, limit int, now time.Time) ([]types.Job, []error, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	cards := doc.Find(cardSelector)
	if limit > 0 && cards.Length() > limit {
		cards = cards.Slice(0, limit)
	}

	var (
		jobs    []types.Job
		skipped []error
	)
	cards.Each(func(i int, card *goquery.Selection) {
		title := card.Find(titleSelector).First()
		href, _ := title.Attr("href")
		job := types.Job{
			Title:     clean(title.Text()),
			URL:       canonicalURL(href),
			Company:   clean(card.Find(companySelector).First().Text()),
			Location:  clean(card.Find(locationSelector).First().Text()),
			Source:    types.SourceLinkedIn,
			EasyApply: card.Find(applyMethodSelector).Length() > 0,
			Keyword:   keyword,
			FoundAt:   now,
			Status:    types.StatusFound,
		}
		switch {
		case job.Title == "":
			skipped = append(skipped, &ParseError{Index: i, Message: "missing title"})
		case job.URL == "":
			skipped = append(skipped, &ParseError{Index: i, Message: "missing link"})
		case job.Company == "":
			skipped = append(skipped, &ParseError{Index: i, Message: "missing company"})
		default:
			jobs = append(jobs, job)
		}
	})
	return jobs, skipped, nil
}

// canonicalURL makes relative links absolute and drops tracking query parameters so
// the same posting dedupes across searches.
func canonicalURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.Host == "" {
		base, _ := url.Parse(siteBase)
		u = base.ResolveReference(u)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Searcher runs keyword by location searches through a Scroller.
type Searcher struct {
	scroller     Scroller
	limiter      *rate.Limiter
	logger       *zap.Logger
	MaxCards     int
	ScrollPasses int
	ScrollDelay  time.Duration
	now          func() time.Time
}

// NewSearcher creates a Searcher. A nil limiter does not pace requests.
func NewSearcher(scroller Scroller, limiter *rate.Limiter, logger *zap.Logger) *Searcher {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		scroller:     scroller,
		limiter:      limiter,
		logger:       logger,
		MaxCards:     DefaultMaxCards,
		ScrollPasses: DefaultScrollPasses,
		ScrollDelay:  DefaultScrollDelay,
		now:          time.Now,
	}
}

// Search returns the jobs on the first results page for keyword in location.
func (s *Searcher) Search(ctx context.Context, keyword, location string) ([]types.Job, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("keyword", keyword), zap.String("location", location))
	log.Info("searching linkedin")

	html, err := s.scroller.Scroll(ctx, SearchURL(keyword, location), s.ScrollPasses, s.ScrollDelay)
	if err != nil {
		return nil, fmt.Errorf("search %q in %q: %w", keyword, location, err)
	}

	jobs, skipped, err := ParseCards(html, keyword, s.MaxCards, s.now())
	if err != nil {
		return nil, err
	}
	for _, e := range skipped {
		log.Warn("error parsing job card", zap.Error(e))
	}
	return jobs, nil
}

// SearchAll runs every keyword and location pair and returns new jobs, deduplicated
// by URL against each other and against known. A failed search is logged and skipped.
func (s *Searcher) SearchAll(ctx context.Context, keywords, locations []string, known map[string]bool) []types.Job {
	seen := make(map[string]bool, len(known))
	for u := range known {
		seen[u] = true
	}

	var out []types.Job
	for _, kw := range keywords {
		for _, loc := range locations {
			if ctx.Err() != nil {
				return out
			}
			jobs, err := s.Search(ctx, kw, loc)
			if err != nil {
				s.logger.Error("linkedin search failed", zap.String("keyword", kw), zap.String("location", loc), zap.Error(err))
				continue
			}
			for _, j := range jobs {
				if seen[j.URL] {
					continue
				}
				seen[j.URL] = true
				s.logger.Info("new job found", zap.String("title", j.Title), zap.String("company", j.Company))
				out = append(out, j)
			}
		}
	}
	return out
}
