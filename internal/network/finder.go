package network

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-agent/internal/types"
)

const peopleSearchBase = "https://www.linkedin.com/search/results/people/?keywords="

// People card selectors
const (
	personCardSelector     = "li.reusable-search__result-container"
	personNameSelector     = "span.entity-result__title-text a"
	personTitleSelector    = "div.entity-result__primary-subtitle"
	personLocationSelector = "div.entity-result__secondary-subtitle"
	personInsightSelector  = "span.entity-result__simple-insight-text"
	personBadgeSelector    = "span.entity-result__badge-text"
)

// Defaults for Finder.
const (
	DefaultPerQuery   = 3
	DefaultMaxResults = 5
	DefaultKeep       = 2
)

var mutualCount = regexp.MustCompile(`(\d+)`)

// PeopleSearchURL builds the people search for query.
func PeopleSearchURL(query string) string {
	return peopleSearchBase + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}

// ParsePeople reads up to limit person cards. Cards without a name, link or title
// are skipped and reported.
func ParsePeople(html, company string, limit int, now time.Time) ([]types.Contact, []error, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse people results: %w", err)
	}

	cards := doc.Find(personCardSelector)
	if limit > 0 && cards.Length() > limit {
		cards = cards.Slice(0, limit)
	}

	var (
		people  []types.Contact
		skipped []error
	)
	cards.Each(func(i int, card *goquery.Selection) {
		link := card.Find(personNameSelector).First()
		href, _ := link.Attr("href")
		c := types.Contact{
			Name:       clean(link.Text()),
			ProfileURL: profileURL(href),
			Title:      clean(card.Find(personTitleSelector).First().Text()),
			Location:   clean(card.Find(personLocationSelector).First().Text()),
			Company:    company,
			FoundAt:    now,
		}
		if c.Location == "" {
			c.Location = "Unknown"
		}
		if insight := strings.ToLower(card.Find(personInsightSelector).First().Text()); strings.Contains(insight, "mutual connection") {
			if m := mutualCount.FindString(insight); m != "" {
				c.MutualConnections, _ = strconv.Atoi(m)
			}
		}
		badge := card.Find(personBadgeSelector).First().Text()
		c.IsConnected = strings.Contains(badge, "1st") || strings.Contains(strings.ToLower(badge), "connected")

		if c.Name == "" || c.ProfileURL == "" || c.Title == "" {
			skipped = append(skipped, fmt.Errorf("person card %d: missing name, link or title", i))
			return
		}
		people = append(people, c)
	})
	return people, skipped, nil
}

func profileURL(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	return href
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Loader opens a page and returns its rendered HTML.
type Loader interface {
	Scroll(ctx context.Context, url string, passes int, delay time.Duration) (string, error)
}

// Finder searches for contacts at a company after an application.
type Finder struct {
	loader     Loader
	limiter    *rate.Limiter
	logger     *zap.Logger
	PerQuery   int
	MaxResults int
	Keep       int
	now        func() time.Time
}

// NewFinder creates a Finder. A nil limiter does not pace searches.
func NewFinder(loader Loader, limiter *rate.Limiter, logger *zap.Logger) *Finder {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{
		loader:     loader,
		limiter:    limiter,
		logger:     logger,
		PerQuery:   DefaultPerQuery,
		MaxResults: DefaultMaxResults,
		Keep:       DefaultKeep,
		now:        time.Now,
	}
}

// Find returns the best contacts for job with the job context and a drafted message
// filled in. Search failures are logged; the result may be empty.
func (f *Finder) Find(ctx context.Context, job types.Job) []types.Contact {
	log := f.logger.With(zap.String("company", job.Company), zap.String("job_title", job.Title))
	log.Info("finding people for networking")

	var found []types.Contact
	seen := make(map[string]bool)
	for _, q := range Queries(job.Company, job.Title) {
		if len(found) >= f.MaxResults {
			break
		}
		if err := f.limiter.Wait(ctx); err != nil {
			log.Warn("people search interrupted", zap.Error(err))
			break
		}

		html, err := f.loader.Scroll(ctx, PeopleSearchURL(q), 0, 0)
		if err != nil {
			log.Warn("people search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		people, skipped, err := ParsePeople(html, job.Company, f.PerQuery, f.now())
		if err != nil {
			log.Warn("could not read people results", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, e := range skipped {
			log.Warn("error extracting person data", zap.Error(e))
		}
		for _, p := range people {
			if len(found) >= f.MaxResults {
				break
			}
			if seen[p.ProfileURL] {
				continue
			}
			seen[p.ProfileURL] = true
			if IsGoodConnection(p, job.Title) {
				log.Info("found contact", zap.String("name", p.Name), zap.String("title", p.Title))
				found = append(found, p)
			}
		}
	}

	ranked := Rank(found, job.Title)
	if len(ranked) > f.Keep {
		ranked = ranked[:f.Keep]
	}
	for i := range ranked {
		ranked[i].JobApplied = job.Title
		ranked[i].JobURL = job.URL
		ranked[i].Message = ConnectionMessage(ranked[i], job)
	}
	return ranked
}
