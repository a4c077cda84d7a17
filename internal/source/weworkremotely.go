package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobhound/internal/keyword"
	"jobhound/internal/model"
)

const wwrBaseURL = "https://weworkremotely.com"

// Ensure WeWorkRemotely implements model.Source.
var _ model.Source = (*WeWorkRemotely)(nil)

// WeWorkRemotely scrapes the WWR front page. Listings live under
// section.jobs as plain list items: an anchor with a relative href, a
// span.title and a span.company. The page carries no descriptions, so no
// contact email can be extracted here.
type WeWorkRemotely struct {
	client  *http.Client
	limiter *HostLimiter
	match   *keyword.Matcher
	ledger  model.Ledger
	logger  *slog.Logger
	baseURL string
}

// NewWeWorkRemotely creates the WWR adapter.
func NewWeWorkRemotely(client *http.Client, limiter *HostLimiter, match *keyword.Matcher, ledger model.Ledger, logger *slog.Logger) *WeWorkRemotely {
	return &WeWorkRemotely{
		client:  client,
		limiter: limiter,
		match:   match,
		ledger:  ledger,
		logger:  logger,
		baseURL: wwrBaseURL,
	}
}

func (s *WeWorkRemotely) Name() string { return "weworkremotely" }

// Fetch scrapes the listing page and emits new keyword-matching listings.
func (s *WeWorkRemotely) Fetch(ctx context.Context) ([]model.Job, error) {
	resp, err := get(ctx, s.client, s.limiter, s.baseURL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely parse: %w", err)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely base url: %w", err)
	}

	var jobs []model.Job
	total := 0
	doc.Find("section.jobs li").Each(func(_ int, li *goquery.Selection) {
		if _, hasClass := li.Attr("class"); hasClass {
			// Classed items are view-all links and ads, not listings.
			return
		}
		total++

		href, ok := li.Find("a[href]").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			s.logger.Debug("skipping listing with bad href", "href", href, "error", err)
			return
		}
		link := base.ResolveReference(ref).String()

		title := strings.TrimSpace(li.Find("span.title").First().Text())
		if title == "" || !s.match.Match(title) {
			return
		}
		if !isNew(s.ledger, s.logger, s.Name(), link) {
			return
		}

		job := model.Job{
			Title:      title,
			Company:    orUnknown(strings.TrimSpace(li.Find("span.company").First().Text())),
			URL:        link,
			ObservedAt: time.Now(),
			Source:     s.Name(),
		}
		record(s.ledger, s.logger, job)
		jobs = append(jobs, job)
	})

	s.logger.Info("fetched weworkremotely", "listings", total, "new", len(jobs))
	return jobs, nil
}
