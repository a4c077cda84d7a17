package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"jobhound/internal/keyword"
	"jobhound/internal/model"
)

const remoteOKAPIURL = "https://remoteok.io/api"

// Ensure RemoteOK implements model.Source.
var _ model.Source = (*RemoteOK)(nil)

// remoteOKJob is a single element of the RemoteOK API array. Older postings
// use "position", newer ones "title".
type remoteOKJob struct {
	Position    string `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     string `json:"company"`
	URL         string `json:"url"`
}

// RemoteOK fetches from the RemoteOK JSON API. The response is a bare array
// whose first element is a legal/metadata blob, not a listing.
type RemoteOK struct {
	client  *http.Client
	limiter *HostLimiter
	match   *keyword.Matcher
	ledger  model.Ledger
	logger  *slog.Logger
	baseURL string
}

// NewRemoteOK creates the RemoteOK adapter.
func NewRemoteOK(client *http.Client, limiter *HostLimiter, match *keyword.Matcher, ledger model.Ledger, logger *slog.Logger) *RemoteOK {
	return &RemoteOK{
		client:  client,
		limiter: limiter,
		match:   match,
		ledger:  ledger,
		logger:  logger,
		baseURL: remoteOKAPIURL,
	}
}

func (s *RemoteOK) Name() string { return "remoteok" }

// Fetch retrieves the full board and emits new keyword-matching listings.
func (s *RemoteOK) Fetch(ctx context.Context) ([]model.Job, error) {
	resp, err := get(ctx, s.client, s.limiter, s.baseURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	var jobs []model.Job
	for i, raw := range raws {
		if i == 0 {
			// First element is metadata, not a listing.
			continue
		}

		var rj remoteOKJob
		if err := json.Unmarshal(raw, &rj); err != nil {
			s.logger.Debug("skipping malformed remoteok entry", "index", i, "error", err)
			continue
		}

		title := rj.Position
		if title == "" {
			title = rj.Title
		}
		desc := extractText(rj.Description)

		if !s.match.MatchAny(title, desc) {
			continue
		}
		if rj.URL == "" {
			continue
		}
		if !isNew(s.ledger, s.logger, s.Name(), rj.URL) {
			continue
		}

		job := model.Job{
			Title:        title,
			Company:      orUnknown(rj.Company),
			URL:          rj.URL,
			ContactEmail: extractEmail(desc),
			ObservedAt:   time.Now(),
			Source:       s.Name(),
		}
		record(s.ledger, s.logger, job)
		jobs = append(jobs, job)
	}

	listings := len(raws)
	if listings > 0 {
		listings-- // metadata element
	}
	s.logger.Info("fetched remoteok", "listings", listings, "new", len(jobs))
	return jobs, nil
}
