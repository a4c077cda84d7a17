package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobhound/internal/keyword"
	"jobhound/internal/model"
)

const remotiveAPIURL = "https://remotive.com/api/remote-jobs"

// Ensure Remotive implements model.Source.
var _ model.Source = (*Remotive)(nil)

type remotiveJob struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
}

// remotiveResponse is the top-level Remotive API response. Elements are kept
// raw so one malformed entry cannot abort the whole decode.
type remotiveResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// Remotive fetches from the Remotive public API.
type Remotive struct {
	client  *http.Client
	limiter *HostLimiter
	match   *keyword.Matcher
	ledger  model.Ledger
	logger  *slog.Logger
	baseURL string
}

// NewRemotive creates the Remotive adapter.
func NewRemotive(client *http.Client, limiter *HostLimiter, match *keyword.Matcher, ledger model.Ledger, logger *slog.Logger) *Remotive {
	return &Remotive{
		client:  client,
		limiter: limiter,
		match:   match,
		ledger:  ledger,
		logger:  logger,
		baseURL: remotiveAPIURL,
	}
}

func (s *Remotive) Name() string { return "remotive" }

// Fetch retrieves the full board and emits new keyword-matching listings.
func (s *Remotive) Fetch(ctx context.Context) ([]model.Job, error) {
	resp, err := get(ctx, s.client, s.limiter, s.baseURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("remotive fetch: %w", err)
	}
	defer resp.Body.Close()

	var rResp remotiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, fmt.Errorf("remotive fetch: %w", err)
	}

	var jobs []model.Job
	for i, raw := range rResp.Jobs {
		var rj remotiveJob
		if err := json.Unmarshal(raw, &rj); err != nil {
			s.logger.Debug("skipping malformed remotive entry", "index", i, "error", err)
			continue
		}

		desc := extractText(rj.Description)
		if !s.match.MatchAny(rj.Title, desc) {
			continue
		}
		if rj.URL == "" {
			continue
		}
		if !isNew(s.ledger, s.logger, s.Name(), rj.URL) {
			continue
		}

		job := model.Job{
			Title:        rj.Title,
			Company:      orUnknown(rj.CompanyName),
			URL:          rj.URL,
			ContactEmail: extractEmail(desc),
			ObservedAt:   time.Now(),
			Source:       s.Name(),
		}
		record(s.ledger, s.logger, job)
		jobs = append(jobs, job)
	}

	s.logger.Info("fetched remotive", "listings", len(rResp.Jobs), "new", len(jobs))
	return jobs, nil
}
