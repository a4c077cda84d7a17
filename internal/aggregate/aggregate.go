// Package aggregate merges the per-source adapters into one cycle result,
// isolating each source's failures from the others.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"jobhound/internal/model"
)

// Aggregator invokes every source and merges their results, deduplicating by
// canonical URL with first-seen-wins in source registration order.
type Aggregator struct {
	sources  []model.Source
	pacing   time.Duration // sleep between sequential source invocations
	parallel bool
	logger   *slog.Logger
}

// New creates an aggregator over the given sources.
func New(sources []model.Source, pacing time.Duration, parallel bool, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		pacing:   pacing,
		parallel: parallel,
		logger:   logger,
	}
}

// Collect runs all sources and returns the merged, URL-deduplicated result.
// A failing source contributes zero records; it never aborts the cycle.
func (a *Aggregator) Collect(ctx context.Context) []model.Job {
	results := make([][]model.Job, len(a.sources))

	if a.parallel {
		var g errgroup.Group
		for i, s := range a.sources {
			g.Go(func() error {
				results[i] = a.fetch(ctx, s)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, s := range a.sources {
			if ctx.Err() != nil {
				break
			}
			results[i] = a.fetch(ctx, s)

			// Pacing pause between sources, except after the last one.
			if i < len(a.sources)-1 && a.pacing > 0 {
				select {
				case <-ctx.Done():
					return a.merge(results)
				case <-time.After(a.pacing):
				}
			}
		}
	}

	return a.merge(results)
}

// merge flattens per-source results in registration order and drops duplicate
// URLs, keeping the first occurrence. Two sources can discover the same URL
// within one cycle before either ledger write is visible to the other.
func (a *Aggregator) merge(results [][]model.Job) []model.Job {
	raw := 0
	seen := make(map[string]struct{})
	var merged []model.Job
	for _, jobs := range results {
		for _, j := range jobs {
			raw++
			if _, dup := seen[j.URL]; dup {
				continue
			}
			seen[j.URL] = struct{}{}
			merged = append(merged, j)
		}
	}

	if raw != len(merged) {
		a.logger.Info("dropped cross-source duplicates", "raw", raw, "unique", len(merged))
	}
	a.logger.Info("collect complete", "sources", len(a.sources), "new_jobs", len(merged))
	return merged
}

// fetch runs one source, absorbing its error or panic.
func (a *Aggregator) fetch(ctx context.Context, s model.Source) (jobs []model.Job) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("source panicked", "source", s.Name(), "panic", r)
			jobs = nil
		}
	}()

	a.logger.Info("fetching source", "source", s.Name())
	jobs, err := s.Fetch(ctx)
	if err != nil {
		a.logSourceError(s.Name(), err)
		return nil
	}
	return jobs
}

// logSourceError classifies the failure for operator visibility. Blocked and
// transient failures are handled identically: the source skips this cycle.
func (a *Aggregator) logSourceError(name string, err error) {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusForbidden:
			a.logger.Warn("source blocked our request, skipping this cycle", "source", name, "status", httpErr.StatusCode)
			return
		case httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500:
			a.logger.Warn("source temporarily unavailable, will retry next cycle", "source", name, "status", httpErr.StatusCode)
			return
		}
	}
	a.logger.Error("source fetch failed", "source", name, "error", err)
}
