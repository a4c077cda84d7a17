// Package runner drives the repeating cycle: collect from all sources, apply
// and report, then sleep. One bad cycle never terminates the process; only
// cancellation stops the loop.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobhound/internal/cover"
	"jobhound/internal/model"
)

// Collector produces the cycle's new job records.
type Collector interface {
	Collect(ctx context.Context) []model.Job
}

// Options are the runner's timing and attachment settings.
type Options struct {
	Interval   time.Duration // normal pause between cycles
	Cooldown   time.Duration // shorter pause after a failed cycle
	SendPacing time.Duration // pause between application emails
	CVPath     string        // attached to applications and summaries
}

// Runner owns the main loop.
type Runner struct {
	collector Collector
	ledger    model.Ledger
	mailer    model.Mailer
	letters   *cover.Writer
	opts      Options
	logger    *slog.Logger
}

// New creates a runner wired with all its dependencies.
func New(collector Collector, ledger model.Ledger, m model.Mailer, letters *cover.Writer, opts Options, logger *slog.Logger) *Runner {
	return &Runner{
		collector: collector,
		ledger:    ledger,
		mailer:    m,
		letters:   letters,
		opts:      opts,
		logger:    logger,
	}
}

// Run starts the loop: one immediate cycle, then repeat on the configured
// interval. A failed cycle is followed by the shorter cooldown instead. It
// returns nil when ctx is cancelled (graceful shutdown).
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("starting runner",
		"interval", r.opts.Interval.String(),
		"cooldown", r.opts.Cooldown.String(),
	)

	for {
		err := r.RunOnce(ctx)
		if ctx.Err() != nil {
			r.logger.Info("shutting down runner")
			return nil
		}

		wait := r.opts.Interval
		if err != nil {
			r.logger.Error("cycle failed, cooling down", "error", err, "cooldown", r.opts.Cooldown.String())
			wait = r.opts.Cooldown
		} else {
			r.logger.Info("sleeping until next cycle", "interval", r.opts.Interval.String())
		}

		select {
		case <-ctx.Done():
			r.logger.Info("shutting down runner")
			return nil
		case <-time.After(wait):
		}
	}
}

// RunOnce executes a single cycle. Panics are converted to errors so the
// loop's cooldown path handles them like any other cycle failure.
func (r *Runner) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("cycle panicked: %v", rec)
		}
	}()

	before := r.ledgerCount()
	r.logger.Info("starting cycle", "applied_total", before)

	jobs := r.collector.Collect(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if len(jobs) == 0 {
		r.logger.Info("no new jobs this cycle")
		r.send(ctx, model.Message{
			Subject: "jobhound update - no new jobs",
			Body: fmt.Sprintf(
				"No new matching jobs found in this cycle.\n\nTotal applications so far: %d\n\nNext check in %s.",
				before, r.opts.Interval,
			),
		})
		return nil
	}

	applied, withEmail := r.applyAll(ctx, jobs)
	after := r.ledgerCount()

	r.send(ctx, model.Message{
		Subject:    fmt.Sprintf("jobhound update - %d new jobs found", len(jobs)),
		Body:       buildSummary(jobs, applied, withEmail, before, after, r.opts.Interval),
		Attachment: r.opts.CVPath,
	})

	r.logger.Info("cycle complete", "new_jobs", len(jobs), "applied", applied, "applied_total", after)
	return nil
}

// applyAll sends an application for every job that exposes a contact email,
// pacing between sends. Returns how many were sent and how many had an email.
func (r *Runner) applyAll(ctx context.Context, jobs []model.Job) (applied, withEmail int) {
	for _, job := range jobs {
		if job.ContactEmail == "" {
			r.logger.Info("no contact email, skipping application", "title", job.Title, "company", job.Company)
			continue
		}
		withEmail++

		letter, err := r.letters.Letter(job.Title, job.Company)
		if err != nil {
			r.logger.Error("cover letter failed", "title", job.Title, "error", err)
			continue
		}

		msg := model.Message{
			To:         job.ContactEmail,
			Subject:    fmt.Sprintf("Application for %s", job.Title),
			Body:       letter,
			Attachment: r.opts.CVPath,
		}
		if err := r.mailer.Send(ctx, msg); err != nil {
			r.logger.Error("application failed", "title", job.Title, "company", job.Company, "error", err)
		} else {
			r.logger.Info("applied", "title", job.Title, "company", job.Company, "to", job.ContactEmail)
			applied++
		}

		if r.opts.SendPacing > 0 {
			select {
			case <-ctx.Done():
				return applied, withEmail
			case <-time.After(r.opts.SendPacing):
			}
		}
	}
	return applied, withEmail
}

// send delivers a status or summary message, best-effort.
func (r *Runner) send(ctx context.Context, m model.Message) {
	if err := r.mailer.Send(ctx, m); err != nil {
		r.logger.Error("notification failed", "subject", m.Subject, "error", err)
	}
}

func (r *Runner) ledgerCount() int {
	n, err := r.ledger.Count()
	if err != nil {
		r.logger.Error("ledger count failed", "error", err)
		return 0
	}
	return n
}

// buildSummary renders the cycle report grouped by source, in order of first
// appearance.
func buildSummary(jobs []model.Job, applied, withEmail, before, after int, interval time.Duration) string {
	var order []string
	bySource := make(map[string][]model.Job)
	for _, j := range jobs {
		if _, ok := bySource[j.Source]; !ok {
			order = append(order, j.Source)
		}
		bySource[j.Source] = append(bySource[j.Source], j)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new jobs:\n\n", len(jobs))
	for _, source := range order {
		group := bySource[source]
		fmt.Fprintf(&b, "--- %s (%d jobs) ---\n", source, len(group))
		for _, j := range group {
			fmt.Fprintf(&b, "- %s at %s\n  %s\n", j.Title, j.Company, j.URL)
			if j.ContactEmail != "" {
				fmt.Fprintf(&b, "  contact: %s\n", j.ContactEmail)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "Applications sent this cycle: %d/%d\n", applied, withEmail)
	fmt.Fprintf(&b, "Ledger: %d entries before this cycle, %d after\n", before, after)
	fmt.Fprintf(&b, "Next check in %s\n", interval)
	return b.String()
}
