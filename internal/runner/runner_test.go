package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobhound/internal/cover"
	"jobhound/internal/model"
)

// --- Fakes ---

type stubCollector struct {
	jobs  []model.Job
	calls atomic.Int32
}

func (c *stubCollector) Collect(_ context.Context) []model.Job {
	c.calls.Add(1)
	return c.jobs
}

type panicCollector struct {
	calls atomic.Int32
}

func (c *panicCollector) Collect(_ context.Context) []model.Job {
	c.calls.Add(1)
	panic("upstream went sideways")
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []model.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Message(nil), m.sent...)
}

type countLedger struct{ n int }

func (l *countLedger) Contains(string) (bool, error) { return false, nil }
func (l *countLedger) Append(model.Entry) error      { l.n++; return nil }
func (l *countLedger) Count() (int, error)           { return l.n, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner(c Collector, m model.Mailer) *Runner {
	return New(c, &countLedger{n: 5}, m, cover.NewWriter("Jane Doe", "jane@example.com", ""), Options{
		Interval: time.Hour,
		Cooldown: time.Minute,
	}, discardLogger())
}

// --- Tests ---

func TestRunOnce_NoJobsSendsStatusMail(t *testing.T) {
	mailer := &recordingMailer{}
	r := testRunner(&stubCollector{}, mailer)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 status mail, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Subject, "no new jobs") {
		t.Errorf("Subject = %q", sent[0].Subject)
	}
	if !strings.Contains(sent[0].Body, "Total applications so far: 5") {
		t.Errorf("Body missing running total:\n%s", sent[0].Body)
	}
}

func TestRunOnce_AppliesAndSummarizes(t *testing.T) {
	jobs := []model.Job{
		{Title: "Backend Engineer", Company: "Acme", URL: "https://x/1", ContactEmail: "hr@acme.dev", Source: "remoteok"},
		{Title: "Go Developer", Company: "Unknown", URL: "https://x/2", Source: "weworkremotely"},
		{Title: "Data Engineer", Company: "DataCo", URL: "https://x/3", ContactEmail: "jobs@dataco.io", Source: "remotive"},
	}
	mailer := &recordingMailer{}
	r := testRunner(&stubCollector{jobs: jobs}, mailer)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := mailer.messages()
	// Two applications (jobs with contact emails) plus one summary.
	if len(sent) != 3 {
		t.Fatalf("expected 3 mails, got %d: %+v", len(sent), sent)
	}

	if sent[0].To != "hr@acme.dev" || !strings.Contains(sent[0].Subject, "Backend Engineer") {
		t.Errorf("first application wrong: %+v", sent[0])
	}
	if !strings.Contains(sent[0].Body, "Backend Engineer position at Acme") {
		t.Errorf("application body missing cover letter:\n%s", sent[0].Body)
	}
	if sent[1].To != "jobs@dataco.io" {
		t.Errorf("second application wrong: %+v", sent[1])
	}

	summary := sent[2]
	if summary.To != "" {
		t.Errorf("summary must go to self, got %q", summary.To)
	}
	for _, want := range []string{
		"Found 3 new jobs",
		"--- remoteok (1 jobs) ---",
		"--- weworkremotely (1 jobs) ---",
		"--- remotive (1 jobs) ---",
		"Applications sent this cycle: 2/2",
	} {
		if !strings.Contains(summary.Body, want) {
			t.Errorf("summary missing %q:\n%s", want, summary.Body)
		}
	}
}

func TestRunOnce_MailerFailureDoesNotFailCycle(t *testing.T) {
	jobs := []model.Job{
		{Title: "Backend Engineer", Company: "Acme", URL: "https://x/1", ContactEmail: "hr@acme.dev", Source: "remoteok"},
	}
	mailer := &recordingMailer{err: errors.New("smtp: 535 auth failed")}
	r := testRunner(&stubCollector{jobs: jobs}, mailer)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("notification failure must not fail the cycle: %v", err)
	}
}

func TestRunOnce_PanicBecomesError(t *testing.T) {
	r := testRunner(&panicCollector{}, &recordingMailer{})

	err := r.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if !strings.Contains(err.Error(), "cycle panicked") {
		t.Errorf("error = %v", err)
	}
}

func TestRun_CooldownAfterFailedCycle(t *testing.T) {
	collector := &panicCollector{}
	r := New(collector, &countLedger{}, &recordingMailer{}, cover.NewWriter("j", "j@x.io", ""), Options{
		Interval: time.Hour, // would time the test out if used
		Cooldown: 10 * time.Millisecond,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// With the hour interval, a second call can only come via the cooldown path.
	deadline := time.After(2 * time.Second)
	for collector.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("runner never retried after failed cycle")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v on cancellation, want nil", err)
	}
}

func TestRun_CancellationInterruptsSleep(t *testing.T) {
	collector := &stubCollector{}
	r := New(collector, &countLedger{}, &recordingMailer{}, cover.NewWriter("j", "j@x.io", ""), Options{
		Interval: time.Hour,
		Cooldown: time.Hour,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Let the immediate cycle run, then cancel during the hour-long sleep.
	deadline := time.After(2 * time.Second)
	for collector.calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("first cycle never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancellation")
	}
}
