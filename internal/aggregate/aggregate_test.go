package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"jobhound/internal/model"
)

// stubSource returns canned jobs or an error.
type stubSource struct {
	name string
	jobs []model.Job
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) ([]model.Job, error) {
	return s.jobs, s.err
}

// panicSource panics on Fetch.
type panicSource struct{}

func (s *panicSource) Name() string { return "boom" }

func (s *panicSource) Fetch(_ context.Context) ([]model.Job, error) { panic("nil map write") }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func job(source, url string) model.Job {
	return model.Job{Title: "Backend Engineer", Company: "Acme", URL: url, Source: source}
}

func TestCollect_MergesAllSources(t *testing.T) {
	a := New([]model.Source{
		&stubSource{name: "a", jobs: []model.Job{job("a", "https://x/1"), job("a", "https://x/2")}},
		&stubSource{name: "b", jobs: []model.Job{job("b", "https://x/3")}},
	}, 0, false, discardLogger())

	got := a.Collect(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(got))
	}
}

func TestCollect_FailedSourceDoesNotAbortOthers(t *testing.T) {
	timeout := &stubSource{name: "a", err: errors.New("dial tcp: i/o timeout")}
	b := &stubSource{name: "b", jobs: []model.Job{job("b", "https://x/1")}}
	c := &stubSource{name: "c", jobs: []model.Job{job("c", "https://x/2"), job("c", "https://x/3")}}

	a := New([]model.Source{timeout, b, c}, 0, false, discardLogger())

	got := a.Collect(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected b+c jobs (3), got %d", len(got))
	}
	for _, j := range got {
		if j.Source == "a" {
			t.Errorf("failed source must contribute zero records, got %+v", j)
		}
	}
}

func TestCollect_BlockedSourceHandledLikeTransient(t *testing.T) {
	blocked := &stubSource{name: "a", err: &model.HTTPError{StatusCode: http.StatusForbidden}}
	b := &stubSource{name: "b", jobs: []model.Job{job("b", "https://x/1")}}

	a := New([]model.Source{blocked, b}, 0, false, discardLogger())

	got := a.Collect(context.Background())
	if len(got) != 1 || got[0].Source != "b" {
		t.Fatalf("expected only b's job, got %+v", got)
	}
}

func TestCollect_PanickingSourceIsContained(t *testing.T) {
	a := New([]model.Source{
		&panicSource{},
		&stubSource{name: "b", jobs: []model.Job{job("b", "https://x/1")}},
	}, 0, false, discardLogger())

	got := a.Collect(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected the healthy source's job, got %d", len(got))
	}
}

func TestCollect_CrossSourceDuplicateFirstWins(t *testing.T) {
	dup := "https://x/same"
	a := New([]model.Source{
		&stubSource{name: "a", jobs: []model.Job{job("a", dup)}},
		&stubSource{name: "b", jobs: []model.Job{job("b", dup), job("b", "https://x/other")}},
	}, 0, false, discardLogger())

	got := a.Collect(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 unique jobs, got %d", len(got))
	}
	if got[0].URL != dup || got[0].Source != "a" {
		t.Errorf("first-invoked source must win the duplicate, got %+v", got[0])
	}
}

func TestCollect_ParallelModeKeepsRegistrationOrderTieBreak(t *testing.T) {
	dup := "https://x/same"
	a := New([]model.Source{
		&stubSource{name: "a", jobs: []model.Job{job("a", dup)}},
		&stubSource{name: "b", jobs: []model.Job{job("b", dup)}},
		&stubSource{name: "c", jobs: []model.Job{job("c", "https://x/other")}},
	}, 0, true, discardLogger())

	for i := 0; i < 10; i++ {
		got := a.Collect(context.Background())
		if len(got) != 2 {
			t.Fatalf("expected 2 unique jobs, got %d", len(got))
		}
		if got[0].Source != "a" {
			t.Fatalf("parallel merge must keep registration-order tie-break, got %+v", got[0])
		}
	}
}

func TestCollect_Deterministic(t *testing.T) {
	sources := []model.Source{
		&stubSource{name: "a", jobs: []model.Job{job("a", "https://x/1")}},
		&stubSource{name: "b", jobs: []model.Job{job("b", "https://x/2")}},
	}
	a := New(sources, 0, false, discardLogger())

	first := a.Collect(context.Background())
	second := a.Collect(context.Background())
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].URL != second[i].URL {
			t.Errorf("order differs at %d: %s vs %s", i, first[i].URL, second[i].URL)
		}
	}
}

func TestCollect_CancelledContextStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New([]model.Source{
		&stubSource{name: "a", jobs: []model.Job{job("a", "https://x/1")}},
	}, 0, false, discardLogger())

	got := a.Collect(ctx)
	if len(got) != 0 {
		t.Fatalf("expected no fetches after cancellation, got %d", len(got))
	}
}
