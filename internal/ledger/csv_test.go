package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"jobhound/internal/model"
)

func testEntry(url string) model.Entry {
	return model.Entry{
		ObservedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		URL:        url,
		Title:      "Backend Engineer",
		Company:    "Acme",
	}
}

func TestCSV_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen, err := l.Contains("https://example.com/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Error("empty ledger must not contain anything")
	}

	count, err := l.Count()
	if err != nil || count != 0 {
		t.Errorf("Count() = %d, %v; want 0, nil", count, err)
	}

	// First append creates the underlying file.
	if err := l.Append(testEntry("https://example.com/1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected ledger file to exist after first append: %v", err)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls := []string{
		"https://remoteok.io/jobs/1",
		"https://weworkremotely.com/jobs/2",
		"https://remotive.com/jobs/3",
	}
	for _, u := range urls {
		if err := l.Append(testEntry(u)); err != nil {
			t.Fatalf("append %s: %v", u, err)
		}
	}

	// Reopen from persisted state.
	reopened, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for _, u := range urls {
		seen, err := reopened.Contains(u)
		if err != nil {
			t.Fatalf("contains %s: %v", u, err)
		}
		if !seen {
			t.Errorf("expected %s to survive reopen", u)
		}
	}
	count, err := reopened.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(urls) {
		t.Errorf("Count() = %d, want %d", count, len(urls))
	}
}

func TestCSV_EntriesPreserveFieldsAndOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := model.Entry{
		ObservedAt: time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
		URL:        "https://example.com/a",
		Title:      `Engineer, "Platform"`,
		Company:    "Acme, Inc.",
	}
	second := testEntry("https://example.com/b")
	for _, e := range []model.Entry{first, second} {
		if err := l.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].URL != first.URL || entries[1].URL != second.URL {
		t.Errorf("entries out of append order: %v", entries)
	}
	// Quoted fields (commas, quotes) must round-trip intact.
	if entries[0].Title != first.Title {
		t.Errorf("Title = %q, want %q", entries[0].Title, first.Title)
	}
	if entries[0].Company != first.Company {
		t.Errorf("Company = %q, want %q", entries[0].Company, first.Company)
	}
	if !entries[0].ObservedAt.Equal(first.ObservedAt) {
		t.Errorf("ObservedAt = %v, want %v", entries[0].ObservedAt, first.ObservedAt)
	}
}

func TestCSV_AppendDoesNotRewriteExistingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Append(testEntry("https://example.com/1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if err := l.Append(testEntry("https://example.com/2")); err != nil {
		t.Fatalf("append: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(after), string(before)) {
		t.Error("append rewrote existing ledger content")
	}
}

func TestCSV_TornLastLineIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	content := "2026-08-29T08:00:00Z,https://example.com/ok,Engineer,Acme\n" +
		`2026-08-29T09:00:00Z,"https://example.com/torn` // crash mid-append, unclosed quote
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen, err := l.Contains("https://example.com/ok")
	if err != nil || !seen {
		t.Errorf("intact line must still be readable, got %v, %v", seen, err)
	}
}

func TestCSV_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")

	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := testEntry("https://example.com/" + string(rune('a'+i)))
			if err := l.Append(e); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, err := l.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 20 {
		t.Errorf("Count() = %d, want 20", count)
	}

	reopened, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	count, err = reopened.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 20 {
		t.Errorf("persisted Count() = %d, want 20", count)
	}
}
