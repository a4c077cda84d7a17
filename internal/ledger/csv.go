package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"jobhound/internal/model"
)

// Ensure CSVLedger implements model.Ledger.
var _ model.Ledger = (*CSVLedger)(nil)

// CSVLedger is the default ledger backend: an append-only CSV file with one
// entry per line (RFC3339 timestamp, URL, title, company). A missing file is
// equivalent to an empty ledger. Appends go through O_APPEND so existing
// lines are never rewritten.
type CSVLedger struct {
	path string
	lock *flock.Flock // guards against a second jobhound process on the same file

	mu    sync.Mutex
	urls  map[string]struct{}
	count int
}

// OpenCSV loads the ledger at path into memory. The file is created lazily on
// the first Append.
func OpenCSV(path string) (*CSVLedger, error) {
	l := &CSVLedger{
		path: path,
		lock: flock.New(path + ".lock"),
		urls: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn last line (crash mid-append) should not poison the rest.
			continue
		}
		if len(record) < 2 {
			continue
		}
		l.urls[record[1]] = struct{}{}
		l.count++
	}

	return l, nil
}

// Contains reports whether some prior entry has this exact URL.
func (l *CSVLedger) Contains(url string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.urls[url]
	return ok, nil
}

// Append durably records the entry before returning. Safe under concurrent
// callers: physical writes are serialized by the mutex and a cross-process
// file lock.
func (l *CSVLedger) Append(e model.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("locking ledger %s: %w", l.path, err)
	}
	defer l.lock.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s for append: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		e.ObservedAt.Format(time.RFC3339),
		e.URL,
		e.Title,
		e.Company,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", l.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing ledger %s: %w", l.path, err)
	}

	l.urls[e.URL] = struct{}{}
	l.count++
	return nil
}

// Count returns the total number of entries ever appended.
func (l *CSVLedger) Count() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, nil
}

// Entries re-reads the file and returns every entry in append order. Used by
// the stats and history commands, not by the poll cycle.
func (l *CSVLedger) Entries() ([]model.Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", l.path, err)
	}
	defer f.Close()

	var entries []model.Entry
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) < 4 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, record[0])
		entries = append(entries, model.Entry{
			ObservedAt: ts,
			URL:        record[1],
			Title:      record[2],
			Company:    record[3],
		})
	}
	return entries, nil
}
