package model

import (
	"context"
	"time"
)

// UnknownCompany is the sentinel used when an upstream listing omits the company.
const UnknownCompany = "Unknown"

// Job is the normalized representation of one listing, regardless of which
// source produced it. Two jobs with the same URL are the same listing.
type Job struct {
	Title        string    // may be empty if upstream omits it
	Company      string    // "Unknown" when absent upstream
	URL          string    // canonical identifier, never empty past the adapter
	ContactEmail string    // best-effort extraction from the description, "" if none
	ObservedAt   time.Time // when we produced this record, not upstream's posting time
	Source       string    // adapter name, e.g. "remoteok"
}

// Entry is one ledger fact. Entries are written once and never mutated.
type Entry struct {
	ObservedAt time.Time
	URL        string
	Title      string
	Company    string
}

// Entry converts a job into its ledger representation.
func (j Job) Entry() Entry {
	return Entry{
		ObservedAt: j.ObservedAt,
		URL:        j.URL,
		Title:      j.Title,
		Company:    j.Company,
	}
}

// Source fetches listings from one upstream provider and normalizes them.
// Implementations consult the ledger before emitting a job and append it as a
// side effect of emission.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Job, error)
}

// Ledger is the durable record of every listing URL ever observed. It is the
// sole deduplication authority across process restarts.
type Ledger interface {
	Contains(url string) (bool, error)
	Append(e Entry) error
	Count() (int, error)
}

// Message is one outbound email.
type Message struct {
	To         string // empty means "send to self"
	Subject    string
	Body       string
	Attachment string // optional file path
}

// Mailer delivers messages. Delivery is best-effort; callers log failures and
// carry on.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}
