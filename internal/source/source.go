// Package source contains one adapter per upstream job board. Each adapter
// fetches the board's native format, keeps keyword-matching listings the
// ledger has not seen, extracts a contact email where the board provides
// descriptions, and writes emitted listings through to the ledger.
package source

import (
	"log/slog"

	"jobhound/internal/model"
)

// isNew reports whether url is absent from the ledger. A ledger read failure
// is logged and the candidate skipped, so a broken ledger cannot cause a
// double emission.
func isNew(l model.Ledger, logger *slog.Logger, name, url string) bool {
	seen, err := l.Contains(url)
	if err != nil {
		logger.Error("ledger lookup failed", "source", name, "url", url, "error", err)
		return false
	}
	return !seen
}

// record writes the emitted job through to the ledger. An append failure is
// logged but the job is still emitted this cycle; the ledger cannot guarantee
// it was recorded, so the listing may be re-offered later (at-least-once).
func record(l model.Ledger, logger *slog.Logger, j model.Job) {
	if err := l.Append(j.Entry()); err != nil {
		logger.Error("ledger append failed", "source", j.Source, "url", j.URL, "error", err)
	}
}

func orUnknown(company string) string {
	if company == "" {
		return model.UnknownCompany
	}
	return company
}
