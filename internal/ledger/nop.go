package ledger

import "jobhound/internal/model"

// Ensure NopLedger implements model.Ledger.
var _ model.Ledger = (*NopLedger)(nil)

// NopLedger is used in dry-run mode. It never records anything, so every
// listing looks new on each cycle.
type NopLedger struct{}

func NewNop() *NopLedger { return &NopLedger{} }

func (l *NopLedger) Contains(url string) (bool, error) { return false, nil }
func (l *NopLedger) Append(e model.Entry) error        { return nil }
func (l *NopLedger) Count() (int, error)               { return 0, nil }
