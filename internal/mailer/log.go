package mailer

import (
	"context"
	"log/slog"

	"jobhound/internal/model"
)

// Ensure LogMailer implements model.Mailer.
var _ model.Mailer = (*LogMailer)(nil)

// LogMailer logs messages instead of sending them. Used when email is
// disabled and in dry-run mode.
type LogMailer struct {
	logger *slog.Logger
}

// NewLog returns a mailer that only logs.
func NewLog(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and never fails.
func (l *LogMailer) Send(_ context.Context, m model.Message) error {
	to := m.To
	if to == "" {
		to = "(self)"
	}
	l.logger.Info("email suppressed",
		"to", to,
		"subject", m.Subject,
		"body_len", len(m.Body),
		"attachment", m.Attachment,
	)
	return nil
}
