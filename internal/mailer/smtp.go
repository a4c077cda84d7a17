// Package mailer delivers the cycle's outbound email: application mails with
// the CV attached and status/summary mails. Delivery is best-effort; the poll
// cycle never depends on it succeeding.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-message/mail"

	"jobhound/internal/model"
)

// Ensure SMTPMailer implements model.Mailer.
var _ model.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends mail over SMTP with implicit TLS (e.g. Gmail on port 465)
// using the account's app password.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	password string
	logger   *slog.Logger
}

// NewSMTP creates a mailer for the given account.
func NewSMTP(host string, port int, from, password string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		logger:   logger,
	}
}

// Send builds a MIME message and delivers it. An empty To sends to self.
func (s *SMTPMailer) Send(ctx context.Context, m model.Message) error {
	to := m.To
	if to == "" {
		to = s.from
	}

	msg, err := buildMessage(s.from, to, m.Subject, m.Body, m.Attachment, s.logger)
	if err != nil {
		return fmt.Errorf("building message %q: %w", m.Subject, err)
	}

	if err := s.deliver(ctx, to, msg); err != nil {
		return fmt.Errorf("sending %q to %s: %w", m.Subject, to, err)
	}

	s.logger.Info("email sent", "to", to, "subject", m.Subject)
	return nil
}

func (s *SMTPMailer) deliver(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 30 * time.Second},
		Config:    &tls.Config{ServerName: s.host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage assembles a plain-text MIME message with an optional PDF
// attachment. A missing attachment file is logged and skipped, not fatal.
func buildMessage(from, to, subject, body, attachment string, logger *slog.Logger) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	tw, err := mw.CreateSingleInline(th)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(tw, body); err != nil {
		tw.Close()
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	if attachment != "" {
		data, err := os.ReadFile(attachment)
		if err != nil {
			logger.Warn("attachment unreadable, sending without it", "path", attachment, "error", err)
		} else {
			var ah mail.AttachmentHeader
			ah.SetContentType("application/pdf", nil)
			ah.SetFilename(filepath.Base(attachment))
			aw, err := mw.CreateAttachment(ah)
			if err != nil {
				return nil, err
			}
			if _, err := aw.Write(data); err != nil {
				aw.Close()
				return nil, err
			}
			if err := aw.Close(); err != nil {
				return nil, err
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
