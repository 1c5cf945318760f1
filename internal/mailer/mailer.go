// Package mailer delivers registration and order notifications.
package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/kamiza/kamiza/internal/config"
	"github.com/kamiza/kamiza/internal/metrics"
)

// ErrNoRecipients is returned for messages without To and Bcc addresses.
var ErrNoRecipients = errors.New("mail has no recipients")

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a multipart mail with a plain text and an HTML body.
type Message struct {
	Kind        string
	To          []string
	Bcc         []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a LogMailer when no host is configured.
func New(cfg config.MailConfig) (Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogMailer{}, nil
	}
	return NewSMTPMailer(cfg)
}

// Send delivers msg and records the outcome under msg.Kind.
func Send(ctx context.Context, m Mailer, msg Message) error {
	kind := msg.Kind
	if kind == "" {
		kind = "generic"
	}
	if len(compact(msg.To)) == 0 && len(compact(msg.Bcc)) == 0 {
		metrics.RecordMailSend(kind, false)
		return ErrNoRecipients
	}
	err := m.Send(ctx, msg)
	metrics.RecordMailSend(kind, err == nil)
	return err
}

func compact(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
