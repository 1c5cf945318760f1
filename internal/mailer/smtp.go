package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/kamiza/kamiza/internal/config"
)

// DefaultSMTPPort uses implicit TLS.
const DefaultSMTPPort = 465

// SMTPMailer sends through an authenticated SMTP server.
type SMTPMailer struct {
	from   string
	client *mail.Client
}

// NewSMTPMailer builds a client for cfg. Port 465 uses implicit TLS, any other
// port negotiates STARTTLS.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	port := cfg.Port
	if port <= 0 {
		port = DefaultSMTPPort
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(15 * time.Second),
	}
	if port == DefaultSMTPPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{from: from, client: client}, nil
}

// Send implements Mailer.
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	return nil
}

func (s *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if to := compact(msg.To); len(to) > 0 {
		if err := m.To(to...); err != nil {
			return nil, fmt.Errorf("to address: %w", err)
		}
	}
	if bcc := compact(msg.Bcc); len(bcc) > 0 {
		if err := m.Bcc(bcc...); err != nil {
			return nil, fmt.Errorf("bcc address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	for _, att := range msg.Attachments {
		var opts []mail.FileOption
		if att.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(att.ContentType)))
		}
		m.AttachReadSeeker(att.Name, bytes.NewReader(att.Data), opts...)
	}
	return m, nil
}
