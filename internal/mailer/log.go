package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/observability"
)

// LogMailer logs message metadata instead of sending. It is used when no SMTP
// host is configured and keeps nothing in memory.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(ctx context.Context, msg Message) error {
	if logger := observability.Logger(); logger != nil {
		logger.Info("Mail not sent (no SMTP host configured)",
			zap.String("kind", msg.Kind),
			zap.Strings("to", msg.To),
			zap.Strings("bcc", msg.Bcc),
			zap.String("subject", msg.Subject),
			zap.Int("attachments", len(msg.Attachments)))
	}
	return nil
}
