package mail

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/logging"
)

// LogMailer is used in development when no SMTP server is configured. It
// logs the link instead of sending anything.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "email not sent (dev mode)", "kind", string(msg.Kind), "to", msg.To, "url", msg.Link)
	return nil
}
