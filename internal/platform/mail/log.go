package mail

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them.
// It is the default transport for local development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender writing to logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, html string) error {
	if err := validateRecipient(to); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mail not delivered (log transport)", "to", to, "subject", subject, "body", html)
	return nil
}
