package mail

import (
	"context"
	"log/slog"
)

// LogSender stands in for a real mailer in development. The code itself is
// only emitted at debug level.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{log: logger.With("component", "mail")}
}

func (s *LogSender) SendPasswordReset(ctx context.Context, email, maskedEmail, code string) error {
	s.log.InfoContext(ctx, "password reset mail suppressed", "to", maskedEmail)
	s.log.DebugContext(ctx, "password reset code", "to", maskedEmail, "code", code)
	return nil
}
