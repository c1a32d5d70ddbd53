package messaging

import (
	"context"

	"delivery-notify-service/internal/platform/logger"
)

// LogSender writes outgoing messages to the log instead of sending them.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (LogSender) Send(ctx context.Context, phone, message string) error {
	logger.C(ctx).Info().
		Str("component", "log_sender").
		Str("chat_id", ChatID(phone)).
		Str("message", message).
		Msg("outgoing message (dry run)")
	return nil
}
