package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender пишет событие в лог
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string {
	return "log"
}

func (s *LogSender) Send(_ context.Context, event Event) error {
	s.logger.Info("Notification",
		zap.String("event_id", event.ID.String()),
		zap.String("kind", string(event.Kind)),
		zap.String("recipient_id", event.Recipient.UserID.String()),
		zap.String("recipient_email", event.Recipient.Email),
		zap.Any("context", event.Context),
	)
	return nil
}
