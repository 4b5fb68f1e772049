package notification

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers one rendered message over some channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages. Used in development and as the default channel.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.String("notification_id", msg.NotificationID.String()),
		zap.String("appointment_id", msg.AppointmentID.String()),
		zap.String("type", string(msg.Type)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
