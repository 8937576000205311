package sender

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogSender writes emails to the log instead of delivering them. main uses it
// when no SMTP relay is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, email Email) (Delivery, error) {
	d := Delivery{MessageID: "log-" + uuid.NewString(), SentAt: time.Now()}
	s.logger.Info("email (not delivered)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.Body),
		zap.String("message_id", d.MessageID),
	)
	return d, nil
}
