package sms

import (
	"context"

	"github.com/clipfeed/clipfeed/internal/logging"
)

// LogSender writes messages to the log instead of a gateway. Used in
// development when no gateway is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, phone string, text string) error {
	s.logger.Info(ctx, "sms (log only)", "phone", phone, "text", text)
	return nil
}
