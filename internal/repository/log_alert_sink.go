package repository

import (
	"context"

	models "PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	applogger "PortPulse/pkg/logger"
)

// LogAlertSink writes alerts to the structured log. Used when no Kafka
// brokers are configured, so alert output still lands somewhere visible.
type LogAlertSink struct {
	l *applogger.Logger
}

func NewLogAlertSink(l *applogger.Logger) *LogAlertSink {
	return &LogAlertSink{l: l}
}

func (s *LogAlertSink) Publish(ctx context.Context, a *models.Alert) error {
	s.l.Warn("alert",
		applogger.String("kind", a.Kind),
		applogger.String("ticker", a.Ticker),
		applogger.String("priority", a.Priority),
		applogger.String("reason", a.Reason),
	)
	return nil
}

func (s *LogAlertSink) Close() error { return nil }

var _ domrepo.AlertSink = (*LogAlertSink)(nil)
