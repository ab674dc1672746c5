package repository

import (
	"context"
	"fmt"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	pkgcache "PortPulse/pkg/cache"
	pkgkafka "PortPulse/pkg/kafka"
	applogger "PortPulse/pkg/logger"
)

// KafkaAlertSink implements AlertSink for Kafka with a cooldown gate: one
// alert kind per ticker fires at most once per cooldown window, so a
// position sitting on its stop does not flood the topic every refresh.
type KafkaAlertSink struct {
	producer *pkgkafka.Producer
	topic    string
	cooldown time.Duration
	gate     pkgcache.Service
	l        *applogger.Logger
	metrics  domrepo.Metrics
}

// NewKafkaAlertSink creates the sink. gate may be the memory cache, Redis,
// or the layered combination; cooldown <= 0 disables gating.
func NewKafkaAlertSink(producer *pkgkafka.Producer, topic string, gate pkgcache.Service, cooldown time.Duration, l *applogger.Logger, m domrepo.Metrics) *KafkaAlertSink {
	return &KafkaAlertSink{
		producer: producer,
		topic:    topic,
		cooldown: cooldown,
		gate:     gate,
		l:        l,
		metrics:  m,
	}
}

// Publish sends the alert unless the same kind+ticker fired within the
// cooldown window.
func (s *KafkaAlertSink) Publish(ctx context.Context, a *models.Alert) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	if s.onCooldown(ctx, a) {
		if s.l != nil {
			s.l.Debug("alert suppressed by cooldown",
				applogger.String("kind", a.Kind),
				applogger.String("ticker", a.Ticker),
			)
		}
		return nil
	}

	key := []byte(a.Ticker)
	if err := s.producer.Publish(ctx, s.topic, key, a); err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("alert_publish")
		}
		return fmt.Errorf("publish alert %s/%s: %w", a.Kind, a.Ticker, err)
	}
	if s.metrics != nil {
		s.metrics.RecordAlert(a.Kind)
	}
	s.armCooldown(ctx, a)
	return nil
}

func cooldownKey(a *models.Alert) string {
	return pkgcache.GenerateKeyWithParams("alert:cooldown", a.Kind, a.Ticker)
}

func (s *KafkaAlertSink) onCooldown(ctx context.Context, a *models.Alert) bool {
	if s.gate == nil || s.cooldown <= 0 {
		return false
	}
	ok, err := s.gate.Exists(ctx, cooldownKey(a))
	return err == nil && ok
}

func (s *KafkaAlertSink) armCooldown(ctx context.Context, a *models.Alert) {
	if s.gate == nil || s.cooldown <= 0 {
		return
	}
	_ = s.gate.Set(ctx, cooldownKey(a), 1, s.cooldown)
}

func (s *KafkaAlertSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

var _ domrepo.AlertSink = (*KafkaAlertSink)(nil)
