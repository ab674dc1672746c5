package usecase

import (
	"context"
	"time"

	applogger "PortPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// MarketHours is the evaluation window. Scheduled refreshes outside the
// window are skipped; manual refreshes always run.
type MarketHours struct {
	OpenHour  int
	OpenMin   int
	CloseHour int
	CloseMin  int
	Weekdays  bool // restrict to Monday-Friday
	Location  *time.Location
}

// Contains reports whether t falls inside the trading window.
func (h MarketHours) Contains(t time.Time) bool {
	if h.Location != nil {
		t = t.In(h.Location)
	}
	if h.Weekdays {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	open := h.OpenHour*60 + h.OpenMin
	close := h.CloseHour*60 + h.CloseMin
	if open == close {
		return true // window disabled
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= open && minute <= close
}

// RefreshScheduler runs the evaluation cycle on a cron schedule inside
// market hours.
type RefreshScheduler struct {
	cron      *cron.Cron
	evaluator *PortfolioEvaluator
	logger    *applogger.Logger
	spec      string
	hours     MarketHours
}

func NewRefreshScheduler(evaluator *PortfolioEvaluator, spec string, hours MarketHours, logger *applogger.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		cron:      cron.New(),
		evaluator: evaluator,
		logger:    logger,
		spec:      spec,
		hours:     hours,
	}
}

// Start registers the cron entry and starts the scheduler.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		now := time.Now()
		if !s.hours.Contains(now) {
			s.logger.Debug("scheduled refresh skipped outside market hours")
			return
		}
		if _, err := s.evaluator.Evaluate(ctx); err != nil {
			s.logger.Error("scheduled refresh failed", applogger.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("refresh scheduler started", applogger.String("spec", s.spec))
	return nil
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
}
