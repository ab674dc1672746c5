package usecase

import (
	"context"
	"sync"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	domsvc "PortPulse/internal/domain/service"
	applogger "PortPulse/pkg/logger"
)

// lookbackBars covers the longest indicator warm-up (50-bar SMA) with room
// for the pattern window.
const lookbackBars = 120

// PortfolioEvaluator runs one full evaluation cycle: market health first,
// then every active position fanned out against series fetched at the same
// logical now. One ticker's failure is recorded per-ticker and never aborts
// the others.
type PortfolioEvaluator struct {
	bars      domrepo.BarSource
	positions domrepo.PositionStore
	snapshots domrepo.SnapshotStore
	alerts    domrepo.AlertSink
	market    *MarketHealthUseCase
	engine    domsvc.IndicatorEngine
	detector  domsvc.PatternDetector
	scorer    domsvc.PositionScorer
	metrics   domrepo.Metrics
	logger    *applogger.Logger

	timeout     time.Duration
	concurrency int

	mu   sync.Mutex
	last *models.PortfolioReport
}

func NewPortfolioEvaluator(
	bars domrepo.BarSource,
	positions domrepo.PositionStore,
	snapshots domrepo.SnapshotStore,
	alerts domrepo.AlertSink,
	market *MarketHealthUseCase,
	engine domsvc.IndicatorEngine,
	detector domsvc.PatternDetector,
	scorer domsvc.PositionScorer,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...EvaluatorOption,
) *PortfolioEvaluator {
	uc := &PortfolioEvaluator{
		bars:        bars,
		positions:   positions,
		snapshots:   snapshots,
		alerts:      alerts,
		market:      market,
		engine:      engine,
		detector:    detector,
		scorer:      scorer,
		metrics:     metrics,
		logger:      logger,
		timeout:     60 * time.Second,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type EvaluatorOption func(*PortfolioEvaluator)

func WithEvalTimeout(d time.Duration) EvaluatorOption {
	return func(uc *PortfolioEvaluator) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

func WithEvalConcurrency(n int) EvaluatorOption {
	return func(uc *PortfolioEvaluator) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// Last returns the most recent report, nil before the first cycle.
func (uc *PortfolioEvaluator) Last() *models.PortfolioReport {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.last
}

// Evaluate runs one synchronous cycle and returns the report.
func (uc *PortfolioEvaluator) Evaluate(ctx context.Context) (*models.PortfolioReport, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	report := &models.PortfolioReport{
		EvaluatedAt: start,
		Errors:      map[string]string{},
	}

	health, err := uc.market.Health(ctx)
	if err != nil {
		// Positions are still scored; market-dependent checks are skipped.
		report.Errors["market"] = err.Error()
		uc.logger.Warn("market health unavailable", applogger.Error(err))
	} else {
		report.Market = health
	}

	active, err := uc.positions.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, uc.concurrency)
	)
	for _, pos := range active {
		wg.Add(1)
		go func(pos *models.Position) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			a, evalErr := uc.evaluateOne(ctx, pos, report.Market)
			mu.Lock()
			report.Positions = append(report.Positions, a)
			if evalErr != nil {
				report.Errors[pos.Ticker] = evalErr.Error()
			}
			mu.Unlock()
		}(pos)
	}
	wg.Wait()

	if len(report.Errors) == 0 {
		report.Errors = nil
	}

	uc.archive(ctx, report)
	uc.publishAlerts(ctx, report)

	uc.mu.Lock()
	uc.last = report
	uc.mu.Unlock()

	uc.metrics.RecordCycle(len(report.Positions), time.Since(start).Seconds())
	uc.logger.Info("evaluation cycle complete",
		applogger.Int("positions", len(report.Positions)),
		applogger.Int("errors", len(report.Errors)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return report, nil
}

// evaluateOne fetches the series and scores one position. On fetch failure
// the returned analysis carries the data-unavailable marker instead of
// scores.
func (uc *PortfolioEvaluator) evaluateOne(ctx context.Context, pos *models.Position, market *models.MarketHealth) (*models.PositionAnalysis, error) {
	start := time.Now()
	bars, err := uc.bars.FetchSeries(ctx, pos.Ticker, lookbackBars)
	if err != nil || len(bars) == 0 {
		uc.metrics.RecordError("fetch")
		a := &models.PositionAnalysis{
			Ticker:          pos.Ticker,
			PositionID:      pos.ID,
			Direction:       pos.Direction,
			EvaluatedAt:     time.Now(),
			DataUnavailable: true,
		}
		if err != nil {
			a.DataError = err.Error()
		} else {
			a.DataError = "empty series"
		}
		return a, err
	}

	latest := bars[len(bars)-1]
	in := domsvc.ScoreInput{
		Position:     pos,
		CurrentPrice: latest.Close,
		DayHigh:      latest.High,
		DayLow:       latest.Low,
		Indicators:   uc.engine.Snapshot(bars),
		Volume:       uc.engine.Volume(bars),
		Patterns:     uc.detector.Detect(bars),
		Levels:       uc.detector.Levels(bars, latest.Close),
		Market:       market,
	}
	a := uc.scorer.Score(in)

	uc.metrics.RecordTickerEval(pos.Ticker, time.Since(start).Seconds())
	uc.metrics.RecordLastPrice(pos.Ticker, latest.Close)
	return a, nil
}

// archive stores the report best-effort.
func (uc *PortfolioEvaluator) archive(ctx context.Context, r *models.PortfolioReport) {
	if uc.snapshots == nil {
		return
	}
	if err := uc.snapshots.StoreReport(ctx, r); err != nil {
		uc.metrics.RecordError("archive")
		uc.logger.Warn("snapshot archive failed", applogger.Error(err))
	}
}

// publishAlerts emits stop-loss and emergency alerts, fire-and-forget.
func (uc *PortfolioEvaluator) publishAlerts(ctx context.Context, r *models.PortfolioReport) {
	if uc.alerts == nil {
		return
	}
	for _, a := range r.Positions {
		if a.DataUnavailable {
			continue
		}
		for _, alert := range alertsFor(a, r.EvaluatedAt) {
			if err := uc.alerts.Publish(ctx, alert); err != nil {
				uc.logger.Warn("alert publish failed",
					applogger.String("kind", alert.Kind),
					applogger.String("ticker", alert.Ticker),
					applogger.Error(err),
				)
			}
		}
	}
}

func alertsFor(a *models.PositionAnalysis, at time.Time) []*models.Alert {
	var out []*models.Alert
	if a.SLRiskScore >= 100 {
		out = append(out, &models.Alert{
			Kind:     models.AlertSLBreach,
			Ticker:   a.Ticker,
			NewValue: a.CurrentPrice,
			Reason:   "price traded through the stop-loss",
			Priority: "CRITICAL",
			At:       at,
		})
	}
	if a.Emergency.Flag {
		out = append(out, &models.Alert{
			Kind:     models.AlertEmergencyExit,
			Ticker:   a.Ticker,
			NewValue: a.CurrentPrice,
			Reason:   joinReasons(a.Emergency.Reasons),
			Priority: a.Emergency.Urgency,
			At:       at,
		})
	} else if a.SLRiskScore >= 60 && a.SLRiskScore < 100 {
		out = append(out, &models.Alert{
			Kind:     models.AlertHighRisk,
			Ticker:   a.Ticker,
			NewValue: a.SLRiskScore,
			Reason:   "stop-loss risk " + a.SLRiskLabel,
			Priority: a.SLRiskLabel,
			At:       at,
		})
	}
	return out
}

func joinReasons(reasons []string) string {
	switch len(reasons) {
	case 0:
		return ""
	case 1:
		return reasons[0]
	}
	s := reasons[0]
	for _, r := range reasons[1:] {
		s += "; " + r
	}
	return s
}
