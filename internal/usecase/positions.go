package usecase

import (
	"context"
	"fmt"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	"PortPulse/internal/services/scoring"
	applogger "PortPulse/pkg/logger"
)

// PositionUseCase manages the position lifecycle: create, revise stop and
// targets, close with realized P&L, delete. Revisions are validated for
// direction-consistent ordering and published as alerts.
type PositionUseCase struct {
	store  domrepo.PositionStore
	alerts domrepo.AlertSink
	logger *applogger.Logger
}

func NewPositionUseCase(store domrepo.PositionStore, alerts domrepo.AlertSink, logger *applogger.Logger) *PositionUseCase {
	return &PositionUseCase{store: store, alerts: alerts, logger: logger}
}

// List returns positions by status filter.
func (uc *PositionUseCase) List(ctx context.Context, status string) ([]*models.Position, error) {
	return uc.store.List(ctx, domrepo.NormalizeStatus(status))
}

// Get returns one position.
func (uc *PositionUseCase) Get(ctx context.Context, id int64) (*models.Position, error) {
	return uc.store.Get(ctx, id)
}

// Create validates ordering against the direction and inserts the position.
// Prices are rounded to the exchange tick.
func (uc *PositionUseCase) Create(ctx context.Context, p *models.Position) (*models.Position, error) {
	if p.Direction == "" {
		p.Direction = models.DirectionLong
	}
	p.StopLoss = scoring.RoundTick(p.StopLoss)
	p.Target1 = scoring.RoundTick(p.Target1)
	if p.Target2 > 0 {
		p.Target2 = scoring.RoundTick(p.Target2)
	}
	if err := validateOrdering(p.Direction, p.EntryPrice, p.StopLoss, p.Target1, p.Target2); err != nil {
		return nil, err
	}

	id, err := uc.store.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return uc.store.Get(ctx, id)
}

// UpdateStopLoss revises the stop, validates ordering, and publishes a
// revision alert carrying the old and new values.
func (uc *PositionUseCase) UpdateStopLoss(ctx context.Context, id int64, stop float64, reason string) (*models.Position, error) {
	p, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stop = scoring.RoundTick(stop)
	if err := validateOrdering(p.Direction, p.EntryPrice, stop, p.Target1, p.Target2); err != nil {
		return nil, err
	}
	if err := uc.store.UpdateStopLoss(ctx, id, stop); err != nil {
		return nil, err
	}

	uc.notify(ctx, &models.Alert{
		Kind:     models.AlertStopRevised,
		Ticker:   p.Ticker,
		OldValue: p.StopLoss,
		NewValue: stop,
		Reason:   reason,
		Priority: "LOW",
	})
	return uc.store.Get(ctx, id)
}

// UpdateTargets revises the targets and publishes a revision alert.
func (uc *PositionUseCase) UpdateTargets(ctx context.Context, id int64, t1, t2 float64, reason string) (*models.Position, error) {
	p, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t1 = scoring.RoundTick(t1)
	if t2 > 0 {
		t2 = scoring.RoundTick(t2)
	}
	if err := validateOrdering(p.Direction, p.EntryPrice, p.StopLoss, t1, t2); err != nil {
		return nil, err
	}
	if err := uc.store.UpdateTargets(ctx, id, t1, t2); err != nil {
		return nil, err
	}

	uc.notify(ctx, &models.Alert{
		Kind:     models.AlertTargetRevised,
		Ticker:   p.Ticker,
		OldValue: p.Target1,
		NewValue: t1,
		Reason:   reason,
		Priority: "LOW",
	})
	return uc.store.Get(ctx, id)
}

// Close realizes P&L, records the trade and publishes a closed alert.
func (uc *PositionUseCase) Close(ctx context.Context, id int64, exitPrice float64, reason string) (*models.TradeRecord, error) {
	if exitPrice <= 0 {
		return nil, fmt.Errorf("exit price must be positive")
	}
	rec, err := uc.store.ClosePosition(ctx, id, scoring.RoundTick(exitPrice), reason, time.Now())
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, &models.Alert{
		Kind:     models.AlertPositionClosed,
		Ticker:   rec.Ticker,
		OldValue: rec.EntryPrice,
		NewValue: rec.ExitPrice,
		Reason:   fmt.Sprintf("%s, pnl %.2f (%.1f%%)", reason, rec.PnL, rec.PnLPct),
		Priority: "LOW",
	})
	return rec, nil
}

// Delete removes a position without recording a trade.
func (uc *PositionUseCase) Delete(ctx context.Context, id int64) error {
	return uc.store.Delete(ctx, id)
}

// History returns recent closed trades.
func (uc *PositionUseCase) History(ctx context.Context, limit int) ([]*models.TradeRecord, error) {
	return uc.store.History(ctx, limit)
}

func (uc *PositionUseCase) notify(ctx context.Context, a *models.Alert) {
	if uc.alerts == nil {
		return
	}
	if err := uc.alerts.Publish(ctx, a); err != nil {
		uc.logger.Warn("revision alert failed",
			applogger.String("kind", a.Kind),
			applogger.String("ticker", a.Ticker),
			applogger.Error(err),
		)
	}
}

// validateOrdering checks stop/target ordering around the entry for the
// direction: a LONG needs stop < entry < target, a SHORT the mirror.
func validateOrdering(direction string, entry, stop, t1, t2 float64) error {
	if direction == models.DirectionShort {
		if stop <= entry {
			return fmt.Errorf("short stop-loss %.2f must be above entry %.2f", stop, entry)
		}
		if t1 >= entry {
			return fmt.Errorf("short target %.2f must be below entry %.2f", t1, entry)
		}
		if t2 > 0 && t2 >= t1 {
			return fmt.Errorf("short target 2 %.2f must be below target 1 %.2f", t2, t1)
		}
		return nil
	}
	if stop >= entry {
		return fmt.Errorf("stop-loss %.2f must be below entry %.2f", stop, entry)
	}
	if t1 <= entry {
		return fmt.Errorf("target %.2f must be above entry %.2f", t1, entry)
	}
	if t2 > 0 && t2 <= t1 {
		return fmt.Errorf("target 2 %.2f must be above target 1 %.2f", t2, t1)
	}
	return nil
}
