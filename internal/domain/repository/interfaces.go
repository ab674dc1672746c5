package repository

import (
	"context"
	"time"

	"PortPulse/internal/domain/models"
)

// BarSource supplies ordered OHLCV history, oldest first. Implementations
// must tolerate partial upstream data: return as much history as exists or
// an explicit error, never a padded series.
type BarSource interface {
	FetchSeries(ctx context.Context, ticker string, lookback int) ([]models.PriceBar, error)
	LatestQuote(ctx context.Context, ticker string) (float64, error)
}

// QuoteStream is a live last-price feed. Prices from the stream are for
// display between refresh cycles only; the indicator pipeline always works
// from fetched bar series.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, tickers []string) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PositionStore persists positions and the closed-trade history.
type PositionStore interface {
	Init(ctx context.Context) error // ensure tables
	List(ctx context.Context, status string) ([]*models.Position, error)
	Get(ctx context.Context, id int64) (*models.Position, error)
	Create(ctx context.Context, p *models.Position) (int64, error)
	UpdateStopLoss(ctx context.Context, id int64, stop float64) error
	UpdateTargets(ctx context.Context, id int64, t1, t2 float64) error
	ClosePosition(ctx context.Context, id int64, exitPrice float64, exitReason string, at time.Time) (*models.TradeRecord, error)
	Delete(ctx context.Context, id int64) error
	History(ctx context.Context, limit int) ([]*models.TradeRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// SnapshotStore archives evaluation results, append-only. Best effort: the
// pipeline logs archive failures and moves on.
type SnapshotStore interface {
	Init(ctx context.Context) error
	StoreReport(ctx context.Context, r *models.PortfolioReport) error
	Health(ctx context.Context) error
	Close() error
}

// AlertSink accepts structured alerts, fire-and-forget.
type AlertSink interface {
	Publish(ctx context.Context, a *models.Alert) error
	Close() error
}

// Metrics abstracts evaluation metric recording.
type Metrics interface {
	RecordCycle(positions int, seconds float64)
	RecordTickerEval(ticker string, seconds float64)
	RecordFetch(kind string, hit bool)
	RecordAlert(kind string)
	RecordError(kind string)
	RecordLastPrice(ticker string, price float64)
}
