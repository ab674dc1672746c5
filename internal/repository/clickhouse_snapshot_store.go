package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	pkgch "PortPulse/pkg/clickhouse"
	applogger "PortPulse/pkg/logger"
)

// Schema for the append-only snapshot archive. MergeTree suits the
// write-once, query-by-time access pattern.
var SnapshotSchema = []string{
	"CREATE DATABASE IF NOT EXISTS portpulse",
	`CREATE TABLE IF NOT EXISTS portpulse.analysis_snapshots (
		evaluated_at  DateTime,
		ticker        String,
		position_id   Int64,
		direction     String,
		current_price Float64,
		pnl_pct       Float64,
		momentum      Float64,
		sl_risk       Float64,
		upside        Float64,
		action        String,
		emergency     UInt8,
		data_error    String
	) ENGINE=MergeTree ORDER BY (ticker, evaluated_at)`,
	`CREATE TABLE IF NOT EXISTS portpulse.market_health (
		evaluated_at DateTime,
		index_ticker String,
		index_price  Float64,
		change_pct   Float64,
		index_rsi    Float64,
		volatility   Float64,
		health_score Float64,
		status       String
	) ENGINE=MergeTree ORDER BY evaluated_at`,
}

// CHSnapshotStore implements SnapshotStore backed by ClickHouse.
type CHSnapshotStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSnapshotStore(ch *pkgch.Client) *CHSnapshotStore {
	return &CHSnapshotStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSnapshotStore) Init(ctx context.Context) error {
	for _, stmt := range SnapshotSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("snapshot schema: %w", err)
		}
	}
	return nil
}

// StoreReport archives one evaluation cycle: a row per position analysis
// plus one market health row.
func (s *CHSnapshotStore) StoreReport(ctx context.Context, r *models.PortfolioReport) error {
	start := time.Now()
	if err := s.storePositions(ctx, r); err != nil {
		return err
	}
	if r.Market != nil {
		if err := s.storeMarket(ctx, r.Market); err != nil {
			return err
		}
	}
	if s.l != nil {
		s.l.Info("snapshot archived",
			applogger.Int("positions", len(r.Positions)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHSnapshotStore) storePositions(ctx context.Context, r *models.PortfolioReport) error {
	if len(r.Positions) == 0 {
		return nil
	}
	values := make([]string, 0, len(r.Positions))
	args := make([]interface{}, 0, len(r.Positions)*12)
	for _, a := range r.Positions {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.EvaluatedAt,
			a.Ticker,
			a.PositionID,
			a.Direction,
			a.CurrentPrice,
			a.PnLPct,
			a.MomentumScore,
			a.SLRiskScore,
			a.UpsideScore,
			a.Action,
			boolToUint8(a.Emergency.Flag),
			a.DataError,
		)
	}
	q := `INSERT INTO portpulse.analysis_snapshots
		(evaluated_at, ticker, position_id, direction, current_price, pnl_pct,
		momentum, sl_risk, upside, action, emergency, data_error)
		VALUES ` + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot insert error", applogger.Error(err))
		}
		return fmt.Errorf("store snapshots: %w", err)
	}
	return nil
}

func (s *CHSnapshotStore) storeMarket(ctx context.Context, h *models.MarketHealth) error {
	const q = `INSERT INTO portpulse.market_health
		(evaluated_at, index_ticker, index_price, change_pct, index_rsi,
		volatility, health_score, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		h.EvaluatedAt, h.IndexTicker, h.IndexPrice, h.IndexChangePct,
		h.IndexRSI, h.VolatilityValue, h.HealthScore, h.Status); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse market health insert error", applogger.Error(err))
		}
		return fmt.Errorf("store market health: %w", err)
	}
	return nil
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSnapshotStore) Close() error {
	return nil // managed by pkg client
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.SnapshotStore = (*CHSnapshotStore)(nil)
