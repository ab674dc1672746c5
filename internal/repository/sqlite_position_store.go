package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"PortPulse/internal/domain/models"
	domrepo "PortPulse/internal/domain/repository"
	applogger "PortPulse/pkg/logger"

	_ "modernc.org/sqlite"
)

// ErrPositionNotFound is returned for lookups and updates on unknown ids.
var ErrPositionNotFound = errors.New("position not found")

// SQLitePositionStore implements PositionStore backed by an embedded SQLite
// database.
type SQLitePositionStore struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewSQLitePositionStore opens (or creates) the database at dbPath.
func NewSQLitePositionStore(dbPath string, l *applogger.Logger) (*SQLitePositionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode for concurrent reads while the refresh cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &SQLitePositionStore{db: db, l: l}, nil
}

// Init creates the positions and trade history tables.
func (s *SQLitePositionStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker       TEXT NOT NULL,
			direction    TEXT NOT NULL DEFAULT 'LONG',
			entry_price  REAL NOT NULL,
			quantity     REAL NOT NULL,
			stop_loss    REAL NOT NULL,
			target_1     REAL NOT NULL,
			target_2     REAL NOT NULL DEFAULT 0,
			entry_date   INTEGER NOT NULL,
			status       TEXT NOT NULL DEFAULT 'ACTIVE',
			sector       TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			realized_pnl REAL NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status)`,

		`CREATE TABLE IF NOT EXISTS trade_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			position_id  INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			direction    TEXT NOT NULL,
			entry_price  REAL NOT NULL,
			exit_price   REAL NOT NULL,
			quantity     REAL NOT NULL,
			pnl          REAL NOT NULL,
			pnl_pct      REAL NOT NULL,
			is_win       INTEGER NOT NULL,
			holding_days INTEGER NOT NULL,
			entry_date   INTEGER NOT NULL,
			exit_date    INTEGER NOT NULL,
			exit_reason  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_exit ON trade_history(exit_date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const positionColumns = `id, ticker, direction, entry_price, quantity, stop_loss,
	target_1, target_2, entry_date, status, sector, notes, realized_pnl,
	created_at, updated_at`

// List returns positions filtered by status, newest first. StatusAll
// returns everything.
func (s *SQLitePositionStore) List(ctx context.Context, status string) ([]*models.Position, error) {
	q := "SELECT " + positionColumns + " FROM positions"
	var args []any
	if status != "" && status != domrepo.StatusAll {
		q += " WHERE status = ?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one position by id.
func (s *SQLitePositionStore) Get(ctx context.Context, id int64) (*models.Position, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE id = ?", id)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new position and returns its id.
func (s *SQLitePositionStore) Create(ctx context.Context, p *models.Position) (int64, error) {
	now := time.Now()
	if p.EntryDate.IsZero() {
		p.EntryDate = now
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (ticker, direction, entry_price, quantity, stop_loss,
			target_1, target_2, entry_date, status, sector, notes, realized_pnl,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		p.Ticker, p.Direction, p.EntryPrice, p.Quantity, p.StopLoss,
		p.Target1, p.Target2, p.EntryDate.Unix(), p.Status, p.Sector, p.Notes,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("create position: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create position id: %w", err)
	}
	if s.l != nil {
		s.l.Info("position created",
			applogger.Int64("id", id),
			applogger.String("ticker", p.Ticker),
			applogger.String("direction", p.Direction),
		)
	}
	return id, nil
}

// UpdateStopLoss revises the stop on an open position.
func (s *SQLitePositionStore) UpdateStopLoss(ctx context.Context, id int64, stop float64) error {
	return s.update(ctx, id,
		"UPDATE positions SET stop_loss = ?, updated_at = ? WHERE id = ?",
		stop, time.Now().Unix(), id)
}

// UpdateTargets revises targets on an open position.
func (s *SQLitePositionStore) UpdateTargets(ctx context.Context, id int64, t1, t2 float64) error {
	return s.update(ctx, id,
		"UPDATE positions SET target_1 = ?, target_2 = ?, updated_at = ? WHERE id = ?",
		t1, t2, time.Now().Unix(), id)
}

func (s *SQLitePositionStore) update(ctx context.Context, id int64, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update position %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update position %d: %w", id, err)
	}
	if n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

// ClosePosition computes realized P&L, inserts the trade record and marks
// the position INACTIVE in one transaction.
func (s *SQLitePositionStore) ClosePosition(ctx context.Context, id int64, exitPrice float64, exitReason string, at time.Time) (*models.TradeRecord, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusInactive {
		return nil, fmt.Errorf("position %d already closed", id)
	}

	pnl := (exitPrice - p.EntryPrice) * p.Quantity * p.Sign()
	var pnlPct float64
	if p.EntryPrice > 0 {
		pnlPct = (exitPrice - p.EntryPrice) / p.EntryPrice * 100 * p.Sign()
	}
	holding := int(at.Sub(p.EntryDate).Hours() / 24)
	if holding < 0 {
		holding = 0
	}
	rec := &models.TradeRecord{
		PositionID:  id,
		Ticker:      p.Ticker,
		Direction:   p.Direction,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   exitPrice,
		Quantity:    p.Quantity,
		PnL:         pnl,
		PnLPct:      pnlPct,
		IsWin:       pnl > 0,
		HoldingDays: holding,
		EntryDate:   p.EntryDate,
		ExitDate:    at,
		ExitReason:  exitReason,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("close position %d: %w", id, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO trade_history (position_id, ticker, direction, entry_price,
			exit_price, quantity, pnl, pnl_pct, is_win, holding_days,
			entry_date, exit_date, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PositionID, rec.Ticker, rec.Direction, rec.EntryPrice,
		rec.ExitPrice, rec.Quantity, rec.PnL, rec.PnLPct, boolToInt(rec.IsWin),
		rec.HoldingDays, rec.EntryDate.Unix(), rec.ExitDate.Unix(), rec.ExitReason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trade %d: %w", id, err)
	}
	rec.ID, _ = res.LastInsertId()

	if _, err := tx.ExecContext(ctx,
		"UPDATE positions SET status = ?, realized_pnl = ?, updated_at = ? WHERE id = ?",
		models.StatusInactive, pnl, at.Unix(), id); err != nil {
		return nil, fmt.Errorf("deactivate position %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("close position %d: %w", id, err)
	}

	if s.l != nil {
		s.l.Info("position closed",
			applogger.Int64("id", id),
			applogger.String("ticker", p.Ticker),
			applogger.Float64("pnl", pnl),
			applogger.Int("holding_days", holding),
		)
	}
	return rec, nil
}

// Delete removes a position without recording a trade.
func (s *SQLitePositionStore) Delete(ctx context.Context, id int64) error {
	return s.update(ctx, id, "DELETE FROM positions WHERE id = ?", id)
}

// History returns the most recent closed trades, newest first.
func (s *SQLitePositionStore) History(ctx context.Context, limit int) ([]*models.TradeRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position_id, ticker, direction, entry_price, exit_price,
			quantity, pnl, pnl_pct, is_win, holding_days, entry_date, exit_date,
			exit_reason
		FROM trade_history ORDER BY exit_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []*models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		var isWin int
		var entry, exit int64
		if err := rows.Scan(&r.ID, &r.PositionID, &r.Ticker, &r.Direction,
			&r.EntryPrice, &r.ExitPrice, &r.Quantity, &r.PnL, &r.PnLPct,
			&isWin, &r.HoldingDays, &entry, &exit, &r.ExitReason); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		r.IsWin = isWin != 0
		r.EntryDate = time.Unix(entry, 0)
		r.ExitDate = time.Unix(exit, 0)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLitePositionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLitePositionStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*models.Position, error) {
	var p models.Position
	var entry, created, updated int64
	if err := row.Scan(&p.ID, &p.Ticker, &p.Direction, &p.EntryPrice,
		&p.Quantity, &p.StopLoss, &p.Target1, &p.Target2, &entry, &p.Status,
		&p.Sector, &p.Notes, &p.RealizedPnL, &created, &updated); err != nil {
		return nil, err
	}
	p.EntryDate = time.Unix(entry, 0)
	p.CreatedAt = time.Unix(created, 0)
	p.UpdatedAt = time.Unix(updated, 0)
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.PositionStore = (*SQLitePositionStore)(nil)
