package models

import "time"

// Position direction and status values.
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"

	StatusActive   = "ACTIVE"
	StatusPending  = "PENDING"
	StatusInactive = "INACTIVE"
)

// Position is one open (or closed) trade as stored by the user. The
// evaluation pipeline never mutates a Position; it derives a
// PositionAnalysis from it.
type Position struct {
	ID          int64
	Ticker      string
	Direction   string // "LONG" | "SHORT"
	EntryPrice  float64
	Quantity    float64
	StopLoss    float64
	Target1     float64
	Target2     float64 // 0 when unset
	EntryDate   time.Time
	Status      string // "ACTIVE" | "PENDING" | "INACTIVE"
	Sector      string
	Notes       string
	RealizedPnL float64 // set once closed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sign returns +1 for LONG, -1 for SHORT.
func (p *Position) Sign() float64 {
	if p.Direction == DirectionShort {
		return -1
	}
	return 1
}

// TradeRecord is a closed trade in the history table.
type TradeRecord struct {
	ID          int64
	PositionID  int64
	Ticker      string
	Direction   string
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	PnL         float64
	PnLPct      float64
	IsWin       bool
	HoldingDays int
	EntryDate   time.Time
	ExitDate    time.Time
	ExitReason  string
}

// PerformanceStats aggregates the trade history.
type PerformanceStats struct {
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64 // percent
	AvgWin       float64
	AvgLoss      float64 // negative or zero
	ProfitFactor float64 // gross profit / gross loss, 0 when no losses
	Expectancy   float64 // expected PnL per trade
	TotalPnL     float64
	BestTrade    float64
	WorstTrade   float64
}

// PositionRisk is the capital at risk on one open position if its stop fills.
type PositionRisk struct {
	Ticker    string
	AtRisk    float64
	AtRiskPct float64 // share of total exposure
	Reward    float64 // distance to target 1 in currency
	RR        float64 // reward:risk ratio
}

// PortfolioRisk summarizes stop-loss exposure across open positions.
type PortfolioRisk struct {
	TotalAtRisk     float64
	TotalExposure   float64
	TotalAtRiskPct  float64
	RewardRiskRatio float64
	RiskRating      string // "LOW", "MODERATE", "HIGH"
	Positions       []PositionRisk
}

// SectorExposure is the share of total exposure held in one sector.
type SectorExposure struct {
	Sector    string
	Exposure  float64
	SharePct  float64
	Positions int
}

// CorrelatedPair is two held tickers whose daily returns move together.
type CorrelatedPair struct {
	TickerA     string
	TickerB     string
	Correlation float64
}

// CorrelationRisk flags portfolio concentration: positions that look
// diversified by ticker but share one underlying move.
type CorrelationRisk struct {
	Level   string // "LOW", "MEDIUM", "HIGH"
	Warning string // empty when Level is LOW
	Pairs   []CorrelatedPair
}
