package models

import "time"

// Pattern bias and strength values.
const (
	BiasBullish = "BULLISH"
	BiasBearish = "BEARISH"

	StrengthWeak     = "WEAK"
	StrengthModerate = "MODERATE"
	StrengthStrong   = "STRONG"
)

// Pattern is one detected chart or candlestick pattern. Zero or more per
// evaluation; absence of patterns is not an error.
type Pattern struct {
	Name     string // "DOUBLE_TOP", "DOUBLE_BOTTOM", "BULLISH_ENGULFING", ...
	Bias     string // "BULLISH" | "BEARISH"
	Strength string // "WEAK" | "MODERATE" | "STRONG"
}

// Level is one clustered support or resistance level.
type Level struct {
	Price       float64
	Kind        string // "SUPPORT" | "RESISTANCE"
	Strength    string // "WEAK" | "MODERATE" | "STRONG"
	PivotCount  int
	VolumeShare float64 // share of window volume traded near the level
	DistancePct float64 // percent distance from current price, signed
}

// LevelSet reports the nearest support below and resistance above price.
type LevelSet struct {
	Support    *Level
	Resistance *Level
	All        []Level
}

// EmergencyState is the OR of the exit conditions, with one reason per
// satisfied condition.
type EmergencyState struct {
	Flag    bool
	Reasons []string
	Urgency string // "LOW", "HIGH", "CRITICAL"
}

// PositionAnalysis is the per-position evaluation result. Ephemeral and
// recomputed each cycle; the snapshot archive keeps copies, the pipeline
// never reads them back.
type PositionAnalysis struct {
	Ticker          string
	PositionID      int64
	Direction       string
	EvaluatedAt     time.Time
	CurrentPrice    float64
	UnrealizedPnL   float64
	PnLPct          float64
	Indicators      IndicatorSnapshot
	Volume          VolumeSignal
	Patterns        []Pattern
	Levels          LevelSet
	MomentumScore   float64
	Trend           string // "STRONG BULLISH" .. "STRONG BEARISH"
	SLRiskScore     float64
	SLRiskLabel     string // "CRITICAL", "HIGH", "MEDIUM", "LOW"
	UpsideScore     float64
	Emergency       EmergencyState
	Action          string // "EXIT NOW", "CONSIDER EXIT", "HOLD/ADD", "WATCH CLOSELY", "MONITOR"
	DataUnavailable bool
	DataError       string
}

// PortfolioReport is one full evaluation cycle: every active position plus
// the market health computed from data fetched at the same logical now.
// Errors maps ticker -> fetch/evaluation failure; a failed ticker still
// appears in Positions with DataUnavailable set.
type PortfolioReport struct {
	EvaluatedAt time.Time
	Positions   []*PositionAnalysis
	Market      *MarketHealth
	Errors      map[string]string
}
