package models

import "time"

// Market status bands over the 0-100 health score.
const (
	MarketBullish = "BULLISH"
	MarketNeutral = "NEUTRAL"
	MarketWeak    = "WEAK"
	MarketBearish = "BEARISH"
)

// MarketHealth is the benchmark + volatility reduction to one score.
// SLAdjustment is a multiplier the caller applies to stop-loss alert
// thresholds: <1 tightens in poor markets, >1 relaxes in strong ones.
type MarketHealth struct {
	EvaluatedAt     time.Time
	IndexTicker     string
	IndexPrice      float64
	IndexChangePct  float64
	IndexRSI        float64
	VolatilityValue float64
	HealthScore     float64
	Status          string // "BULLISH" | "NEUTRAL" | "WEAK" | "BEARISH"
	SLAdjustment    float64
	SLAdvice        string // "AGGRESSIVE", "NORMAL", "TIGHTEN"
}
