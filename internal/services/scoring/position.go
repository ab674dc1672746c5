package scoring

import (
	"time"

	"PortPulse/internal/domain/models"
	domsvc "PortPulse/internal/domain/service"
	"PortPulse/internal/services/indicators"
)

// SL risk labels over the 0-100 risk score.
const (
	RiskCritical = "CRITICAL"
	RiskHigh     = "HIGH"
	RiskMedium   = "MEDIUM"
	RiskLow      = "LOW"
)

// Scorer turns a position plus its indicator/pattern context into a full
// analysis. Stateless; thresholds are fixed at construction.
type Scorer struct {
	VolatilitySpike float64 // volatility index level treated as a spike
	VolumeSpike     float64 // volume ratio treated as a spike
}

func NewScorer() *Scorer {
	return &Scorer{VolatilitySpike: 25, VolumeSpike: 2}
}

// Score computes P&L, momentum, stop-loss risk, upside, emergency state and
// the recommended action for one position. All scores are clamped to
// [0, 100].
func (s *Scorer) Score(in domsvc.ScoreInput) *models.PositionAnalysis {
	pos := in.Position
	a := &models.PositionAnalysis{
		Ticker:       pos.Ticker,
		PositionID:   pos.ID,
		Direction:    pos.Direction,
		EvaluatedAt:  time.Now(),
		CurrentPrice: in.CurrentPrice,
		Indicators:   in.Indicators,
		Volume:       in.Volume,
		Patterns:     in.Patterns,
		Levels:       in.Levels,
	}

	a.UnrealizedPnL = (in.CurrentPrice - pos.EntryPrice) * pos.Quantity * pos.Sign()
	if pos.EntryPrice > 0 {
		a.PnLPct = (in.CurrentPrice - pos.EntryPrice) / pos.EntryPrice * 100 * pos.Sign()
	}

	a.MomentumScore = indicators.Momentum(in.Indicators, in.CurrentPrice)
	a.Trend = indicators.TrendLabel(a.MomentumScore)

	a.SLRiskScore, a.SLRiskLabel = s.slRisk(in, a)
	a.UpsideScore = s.upside(in, a)
	a.Emergency = s.emergency(in, a)
	a.Action = RecommendAction(a)
	return a
}

// slRisk scores the danger of the stop filling. Distance to the stop sets
// the base; adverse RSI, opposing MACD trend and adverse volume stack on
// top. A breached stop is always 100.
func (s *Scorer) slRisk(in domsvc.ScoreInput, a *models.PositionAnalysis) (float64, string) {
	pos := in.Position
	if pos.StopLoss <= 0 || in.CurrentPrice <= 0 {
		return 0, RiskLow
	}

	dist := stopDistancePct(pos, in.CurrentPrice)
	if dist <= 0 {
		return 100, RiskCritical
	}

	var score float64
	switch {
	case dist < 1:
		score += 40
	case dist < 2:
		score += 30
	case dist < 3:
		score += 15
	}
	if adverseRSI(in.Indicators, pos.Direction) {
		score += 15
	}
	if opposingTrend(in.Indicators, pos.Direction) {
		score += 15
	}
	if adverseVolume(in.Volume, pos.Direction) {
		score += 15
	}

	score = indicators.Clamp(score, 0, 100)
	return score, riskLabel(score)
}

// upside scores the remaining potential toward target 1: proximity to the
// target, trend and RSI alignment with the direction, and whether a level
// blocks the way.
func (s *Scorer) upside(in domsvc.ScoreInput, a *models.PositionAnalysis) float64 {
	pos := in.Position
	if pos.Target1 <= 0 || in.CurrentPrice <= 0 {
		return 0
	}

	dist := targetDistancePct(pos, in.CurrentPrice)
	if dist <= 0 {
		return 100
	}

	var score float64
	switch {
	case dist < 1:
		score += 40
	case dist < 2:
		score += 30
	case dist < 3:
		score += 15
	}
	if alignedTrend(a.MomentumScore, pos.Direction) {
		score += 20
	}
	if roomInRSI(in.Indicators, pos.Direction) {
		score += 15
	}
	score += levelHeadroom(in.Levels, pos, in.CurrentPrice)

	return indicators.Clamp(score, 0, 100)
}

// stopDistancePct is the percent move still available before the stop
// fills. Negative or zero means the stop is already breached.
func stopDistancePct(pos *models.Position, price float64) float64 {
	if pos.Direction == models.DirectionShort {
		return (pos.StopLoss - price) / price * 100
	}
	return (price - pos.StopLoss) / price * 100
}

// targetDistancePct is the percent move remaining to target 1. Negative or
// zero means the target is reached.
func targetDistancePct(pos *models.Position, price float64) float64 {
	if pos.Direction == models.DirectionShort {
		return (price - pos.Target1) / price * 100
	}
	return (pos.Target1 - price) / price * 100
}

func adverseRSI(snap models.IndicatorSnapshot, direction string) bool {
	if !snap.RSIOK {
		return false
	}
	if direction == models.DirectionShort {
		return snap.RSI > 70
	}
	return snap.RSI < 30
}

func roomInRSI(snap models.IndicatorSnapshot, direction string) bool {
	if !snap.RSIOK {
		return false
	}
	if direction == models.DirectionShort {
		return snap.RSI > 40
	}
	return snap.RSI < 60
}

func opposingTrend(snap models.IndicatorSnapshot, direction string) bool {
	if !snap.MACDOK {
		return false
	}
	if direction == models.DirectionShort {
		return snap.MACDHist > 0
	}
	return snap.MACDHist < 0
}

func alignedTrend(momentum float64, direction string) bool {
	if direction == models.DirectionShort {
		return momentum <= 45
	}
	return momentum >= 55
}

func adverseVolume(v models.VolumeSignal, direction string) bool {
	if direction == models.DirectionShort {
		return v.Signal == "STRONG_BUYING"
	}
	return v.Signal == "STRONG_SELLING"
}

// levelHeadroom rewards a clear path to the target and penalizes a strong
// level standing in the way.
func levelHeadroom(levels models.LevelSet, pos *models.Position, price float64) float64 {
	blocking := levels.Resistance
	beyond := func(lvlPrice float64) bool { return lvlPrice >= pos.Target1 }
	if pos.Direction == models.DirectionShort {
		blocking = levels.Support
		beyond = func(lvlPrice float64) bool { return lvlPrice <= pos.Target1 }
	}
	if blocking == nil || beyond(blocking.Price) {
		return 15
	}
	if blocking.Strength == models.StrengthStrong {
		return -10
	}
	return 0
}

func riskLabel(score float64) string {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

var _ domsvc.PositionScorer = (*Scorer)(nil)
