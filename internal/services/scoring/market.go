package scoring

import (
	"time"

	"PortPulse/internal/domain/models"
	domsvc "PortPulse/internal/domain/service"
	"PortPulse/internal/services/indicators"
)

// MarketScorer reduces a benchmark index series plus a volatility index
// series to a single 0-100 health score. It runs the same indicator engine
// positions use so the numbers stay comparable.
type MarketScorer struct {
	IndexTicker string
	VolCalm     float64 // volatility at or below this is a tailwind
	VolStress   float64 // volatility above this is a strong headwind
	engine      *indicators.Engine
}

func NewMarketScorer(indexTicker string) *MarketScorer {
	return &MarketScorer{
		IndexTicker: indexTicker,
		VolCalm:     15,
		VolStress:   25,
		engine:      indicators.NewEngine(),
	}
}

// Health scores the market from 50: benchmark price vs its moving averages,
// RSI position, SMA ordering, daily change, and the volatility index level.
func (m *MarketScorer) Health(index, volatility []models.PriceBar) *models.MarketHealth {
	h := &models.MarketHealth{
		EvaluatedAt:  time.Now(),
		IndexTicker:  m.IndexTicker,
		HealthScore:  50,
		Status:       models.MarketNeutral,
		SLAdjustment: 1,
		SLAdvice:     "NORMAL",
	}
	if len(index) == 0 {
		return h
	}

	price := index[len(index)-1].Close
	h.IndexPrice = price
	if len(index) >= 2 && index[len(index)-2].Close > 0 {
		h.IndexChangePct = (price - index[len(index)-2].Close) / index[len(index)-2].Close * 100
	}

	snap := m.engine.Snapshot(index)
	score := 50.0

	if snap.SMA20OK {
		if price > snap.SMA20 {
			score += 15
		} else {
			score -= 15
		}
	}
	if snap.SMA50OK && price > snap.SMA50 {
		score += 10
	}
	if snap.SMA20OK && snap.SMA50OK && snap.SMA20 > snap.SMA50 {
		score += 10
	}
	if snap.RSIOK {
		h.IndexRSI = snap.RSI
		switch {
		case snap.RSI > 55:
			score += 15
		case snap.RSI < 35:
			score -= 15
		}
	}
	switch {
	case h.IndexChangePct >= 1:
		score += 5
	case h.IndexChangePct <= -1:
		score -= 5
	}

	if len(volatility) > 0 {
		h.VolatilityValue = volatility[len(volatility)-1].Close
		switch {
		case h.VolatilityValue > 0 && h.VolatilityValue < m.VolCalm:
			score += 10
		case h.VolatilityValue > m.VolStress:
			score -= 20
		}
	}

	h.HealthScore = indicators.Clamp(score, 0, 100)
	h.Status = marketStatus(h.HealthScore)
	h.SLAdjustment, h.SLAdvice = slAdjustment(h.Status)
	return h
}

func marketStatus(score float64) string {
	switch {
	case score >= 70:
		return models.MarketBullish
	case score >= 50:
		return models.MarketNeutral
	case score >= 30:
		return models.MarketWeak
	default:
		return models.MarketBearish
	}
}

// slAdjustment widens stop alert thresholds in bullish markets and
// tightens them in bearish ones.
func slAdjustment(status string) (float64, string) {
	switch status {
	case models.MarketBullish:
		return 1.05, "AGGRESSIVE"
	case models.MarketBearish:
		return 0.95, "TIGHTEN"
	default:
		return 1, "NORMAL"
	}
}

var _ domsvc.MarketScorer = (*MarketScorer)(nil)
