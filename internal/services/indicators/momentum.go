package indicators

import "PortPulse/internal/domain/models"

// Momentum score weight split, used identically by position scoring and
// market health so the numbers stay comparable:
//
//	base 50
//	RSI:  (rsi-50)/50 * 20          -> [-20, +20]
//	MACD: hist sign +-20, line sign +-20 -> [-40, +40]
//	MAs:  price vs SMA20 +-15, SMA20 vs SMA50 +-15, price vs SMA50 +-10
//
// Undefined inputs contribute zero, so a short series degrades to a
// reduced-confidence score instead of failing. The sum is clamped to
// [0, 100].

// Trend labels over the momentum score.
const (
	TrendStrongBullish = "STRONG BULLISH"
	TrendBullish       = "BULLISH"
	TrendNeutral       = "NEUTRAL"
	TrendBearish       = "BEARISH"
	TrendStrongBearish = "STRONG BEARISH"
)

// Momentum computes the 0-100 momentum score for a snapshot at price.
func Momentum(snap models.IndicatorSnapshot, price float64) float64 {
	score := 50.0

	if snap.RSIOK {
		score += Clamp((snap.RSI-50)/50*20, -20, 20)
	}
	if snap.MACDOK {
		score += signTerm(snap.MACDHist, 20)
		score += signTerm(snap.MACDLine, 20)
	}
	if snap.SMA20OK {
		score += signTerm(price-snap.SMA20, 15)
		if snap.SMA50OK {
			score += signTerm(snap.SMA20-snap.SMA50, 15)
		}
	}
	if snap.SMA50OK {
		score += signTerm(price-snap.SMA50, 10)
	}
	return Clamp(score, 0, 100)
}

func signTerm(v, weight float64) float64 {
	switch {
	case v > 0:
		return weight
	case v < 0:
		return -weight
	default:
		return 0
	}
}

// TrendLabel maps a momentum score to its trend band.
func TrendLabel(score float64) string {
	switch {
	case score >= 70:
		return TrendStrongBullish
	case score >= 55:
		return TrendBullish
	case score >= 45:
		return TrendNeutral
	case score >= 30:
		return TrendBearish
	default:
		return TrendStrongBearish
	}
}
