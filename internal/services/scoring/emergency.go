package scoring

import (
	"fmt"

	"PortPulse/internal/domain/models"
	domsvc "PortPulse/internal/domain/service"
)

// emergency evaluates the exit conditions. Each satisfied condition appends
// one reason; the flag is the OR of all of them and urgency follows the
// number of triggered conditions.
func (s *Scorer) emergency(in domsvc.ScoreInput, a *models.PositionAnalysis) models.EmergencyState {
	var st models.EmergencyState
	pos := in.Position

	if in.Market != nil && in.Market.Status == models.MarketBearish && a.PnLPct < -2 {
		st.Reasons = append(st.Reasons,
			fmt.Sprintf("market is bearish and position is down %.1f%%", a.PnLPct))
	}

	if gapBeyondStop(pos, in.DayHigh, in.DayLow) {
		st.Reasons = append(st.Reasons,
			fmt.Sprintf("today's range gapped beyond stop-loss %.2f", pos.StopLoss))
	}

	if in.Market != nil && in.Market.VolatilityValue > s.VolatilitySpike && a.SLRiskScore >= 60 {
		st.Reasons = append(st.Reasons,
			fmt.Sprintf("volatility index %.1f spiked with stop-loss risk %.0f", in.Market.VolatilityValue, a.SLRiskScore))
	}

	if in.Volume.Ratio > s.VolumeSpike && adverseVolume(in.Volume, pos.Direction) {
		st.Reasons = append(st.Reasons,
			fmt.Sprintf("volume spike %.1fx against the position", in.Volume.Ratio))
	}

	if levelBreak(in.Levels, pos, in.DayHigh, in.DayLow) {
		st.Reasons = append(st.Reasons, "price broke the nearest strong level against the position")
	}

	st.Flag = len(st.Reasons) > 0
	st.Urgency = urgencyLabel(len(st.Reasons))
	return st
}

// gapBeyondStop reports whether today's range traded through the stop with
// margin: a LONG is gapped when the day low undercuts 98% of the stop, a
// SHORT when the day high clears 102% of it.
func gapBeyondStop(pos *models.Position, dayHigh, dayLow float64) bool {
	if pos.StopLoss <= 0 {
		return false
	}
	if pos.Direction == models.DirectionShort {
		return dayHigh > 0 && dayHigh > pos.StopLoss*1.02
	}
	return dayLow > 0 && dayLow < pos.StopLoss*0.98
}

// levelBreak reports an intraday trade through the nearest strong
// protective level: the day low under support for a LONG, the day high over
// resistance for a SHORT.
func levelBreak(levels models.LevelSet, pos *models.Position, dayHigh, dayLow float64) bool {
	if pos.Direction == models.DirectionShort {
		return levels.Resistance != nil && levels.Resistance.Strength == models.StrengthStrong &&
			dayHigh > levels.Resistance.Price*1.005
	}
	return levels.Support != nil && levels.Support.Strength == models.StrengthStrong &&
		dayLow > 0 && dayLow < levels.Support.Price*0.995
}

func urgencyLabel(triggered int) string {
	switch {
	case triggered >= 3:
		return "CRITICAL"
	case triggered >= 1:
		return "HIGH"
	default:
		return "LOW"
	}
}
