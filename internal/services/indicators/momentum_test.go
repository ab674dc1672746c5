package indicators

import (
	"testing"

	"PortPulse/internal/domain/models"
)

func TestMomentumNeutral(t *testing.T) {
	snap := models.IndicatorSnapshot{
		RSI: 50, RSIOK: true,
		MACDLine: 0, MACDSignal: 0, MACDHist: 0, MACDOK: true,
		SMA20: 100, SMA20OK: true,
		SMA50: 100, SMA50OK: true,
	}
	got := Momentum(snap, 100)
	if got != 50 {
		t.Fatalf("neutral snapshot momentum = %v, want 50", got)
	}
	if TrendLabel(got) != TrendNeutral {
		t.Fatalf("label = %s, want %s", TrendLabel(got), TrendNeutral)
	}
}

func TestMomentumSaturation(t *testing.T) {
	bull := models.IndicatorSnapshot{
		RSI: 80, RSIOK: true,
		MACDLine: 2, MACDHist: 1, MACDOK: true,
		SMA20: 95, SMA20OK: true,
		SMA50: 90, SMA50OK: true,
	}
	if got := Momentum(bull, 100); got != 100 {
		t.Errorf("strong bull momentum = %v, want 100", got)
	}

	bear := models.IndicatorSnapshot{
		RSI: 20, RSIOK: true,
		MACDLine: -2, MACDHist: -1, MACDOK: true,
		SMA20: 105, SMA20OK: true,
		SMA50: 110, SMA50OK: true,
	}
	if got := Momentum(bear, 100); got != 0 {
		t.Errorf("strong bear momentum = %v, want 0", got)
	}
}

func TestMomentumUndefinedInputs(t *testing.T) {
	if got := Momentum(models.IndicatorSnapshot{}, 100); got != 50 {
		t.Fatalf("empty snapshot momentum = %v, want 50", got)
	}
}

func TestMomentumPartialSnapshot(t *testing.T) {
	// Only RSI available: score moves but stays near the base.
	snap := models.IndicatorSnapshot{RSI: 75, RSIOK: true}
	got := Momentum(snap, 100)
	if got != 60 {
		t.Fatalf("RSI-only momentum = %v, want 60", got)
	}
}

func TestTrendLabelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{85, TrendStrongBullish},
		{70, TrendStrongBullish},
		{60, TrendBullish},
		{55, TrendBullish},
		{50, TrendNeutral},
		{45, TrendNeutral},
		{40, TrendBearish},
		{30, TrendBearish},
		{10, TrendStrongBearish},
	}
	for _, c := range cases {
		if got := TrendLabel(c.score); got != c.want {
			t.Errorf("TrendLabel(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}
