package patterns

import (
	"testing"

	"PortPulse/internal/domain/models"
)

// baseBars returns n quiet bars that produce no pivots on their own.
func baseBars(n int) []models.PriceBar {
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{Open: 100.5, High: 101, Low: 100, Close: 100.5, Volume: 1000}
	}
	return out
}

func hasPattern(patterns []models.Pattern, name string) (models.Pattern, bool) {
	for _, p := range patterns {
		if p.Name == name {
			return p, true
		}
	}
	return models.Pattern{}, false
}

func TestDetectDoubleTop(t *testing.T) {
	bars := baseBars(20)
	bars[5].High = 110
	bars[14].High = 110.5

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), DoubleTop)
	if !ok {
		t.Fatalf("double top not detected")
	}
	if got.Bias != models.BiasBearish {
		t.Errorf("bias = %s, want %s", got.Bias, models.BiasBearish)
	}
	if got.Strength != models.StrengthStrong {
		t.Errorf("strength = %s, want %s for 0.45%% peak spread", got.Strength, models.StrengthStrong)
	}
}

func TestDetectDoubleTopNeedsPullback(t *testing.T) {
	bars := baseBars(20)
	bars[5].High = 110
	bars[14].High = 110.5
	// Price still at the peaks: no confirmation.
	bars[19].Close = 110

	d := NewDetector()
	if _, ok := hasPattern(d.Detect(bars), DoubleTop); ok {
		t.Fatalf("double top confirmed without a pullback")
	}
}

func TestDetectDoubleBottom(t *testing.T) {
	bars := baseBars(20)
	bars[5].Low = 90
	bars[14].Low = 90.3

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), DoubleBottom)
	if !ok {
		t.Fatalf("double bottom not detected")
	}
	if got.Bias != models.BiasBullish {
		t.Errorf("bias = %s, want %s", got.Bias, models.BiasBullish)
	}
}

func TestDetectBullishEngulfing(t *testing.T) {
	bars := baseBars(10)
	bars[8] = models.PriceBar{Open: 101, High: 101.2, Low: 99.8, Close: 100, Volume: 1000}
	bars[9] = models.PriceBar{Open: 99.9, High: 101.8, Low: 99.7, Close: 101.5, Volume: 1500}

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), BullishEngulfing)
	if !ok {
		t.Fatalf("bullish engulfing not detected")
	}
	if got.Strength != models.StrengthModerate {
		t.Errorf("strength = %s, want %s for 1.6x body", got.Strength, models.StrengthModerate)
	}
}

func TestDetectBearishEngulfing(t *testing.T) {
	bars := baseBars(10)
	bars[8] = models.PriceBar{Open: 100, High: 101.2, Low: 99.8, Close: 101, Volume: 1000}
	bars[9] = models.PriceBar{Open: 101.1, High: 101.3, Low: 98.5, Close: 98.8, Volume: 1500}

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), BearishEngulfing)
	if !ok {
		t.Fatalf("bearish engulfing not detected")
	}
	if got.Strength != models.StrengthStrong {
		t.Errorf("strength = %s, want %s for 2.3x body", got.Strength, models.StrengthStrong)
	}
}

func TestDetectAscendingTriangle(t *testing.T) {
	bars := baseBars(30)
	bars[4].High = 105
	bars[20].High = 105.2
	bars[8].Low = 95
	bars[14].Low = 97
	bars[26].Low = 99
	// Keep the last close above the pullback threshold so the twin peaks do
	// not read as a double top.
	bars[29] = models.PriceBar{Open: 104.5, High: 104.6, Low: 104.4, Close: 104.5, Volume: 1000}

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), AscendingTriangle)
	if !ok {
		t.Fatalf("ascending triangle not detected")
	}
	if got.Bias != models.BiasBullish {
		t.Errorf("bias = %s, want %s", got.Bias, models.BiasBullish)
	}
	if got.Strength != models.StrengthModerate {
		t.Errorf("strength = %s, want %s for 5 pivots", got.Strength, models.StrengthModerate)
	}
}

func TestDetectDescendingTriangle(t *testing.T) {
	bars := baseBars(30)
	bars[8].Low = 95
	bars[20].Low = 95.1
	bars[4].High = 109
	bars[14].High = 107
	bars[26].High = 105

	d := NewDetector()
	got, ok := hasPattern(d.Detect(bars), DescendingTriangle)
	if !ok {
		t.Fatalf("descending triangle not detected")
	}
	if got.Bias != models.BiasBearish {
		t.Errorf("bias = %s, want %s", got.Bias, models.BiasBearish)
	}
}

func TestDetectShortWindow(t *testing.T) {
	d := NewDetector()
	if got := d.Detect(baseBars(5)); len(got) != 0 {
		t.Fatalf("patterns from a 5-bar window: %v", got)
	}
}

func TestDetectQuietSeries(t *testing.T) {
	d := NewDetector()
	if got := d.Detect(baseBars(40)); len(got) != 0 {
		t.Fatalf("patterns from a flat series: %v", got)
	}
}
