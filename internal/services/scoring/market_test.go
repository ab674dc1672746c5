package scoring

import (
	"testing"

	"PortPulse/internal/domain/models"
)

func indexBars(n int, start, step float64) []models.PriceBar {
	out := make([]models.PriceBar, n)
	for i := range out {
		c := start + step*float64(i)
		out[i] = models.PriceBar{Open: c - step/2, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return out
}

func TestMarketHealthBullish(t *testing.T) {
	m := NewMarketScorer("SPY")
	vol := []models.PriceBar{{Close: 12}}

	h := m.Health(indexBars(120, 400, 1), vol)
	if h.Status != models.MarketBullish {
		t.Fatalf("uptrend status = %s (score %v), want %s", h.Status, h.HealthScore, models.MarketBullish)
	}
	if h.SLAdjustment != 1.05 || h.SLAdvice != "AGGRESSIVE" {
		t.Errorf("adjustment = %v/%s, want 1.05/AGGRESSIVE", h.SLAdjustment, h.SLAdvice)
	}
	if h.VolatilityValue != 12 {
		t.Errorf("volatility = %v, want 12", h.VolatilityValue)
	}
}

func TestMarketHealthBearish(t *testing.T) {
	m := NewMarketScorer("SPY")
	vol := []models.PriceBar{{Close: 32}}

	h := m.Health(indexBars(120, 600, -1), vol)
	if h.Status != models.MarketBearish {
		t.Fatalf("downtrend status = %s (score %v), want %s", h.Status, h.HealthScore, models.MarketBearish)
	}
	if h.SLAdjustment != 0.95 || h.SLAdvice != "TIGHTEN" {
		t.Errorf("adjustment = %v/%s, want 0.95/TIGHTEN", h.SLAdjustment, h.SLAdvice)
	}
}

func TestMarketHealthEmptyIndex(t *testing.T) {
	m := NewMarketScorer("SPY")
	h := m.Health(nil, nil)
	if h.HealthScore != 50 || h.Status != models.MarketNeutral {
		t.Fatalf("empty index health = %v/%s, want 50/%s", h.HealthScore, h.Status, models.MarketNeutral)
	}
	if h.SLAdjustment != 1 {
		t.Errorf("adjustment = %v, want 1", h.SLAdjustment)
	}
}

func TestMarketHealthMissingVolatility(t *testing.T) {
	m := NewMarketScorer("SPY")
	h := m.Health(indexBars(120, 400, 1), nil)
	if h.VolatilityValue != 0 {
		t.Errorf("volatility = %v, want 0", h.VolatilityValue)
	}
	if h.Status != models.MarketBullish {
		t.Errorf("status without volatility = %s, want %s", h.Status, models.MarketBullish)
	}
}

func TestMarketStatusBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{90, models.MarketBullish},
		{70, models.MarketBullish},
		{60, models.MarketNeutral},
		{50, models.MarketNeutral},
		{40, models.MarketWeak},
		{30, models.MarketWeak},
		{20, models.MarketBearish},
	}
	for _, c := range cases {
		if got := marketStatus(c.score); got != c.want {
			t.Errorf("marketStatus(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestSLAdjustmentByStatus(t *testing.T) {
	cases := []struct {
		status string
		mult   float64
		advice string
	}{
		{models.MarketBullish, 1.05, "AGGRESSIVE"},
		{models.MarketNeutral, 1, "NORMAL"},
		{models.MarketWeak, 1, "NORMAL"},
		{models.MarketBearish, 0.95, "TIGHTEN"},
	}
	for _, c := range cases {
		mult, advice := slAdjustment(c.status)
		if mult != c.mult || advice != c.advice {
			t.Errorf("slAdjustment(%s) = %v/%s, want %v/%s", c.status, mult, advice, c.mult, c.advice)
		}
	}
}
