package patterns

import (
	"math"
	"sort"

	"PortPulse/internal/domain/models"
	domsvc "PortPulse/internal/domain/service"
)

// Pattern names.
const (
	DoubleTop          = "DOUBLE_TOP"
	DoubleBottom       = "DOUBLE_BOTTOM"
	BullishEngulfing   = "BULLISH_ENGULFING"
	BearishEngulfing   = "BEARISH_ENGULFING"
	AscendingTriangle  = "ASCENDING_TRIANGLE"
	DescendingTriangle = "DESCENDING_TRIANGLE"
)

// Detector scans a trailing window of bars for chart patterns and clustered
// support/resistance levels.
type Detector struct {
	Window    int     // trailing bars to scan
	Tolerance float64 // relative tolerance for "equal" prices
}

func NewDetector() *Detector {
	return &Detector{Window: 40, Tolerance: 0.02}
}

// Detect returns zero or more patterns found in the trailing window.
func (d *Detector) Detect(bars []models.PriceBar) []models.Pattern {
	var out []models.Pattern
	window := tail(bars, d.Window)
	if len(window) < 2*pivotNeighbors+2 {
		return out
	}
	pivots := findPivots(window)
	current := window[len(window)-1].Close

	if p, ok := d.doubleExtremum(pivotHighs(pivots), current, true); ok {
		out = append(out, p)
	}
	if p, ok := d.doubleExtremum(pivotLows(pivots), current, false); ok {
		out = append(out, p)
	}
	if p, ok := engulfing(window); ok {
		out = append(out, p)
	}
	if p, ok := d.triangle(pivots); ok {
		out = append(out, p)
	}
	return out
}

// doubleExtremum detects a double top (highs=true) or double bottom: the two
// dominant pivots sit within tolerance of each other and price has already
// turned away from them.
func (d *Detector) doubleExtremum(pivots []pivot, current float64, highs bool) (models.Pattern, bool) {
	if len(pivots) < 2 {
		return models.Pattern{}, false
	}
	sorted := append([]pivot(nil), pivots...)
	sort.Slice(sorted, func(i, j int) bool {
		if highs {
			return sorted[i].price > sorted[j].price
		}
		return sorted[i].price < sorted[j].price
	})
	a, b := sorted[0], sorted[1]
	if a.price == 0 {
		return models.Pattern{}, false
	}
	diff := math.Abs(a.price-b.price) / a.price
	if diff > d.Tolerance {
		return models.Pattern{}, false
	}

	p := models.Pattern{Strength: strengthFromTightness(diff)}
	if highs {
		// Price must have pulled back from the twin peaks.
		if current >= a.price*0.98 {
			return models.Pattern{}, false
		}
		p.Name = DoubleTop
		p.Bias = models.BiasBearish
	} else {
		if current <= a.price*1.02 {
			return models.Pattern{}, false
		}
		p.Name = DoubleBottom
		p.Bias = models.BiasBullish
	}
	return p, true
}

func strengthFromTightness(diff float64) string {
	switch {
	case diff < 0.005:
		return models.StrengthStrong
	case diff < 0.01:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

// engulfing checks whether the latest candle body fully engulfs the previous
// opposite-colored body.
func engulfing(bars []models.PriceBar) (models.Pattern, bool) {
	n := len(bars)
	prev, cur := bars[n-2], bars[n-1]
	prevBody := math.Abs(prev.Close - prev.Open)
	curBody := math.Abs(cur.Close - cur.Open)
	if prevBody == 0 || curBody == 0 {
		return models.Pattern{}, false
	}

	bullish := prev.Close < prev.Open && cur.Close > cur.Open &&
		cur.Open <= prev.Close && cur.Close >= prev.Open
	bearish := prev.Close > prev.Open && cur.Close < cur.Open &&
		cur.Open >= prev.Close && cur.Close <= prev.Open
	if !bullish && !bearish {
		return models.Pattern{}, false
	}

	p := models.Pattern{Strength: strengthFromBodyRatio(curBody / prevBody)}
	if bullish {
		p.Name = BullishEngulfing
		p.Bias = models.BiasBullish
	} else {
		p.Name = BearishEngulfing
		p.Bias = models.BiasBearish
	}
	return p, true
}

func strengthFromBodyRatio(ratio float64) string {
	switch {
	case ratio >= 2:
		return models.StrengthStrong
	case ratio >= 1.5:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

// triangle detects an ascending triangle (flat pivot highs over rising pivot
// lows) or its descending mirror. Needs at least two pivots on each side.
func (d *Detector) triangle(pivots []pivot) (models.Pattern, bool) {
	highs := pivotHighs(pivots)
	lows := pivotLows(pivots)
	if len(highs) < 2 || len(lows) < 2 {
		return models.Pattern{}, false
	}

	flatHighs := flat(highs, d.Tolerance/2)
	flatLows := flat(lows, d.Tolerance/2)
	risingLows := monotonic(lows, true)
	fallingHighs := monotonic(highs, false)

	switch {
	case flatHighs && risingLows && !flatLows:
		return models.Pattern{
			Name:     AscendingTriangle,
			Bias:     models.BiasBullish,
			Strength: strengthFromPivotCount(len(highs) + len(lows)),
		}, true
	case flatLows && fallingHighs && !flatHighs:
		return models.Pattern{
			Name:     DescendingTriangle,
			Bias:     models.BiasBearish,
			Strength: strengthFromPivotCount(len(highs) + len(lows)),
		}, true
	}
	return models.Pattern{}, false
}

func flat(pivots []pivot, tolerance float64) bool {
	lo, hi := pivots[0].price, pivots[0].price
	for _, p := range pivots[1:] {
		if p.price < lo {
			lo = p.price
		}
		if p.price > hi {
			hi = p.price
		}
	}
	if lo == 0 {
		return false
	}
	return (hi-lo)/lo <= tolerance
}

func monotonic(pivots []pivot, rising bool) bool {
	for i := 1; i < len(pivots); i++ {
		if rising && pivots[i].price <= pivots[i-1].price {
			return false
		}
		if !rising && pivots[i].price >= pivots[i-1].price {
			return false
		}
	}
	return true
}

func strengthFromPivotCount(n int) string {
	switch {
	case n >= 6:
		return models.StrengthStrong
	case n >= 4:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

func tail(bars []models.PriceBar, n int) []models.PriceBar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}

var _ domsvc.PatternDetector = (*Detector)(nil)
