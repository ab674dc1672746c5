package indicators

import (
	"math"
	"testing"

	"PortPulse/internal/domain/models"
)

func flatBars(n int, price float64) []models.PriceBar {
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return out
}

func trendBars(n int, start, step float64) []models.PriceBar {
	out := make([]models.PriceBar, n)
	for i := range out {
		c := start + step*float64(i)
		out[i] = models.PriceBar{Open: c - step/2, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return out
}

func TestRSIFlatSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	rsi := RSI(closes, RSIPeriod)
	got := rsi[len(rsi)-1]
	if got != 50 {
		t.Fatalf("flat series RSI = %v, want 50", got)
	}
}

func TestRSIMonotonic(t *testing.T) {
	up := make([]float64, 40)
	down := make([]float64, 40)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}
	if got := RSI(up, RSIPeriod)[39]; got != 100 {
		t.Errorf("all-gains RSI = %v, want 100", got)
	}
	if got := RSI(down, RSIPeriod)[39]; got != 0 {
		t.Errorf("all-losses RSI = %v, want 0", got)
	}
}

func TestRSIWarmup(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	rsi := RSI(closes, RSIPeriod)
	for i, v := range rsi {
		if Defined(v) {
			t.Fatalf("RSI[%d] defined before warm-up: %v", i, v)
		}
	}
}

func TestMACDRisingSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	line, signal, hist := MACD(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	n := len(closes) - 1
	if !Defined(line[n]) || !Defined(signal[n]) || !Defined(hist[n]) {
		t.Fatalf("MACD undefined at tail of 60-bar series")
	}
	if line[n] <= 0 {
		t.Errorf("rising series MACD line = %v, want > 0", line[n])
	}
	if hist[n] != line[n]-signal[n] {
		t.Errorf("hist = %v, want line-signal = %v", hist[n], line[n]-signal[n])
	}
}

func TestMACDWarmup(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	_, _, hist := MACD(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	for i, v := range hist {
		if Defined(v) {
			t.Fatalf("hist[%d] defined with only 20 bars: %v", i, v)
		}
	}
}

func TestBollingerFlatCollapse(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	upper, mid, lower := Bollinger(closes, BollPeriod, BollWidth)
	n := len(closes) - 1
	if upper[n] != 50 || mid[n] != 50 || lower[n] != 50 {
		t.Fatalf("flat series bands = (%v, %v, %v), want all 50", upper[n], mid[n], lower[n])
	}
}

func TestBollingerOrdering(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))*5
	}
	upper, mid, lower := Bollinger(closes, BollPeriod, BollWidth)
	n := len(closes) - 1
	if !(lower[n] < mid[n] && mid[n] < upper[n]) {
		t.Fatalf("band ordering violated: %v %v %v", lower[n], mid[n], upper[n])
	}
}

func TestStochasticFlatRange(t *testing.T) {
	bars := flatBars(30, 25)
	k, d := Stochastic(bars, StochPeriod, StochSmooth)
	n := len(bars) - 1
	if k[n] != 50 {
		t.Errorf("flat range %%K = %v, want 50", k[n])
	}
	if d[n] != 50 {
		t.Errorf("flat range %%D = %v, want 50", d[n])
	}
}

func TestStochasticAtHigh(t *testing.T) {
	bars := trendBars(30, 100, 1)
	k, _ := Stochastic(bars, StochPeriod, StochSmooth)
	n := len(bars) - 1
	if k[n] < 80 {
		t.Fatalf("close at range high gives %%K = %v, want >= 80", k[n])
	}
}

func TestATRConstantRange(t *testing.T) {
	bars := make([]models.PriceBar, 30)
	for i := range bars {
		bars[i] = models.PriceBar{Open: 10, High: 10.5, Low: 9.5, Close: 10, Volume: 100}
	}
	atr := ATR(bars, ATRPeriod)
	got := atr[len(bars)-1]
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("constant 1-point range ATR = %v, want 1", got)
	}
}

func TestATRWarmup(t *testing.T) {
	bars := flatBars(5, 10)
	atr := ATR(bars, ATRPeriod)
	for i, v := range atr {
		if Defined(v) {
			t.Fatalf("ATR[%d] defined with 5 bars: %v", i, v)
		}
	}
}

func TestSMAAndEMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	sma := SMA(values, 3)
	if Defined(sma[0]) || Defined(sma[1]) {
		t.Fatalf("SMA defined before warm-up")
	}
	if sma[2] != 2 || sma[4] != 4 {
		t.Fatalf("SMA = %v, want [.. 2 3 4]", sma)
	}

	ema := EMA(values, 3)
	if !Defined(ema[2]) {
		t.Fatalf("EMA undefined at warm-up boundary")
	}
	if ema[2] != 2 {
		t.Fatalf("EMA seed = %v, want SMA seed 2", ema[2])
	}
}

func TestEngineSnapshotValid(t *testing.T) {
	e := NewEngine()
	snap := e.Snapshot(trendBars(120, 100, 0.5))
	if !snap.Valid {
		t.Fatalf("120-bar series snapshot not valid: %+v", snap)
	}
	if snap.RSI <= 50 {
		t.Errorf("uptrend RSI = %v, want > 50", snap.RSI)
	}
	if snap.SMA20 <= snap.SMA50 {
		t.Errorf("uptrend SMA20 %v <= SMA50 %v", snap.SMA20, snap.SMA50)
	}
}

func TestEngineSnapshotShortSeries(t *testing.T) {
	e := NewEngine()
	snap := e.Snapshot(trendBars(10, 100, 1))
	if snap.Valid {
		t.Fatalf("10-bar snapshot reported valid")
	}
	if snap.SMA20OK || snap.SMA50OK {
		t.Errorf("SMA flags set with 10 bars")
	}
}

func TestEngineDeterminism(t *testing.T) {
	e := NewEngine()
	bars := trendBars(80, 50, 0.3)
	a := e.Snapshot(bars)
	b := e.Snapshot(bars)
	if a != b {
		t.Fatalf("same input produced different snapshots:\n%+v\n%+v", a, b)
	}
}

func TestVolumeSignal(t *testing.T) {
	bars := flatBars(30, 10)
	for i := range bars {
		bars[i].Volume = 100
	}

	spikeUp := append(append([]models.PriceBar(nil), bars...), models.PriceBar{Open: 10, High: 11, Low: 10, Close: 11, Volume: 400})
	spikeDown := append(append([]models.PriceBar(nil), bars...), models.PriceBar{Open: 10, High: 10, Low: 9, Close: 9, Volume: 400})
	dry := append(append([]models.PriceBar(nil), bars...), models.PriceBar{Open: 10, High: 10, Low: 10, Close: 10, Volume: 20})

	e := NewEngine()
	if got := e.Volume(spikeUp); got.Signal != "STRONG_BUYING" {
		t.Errorf("up spike signal = %s, want STRONG_BUYING", got.Signal)
	}
	if got := e.Volume(spikeDown); got.Signal != "STRONG_SELLING" {
		t.Errorf("down spike signal = %s, want STRONG_SELLING", got.Signal)
	}
	if got := e.Volume(dry); got.Signal != "WEAK" {
		t.Errorf("dry bar signal = %s, want WEAK", got.Signal)
	}
	if got := e.Volume(bars); got.Signal != "NEUTRAL" || got.Ratio != 1 {
		t.Errorf("steady volume = %+v, want NEUTRAL ratio 1", got)
	}
}
