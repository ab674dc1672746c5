package indicators

import (
	domsvc "PortPulse/internal/domain/service"

	"PortPulse/internal/domain/models"
)

// Engine is the stateless indicator engine. Running it twice over the same
// series yields identical output.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Snapshot computes the latest value of every indicator over bars. Each
// indicator is defined only once its own lookback is fully populated; the
// snapshot's Valid flag is true when all of them are.
func (e *Engine) Snapshot(bars []models.PriceBar) models.IndicatorSnapshot {
	var snap models.IndicatorSnapshot
	if len(bars) == 0 {
		return snap
	}
	closes := extractCloses(bars)

	if v, ok := last(RSI(closes, RSIPeriod)); ok {
		snap.RSI = v
		snap.RSIOK = true
	}
	line, signal, hist := MACD(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	if h, ok := last(hist); ok {
		l, _ := last(line)
		s, _ := last(signal)
		snap.MACDLine = l
		snap.MACDSignal = s
		snap.MACDHist = h
		snap.MACDOK = true
	}
	if v, ok := last(SMA(closes, 20)); ok {
		snap.SMA20 = v
		snap.SMA20OK = true
	}
	if v, ok := last(SMA(closes, 50)); ok {
		snap.SMA50 = v
		snap.SMA50OK = true
	}
	if v, ok := last(EMA(closes, 9)); ok {
		snap.EMA9 = v
		snap.EMA9OK = true
	}
	if v, ok := last(ATR(bars, ATRPeriod)); ok {
		snap.ATR = v
		snap.ATROK = true
	}
	upper, mid, lower := Bollinger(closes, BollPeriod, BollWidth)
	if m, ok := last(mid); ok {
		u, _ := last(upper)
		l, _ := last(lower)
		snap.BollUpper = u
		snap.BollMid = m
		snap.BollLower = l
		snap.BollOK = true
	}
	k, d := Stochastic(bars, StochPeriod, StochSmooth)
	if kv, ok := last(k); ok {
		dv, dok := last(d)
		snap.StochK = kv
		if dok {
			snap.StochD = dv
		}
		snap.StochOK = true
	}

	snap.Valid = snap.RSIOK && snap.MACDOK && snap.SMA20OK && snap.SMA50OK &&
		snap.EMA9OK && snap.ATROK && snap.BollOK && snap.StochOK
	return snap
}

// Volume classifies the latest bar's volume against the 20-bar average,
// combined with the bar's price direction. A zero average volume maps to a
// neutral ratio of 1.
func (e *Engine) Volume(bars []models.PriceBar) models.VolumeSignal {
	sig := models.VolumeSignal{Ratio: 1, Signal: "NEUTRAL"}
	if len(bars) == 0 {
		return sig
	}
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	if avg, ok := last(SMA(vols, VolumePeriod)); ok && avg > 0 {
		sig.Ratio = bars[len(bars)-1].Volume / avg
	}

	bar := bars[len(bars)-1]
	up := bar.Close >= bar.Open
	switch {
	case sig.Ratio > 1.5 && up:
		sig.Signal = "STRONG_BUYING"
	case sig.Ratio > 1.5 && !up:
		sig.Signal = "STRONG_SELLING"
	case sig.Ratio < 0.5:
		sig.Signal = "WEAK"
	default:
		sig.Signal = "NEUTRAL"
	}
	return sig
}

func extractCloses(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

var _ domsvc.IndicatorEngine = (*Engine)(nil)
