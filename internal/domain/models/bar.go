package models

import "time"

// PriceBar is one OHLCV record. Series are ordered oldest-first with no
// duplicate dates; bars are read-only once fetched.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IndicatorSnapshot holds the latest defined indicator values for a ticker.
// Valid is false when the series was shorter than the longest warm-up, in
// which case individual fields may still be set where their own lookback
// was satisfied (the matching *OK flag tells which).
type IndicatorSnapshot struct {
	RSI        float64
	RSIOK      bool
	MACDLine   float64
	MACDSignal float64
	MACDHist   float64
	MACDOK     bool
	SMA20      float64
	SMA20OK    bool
	SMA50      float64
	SMA50OK    bool
	EMA9       float64
	EMA9OK     bool
	ATR        float64
	ATROK      bool
	BollUpper  float64
	BollMid    float64
	BollLower  float64
	BollOK     bool
	StochK     float64
	StochD     float64
	StochOK    bool
	Valid      bool
}

// Quote is a live last-trade price from the stream.
type Quote struct {
	Ticker string
	Price  float64
	Volume float64
	At     time.Time
}

// VolumeSignal classifies the latest bar's volume against its 20-bar average.
type VolumeSignal struct {
	Ratio  float64
	Signal string // "STRONG_BUYING", "STRONG_SELLING", "WEAK", "NEUTRAL"
}
