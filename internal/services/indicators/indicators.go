package indicators

import (
	"PortPulse/internal/domain/models"
)

// Default lookback periods.
const (
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	BollPeriod       = 20
	BollWidth        = 2.0
	StochPeriod      = 14
	StochSmooth      = 3
	ATRPeriod        = 14
	VolumePeriod     = 20
)

// RSI computes Wilder's relative strength index. The seed is the simple
// average of the first period gains/losses; subsequent values use Wilder
// smoothing (alpha = 1/period). A window with zero average loss maps to
// 100, zero average gain to 0, and a fully flat window to 50.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		var gain, loss float64
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, signal line, and histogram.
func MACD(closes []float64, fast, slow, signalPeriod int) (line, signal, hist []float64) {
	n := len(closes)
	line = nanSlice(n)
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if Defined(fastEMA[i]) && Defined(slowEMA[i]) {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}
	signal = emaOverDefined(line, signalPeriod)
	hist = nanSlice(n)
	for i := 0; i < n; i++ {
		if Defined(line[i]) && Defined(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return line, signal, hist
}

// Bollinger returns upper, mid, lower bands (mid = SMA, width in stddevs).
func Bollinger(closes []float64, period int, width float64) (upper, mid, lower []float64) {
	n := len(closes)
	mid = SMA(closes, period)
	sd := StdDev(closes, period)
	upper = nanSlice(n)
	lower = nanSlice(n)
	for i := 0; i < n; i++ {
		if Defined(mid[i]) && Defined(sd[i]) {
			upper[i] = mid[i] + width*sd[i]
			lower[i] = mid[i] - width*sd[i]
		}
	}
	return upper, mid, lower
}

// Stochastic returns %K and %D. A flat high/low range maps %K to the
// neutral 50 instead of dividing by zero.
func Stochastic(bars []models.PriceBar, period, smooth int) (k, d []float64) {
	n := len(bars)
	k = nanSlice(n)
	if period <= 0 || n < period {
		d = nanSlice(n)
		return k, d
	}
	for i := period - 1; i < n; i++ {
		lo := bars[i].Low
		hi := bars[i].High
		for j := i - period + 1; j < i; j++ {
			if bars[j].Low < lo {
				lo = bars[j].Low
			}
			if bars[j].High > hi {
				hi = bars[j].High
			}
		}
		if hi == lo {
			k[i] = 50
			continue
		}
		k[i] = 100 * (bars[i].Close - lo) / (hi - lo)
	}
	d = smaOverDefined(k, smooth)
	return k, d
}

func smaOverDefined(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		var sum float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if !Defined(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// ATR computes the Wilder-smoothed average true range. The first bar's true
// range is its high-low span since there is no previous close.
func ATR(bars []models.PriceBar, period int) []float64 {
	n := len(bars)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := abs(bars[i].High - bars[i-1].Close)
		lc := abs(bars[i].Low - bars[i-1].Close)
		tr[i] = max3(hl, hc, lc)
	}
	var seed float64
	for _, v := range tr[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed
	prev := seed
	for i := period; i < n; i++ {
		prev = (prev*float64(period-1) + tr[i]) / float64(period)
		out[i] = prev
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
