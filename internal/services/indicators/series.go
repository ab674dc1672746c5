package indicators

import "math"

// Helpers shared by the indicator transforms. All series functions return a
// slice aligned with the input; indices before the warm-up hold NaN.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Defined reports whether v is a usable indicator value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// SMA computes the simple moving average over period.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(period+1),
// seeded by the SMA of the first period values.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed

	alpha := 2.0 / float64(period+1)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// StdDev computes the rolling population standard deviation over period.
func StdDev(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		var mean float64
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)
		var ss float64
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period))
	}
	return out
}

// emaOverDefined runs an EMA over a series that starts with NaNs, seeding at
// the first index where period defined values are available. Used for the
// MACD signal line, whose input is itself an EMA difference.
func emaOverDefined(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	start := -1
	for i, v := range values {
		if Defined(v) {
			start = i
			break
		}
	}
	if start < 0 || len(values)-start < period {
		return out
	}
	var seed float64
	for _, v := range values[start : start+period] {
		seed += v
	}
	seed /= float64(period)
	out[start+period-1] = seed

	alpha := 2.0 / float64(period+1)
	prev := seed
	for i := start + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

func last(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v := values[len(values)-1]
	if !Defined(v) {
		return 0, false
	}
	return v, true
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
