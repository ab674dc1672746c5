package patterns

import "PortPulse/internal/domain/models"

// pivot is one local extremum candidate.
type pivot struct {
	index  int
	price  float64
	volume float64
	high   bool
}

// pivotNeighbors bars on each side must be strictly inside the extremum
// for a bar to count as a pivot.
const pivotNeighbors = 3

func findPivots(bars []models.PriceBar) []pivot {
	var out []pivot
	for i := pivotNeighbors; i < len(bars)-pivotNeighbors; i++ {
		isHigh, isLow := true, true
		for j := i - pivotNeighbors; j <= i+pivotNeighbors; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
		}
		if isHigh {
			out = append(out, pivot{index: i, price: bars[i].High, volume: bars[i].Volume, high: true})
		}
		if isLow {
			out = append(out, pivot{index: i, price: bars[i].Low, volume: bars[i].Volume, high: false})
		}
	}
	return out
}

func pivotHighs(pivots []pivot) []pivot {
	var out []pivot
	for _, p := range pivots {
		if p.high {
			out = append(out, p)
		}
	}
	return out
}

func pivotLows(pivots []pivot) []pivot {
	var out []pivot
	for _, p := range pivots {
		if !p.high {
			out = append(out, p)
		}
	}
	return out
}
