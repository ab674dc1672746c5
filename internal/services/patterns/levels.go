package patterns

import (
	"math"
	"sort"

	"PortPulse/internal/domain/models"
)

// clusterTolerance is the relative band within which pivots merge into one
// support/resistance level.
const clusterTolerance = 0.005

// Levels clusters pivot highs/lows into volume-weighted levels and reports
// the nearest support below and resistance above currentPrice.
func (d *Detector) Levels(bars []models.PriceBar, currentPrice float64) models.LevelSet {
	var set models.LevelSet
	window := tail(bars, d.Window)
	if len(window) < 2*pivotNeighbors+1 {
		return set
	}
	pivots := findPivots(window)
	if len(pivots) == 0 {
		return set
	}

	var totalVolume float64
	for _, b := range window {
		totalVolume += b.Volume
	}

	clusters := clusterPivots(pivots)
	for _, c := range clusters {
		lvl := models.Level{
			Price:       c.mean(),
			PivotCount:  len(c.members),
			VolumeShare: volumeNear(window, c.mean(), totalVolume),
		}
		if lvl.Price < currentPrice {
			lvl.Kind = "SUPPORT"
		} else {
			lvl.Kind = "RESISTANCE"
		}
		lvl.Strength = levelStrength(lvl.PivotCount, lvl.VolumeShare)
		lvl.DistancePct = distancePct(lvl.Price, currentPrice)
		set.All = append(set.All, lvl)
	}
	sort.Slice(set.All, func(i, j int) bool { return set.All[i].Price < set.All[j].Price })

	for i := range set.All {
		lvl := &set.All[i]
		if lvl.Kind == "SUPPORT" {
			if set.Support == nil || lvl.Price > set.Support.Price {
				set.Support = lvl
			}
		} else {
			if set.Resistance == nil || lvl.Price < set.Resistance.Price {
				set.Resistance = lvl
			}
		}
	}
	return set
}

type cluster struct {
	members []pivot
	sum     float64
}

func (c *cluster) mean() float64 {
	if len(c.members) == 0 {
		return 0
	}
	return c.sum / float64(len(c.members))
}

func (c *cluster) add(p pivot) {
	c.members = append(c.members, p)
	c.sum += p.price
}

// clusterPivots greedily merges price-sorted pivots whose price sits within
// the tolerance band of the running cluster mean.
func clusterPivots(pivots []pivot) []*cluster {
	sorted := append([]pivot(nil), pivots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })

	var out []*cluster
	for _, p := range sorted {
		if n := len(out); n > 0 {
			m := out[n-1].mean()
			if m > 0 && math.Abs(p.price-m)/m <= clusterTolerance {
				out[n-1].add(p)
				continue
			}
		}
		c := &cluster{}
		c.add(p)
		out = append(out, c)
	}
	return out
}

// volumeNear returns the share of window volume traded within the tolerance
// band around price.
func volumeNear(bars []models.PriceBar, price, totalVolume float64) float64 {
	if price == 0 || totalVolume == 0 {
		return 0
	}
	var near float64
	for _, b := range bars {
		if math.Abs(b.Close-price)/price <= clusterTolerance {
			near += b.Volume
		}
	}
	return near / totalVolume
}

func levelStrength(pivotCount int, volumeShare float64) string {
	switch {
	case pivotCount >= 3 || volumeShare >= 0.15:
		return models.StrengthStrong
	case pivotCount >= 2 || volumeShare >= 0.08:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

// distancePct is the signed percent distance from currentPrice to price.
// A zero current price maps to 0 rather than a division fault.
func distancePct(price, currentPrice float64) float64 {
	if currentPrice == 0 {
		return 0
	}
	return (price - currentPrice) / currentPrice * 100
}
