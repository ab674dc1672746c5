package scoring

import "math"

// RoundTick rounds a price to the exchange tick size: 0.01 below 1, else
// 0.05. The product is rounded back to cents so multiples of 0.05 come
// out exact instead of carrying binary float residue.
func RoundTick(price float64) float64 {
	tick := 0.05
	if price < 1 {
		tick = 0.01
	}
	return math.Round(math.Round(price/tick)*tick*100) / 100
}
