package money

import "math"

// Round rounds an amount to cents, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Sum adds amounts and rounds the result to cents.
func Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return Round(total)
}
