package domain

import "math"

// Round2 rounds an SEK amount to whole öre. Rounding happens at aggregate
// level only; per-line amounts are kept unrounded so a long cart does not
// accumulate rounding drift.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
