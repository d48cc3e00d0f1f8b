package domain

import "math"

// TotalPrice computes the rental total: unit price per day times the
// inclusive day count, reduced by discountPercent, rounded to the nearest
// whole currency unit (half away from zero). The same function runs at
// creation and at amendment so the two paths can never disagree.
//
// Callers validate 0 <= discountPercent <= 100 before invoking; the
// function itself clamps nothing.
func TotalPrice(unitPerDay float64, days int, discountPercent float64) float64 {
	return math.Round(unitPerDay * float64(days) * (1 - discountPercent/100))
}
