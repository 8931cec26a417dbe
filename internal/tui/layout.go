package tui

import "math"

// splitCells divides total terminal cells by fractions, rounding at the
// cumulative boundaries so the parts always add up to total
func splitCells(total int, fractions []float64) []int {
	sizes := make([]int, len(fractions))
	if total <= 0 {
		return sizes
	}

	sum := 0.0
	for _, f := range fractions {
		sum += f
	}
	if sum <= 0 {
		return sizes
	}

	cumulative, prev := 0.0, 0
	for i, f := range fractions {
		cumulative += f
		boundary := int(math.Round(float64(total) * cumulative / sum))
		if i == len(fractions)-1 {
			boundary = total
		}
		sizes[i] = boundary - prev
		prev = boundary
	}
	return sizes
}
