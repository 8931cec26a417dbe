package ndconfig

import (
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const sizeTolerance = 1e-6

// distribute turns a comma separated list of percentages into n fractions.
// Entries left blank or missing share whatever the explicit entries leave over.
func distribute(key, raw string, n int) ([]float64, error) {
	explicit := make([]float64, n)
	given := make([]bool, n)

	if strings.TrimSpace(raw) != "" {
		parts := strings.Split(raw, ",")
		if len(parts) > n {
			logrus.Warnf("%s lists %d entries but only %d are used", key, len(parts), n)
		}
		for i, part := range parts {
			if i >= n {
				break
			}
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			pct, err := strconv.ParseFloat(part, 64)
			if err != nil || pct < 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
				return nil, configErrorf("%s entry %d must be a non-negative percentage, got %q", key, i+1, part)
			}
			explicit[i] = pct / 100.0
			given[i] = true
		}
	}

	total := 0.0
	implicit := 0
	for i := range explicit {
		if given[i] {
			total += explicit[i]
		} else {
			implicit++
		}
	}
	if total > 1.0+sizeTolerance {
		return nil, configErrorf("%s add up to %.4g%%, more than 100%%", key, total*100)
	}
	if implicit == 0 && math.Abs(total-1.0) > sizeTolerance {
		return nil, configErrorf("%s must add up to 100%%, got %.4g%%", key, total*100)
	}

	sizes := make([]float64, n)
	for i := range sizes {
		if given[i] {
			sizes[i] = explicit[i]
		} else {
			sizes[i] = (1.0 - total) / float64(implicit)
		}
	}
	return sizes, nil
}
