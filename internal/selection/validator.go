package selection

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
)

// Assignment holds one value per selectable dimension, aligned with the
// dimension slice it was built for
type Assignment []string

// Checker reports whether an image exists for a value of the non-selectable
// dimension combined with the selectable values
type Checker func(nonSelectableValue string, selectable []string) bool

// Valid reports whether at least one value of the non-selectable dimension
// has an image for the selectable values. Values are tried in declaration
// order and the first hit wins.
func Valid(nonSelectable ndconfig.Dimension, selectable []string, check Checker) bool {
	for i := 0; i < nonSelectable.Len(); i++ {
		if check(nonSelectable.Value(i), selectable) {
			return true
		}
	}
	return false
}

// InitialSelection returns the first valid combination in enumeration order.
// ok is false when no combination has an image for any non-selectable value.
// With no selectable dimensions the result is an empty, non-nil Assignment.
func InitialSelection(dims []ndconfig.Dimension, nonSelectable ndconfig.Dimension, check Checker) (Assignment, bool) {
	tried := 0
	for combination := range Combinations(dims) {
		tried++
		if Valid(nonSelectable, combination, check) {
			logrus.WithFields(logrus.Fields{
				"combination": combination,
				"tried":       tried,
			}).Debug("initial selection found")
			return Assignment(combination), true
		}
	}
	logrus.WithField("tried", tried).Warn("no valid combination of dimension values")
	return nil, false
}

// Repopulate recomputes, for every dimension, which of its values still lead
// to at least one image while every other dimension keeps its current value.
// The result is aligned with dims. It is nil when current does not hold
// exactly one value per dimension.
// Keeping or replacing the selected value is left to the caller.
func Repopulate(dims []ndconfig.Dimension, nonSelectable ndconfig.Dimension, current Assignment, check Checker) [][]string {
	if len(current) != len(dims) {
		logrus.WithFields(logrus.Fields{
			"values":     len(current),
			"dimensions": len(dims),
		}).Warn("assignment does not match dimensions, nothing repopulated")
		return nil
	}

	subsets := make([][]string, len(dims))
	candidate := make([]string, len(current))
	for i, d := range dims {
		offered := []string{}
		for j := 0; j < d.Len(); j++ {
			copy(candidate, current)
			candidate[i] = d.Value(j)
			if Valid(nonSelectable, candidate, check) {
				offered = append(offered, d.Value(j))
			}
		}
		subsets[i] = offered
	}
	return subsets
}

// Keep returns selected if it is offered, otherwise the first offered value.
// ok is false when nothing is offered.
func Keep(selected string, offered []string) (string, bool) {
	if slices.Contains(offered, selected) {
		return selected, true
	}
	if len(offered) == 0 {
		return selected, false
	}
	return offered[0], true
}
