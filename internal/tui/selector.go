package tui

import (
	"fmt"
	"slices"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/selection"
)

// RepopulateFunc returns the offered values per dimension for an assignment
type RepopulateFunc func(selection.Assignment) ([][]string, error)

// Selector holds the settings pane state: one selected value per
// selectable dimension, the values still offered for each, the focused
// dimension and the last user change for switch-to-last
type Selector struct {
	dims      []ndconfig.Dimension
	current   selection.Assignment
	offered   [][]string
	focus     int
	lastDim   int
	lastValue string
}

// NewSelector starts from initial with every declared value offered
func NewSelector(dims []ndconfig.Dimension, initial selection.Assignment) *Selector {
	offered := make([][]string, len(dims))
	for i, d := range dims {
		offered[i] = d.Values()
	}
	return &Selector{
		dims:    dims,
		current: slices.Clone(initial),
		offered: offered,
		lastDim: -1,
	}
}

// Dimensions returns the selectable dimensions
func (s *Selector) Dimensions() []ndconfig.Dimension {
	return s.dims
}

// Current returns a copy of the selected values
func (s *Selector) Current() selection.Assignment {
	return slices.Clone(s.current)
}

// Offered returns the values offered for dimension i
func (s *Selector) Offered(i int) []string {
	return s.offered[i]
}

// Focus returns the focused dimension index
func (s *Selector) Focus() int {
	return s.focus
}

// MoveFocus moves the focus by delta, wrapping around
func (s *Selector) MoveFocus(delta int) {
	n := len(s.dims)
	if n == 0 {
		return
	}
	s.focus = ((s.focus+delta)%n + n) % n
}

// Cycle selects the offered value delta steps away from the current one
// in the focused dimension. It reports whether the selection changed.
func (s *Selector) Cycle(delta int) bool {
	if len(s.dims) == 0 {
		return false
	}
	offered := s.offered[s.focus]
	n := len(offered)
	if n == 0 {
		return false
	}

	idx := slices.Index(offered, s.current[s.focus])
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%n + n) % n
	}
	return s.set(s.focus, offered[idx])
}

// SwitchToLast restores the value the last changed dimension held before
// the change; repeating it toggles between the two
func (s *Selector) SwitchToLast() bool {
	if s.lastDim < 0 {
		return false
	}
	return s.set(s.lastDim, s.lastValue)
}

func (s *Selector) set(dim int, value string) bool {
	if s.current[dim] == value {
		return false
	}
	s.lastDim, s.lastValue = dim, s.current[dim]
	s.current[dim] = value
	return true
}

// Settle recomputes the offered values and moves every selection that is
// no longer offered to the first offered value, repeating until stable
func (s *Selector) Settle(repopulate RepopulateFunc) error {
	current, offered, err := settle(s.current, repopulate)
	if err != nil {
		return err
	}
	s.Apply(current, offered)
	return nil
}

// Apply replaces the selection and offered values with a settled result.
// The switch-to-last history is left alone.
func (s *Selector) Apply(current selection.Assignment, offered [][]string) {
	s.current = slices.Clone(current)
	s.offered = offered
}

// settle works on a copy of current so it can run away from the model
func settle(current selection.Assignment, repopulate RepopulateFunc) (selection.Assignment, [][]string, error) {
	current = slices.Clone(current)
	var offered [][]string
	for pass := 0; pass <= len(current); pass++ {
		next, err := repopulate(current)
		if err != nil {
			return nil, nil, err
		}
		if len(next) != len(current) {
			return nil, nil, fmt.Errorf("repopulate returned %d value lists for %d dimensions", len(next), len(current))
		}
		offered = next

		changed := false
		for i := range current {
			if v, ok := selection.Keep(current[i], offered[i]); ok && v != current[i] {
				current[i] = v
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return current, offered, nil
}
