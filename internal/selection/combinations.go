package selection

import (
	"iter"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
)

// Combinations yields every tuple of the cartesian product of the dimensions'
// values, the first dimension varying slowest. Each tuple is a fresh slice.
// No dimensions yield a single empty tuple; a dimension without values
// yields nothing.
func Combinations(dims []ndconfig.Dimension) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, d := range dims {
			if d.Len() == 0 {
				return
			}
		}

		idx := make([]int, len(dims))
		for {
			tuple := make([]string, len(dims))
			for i, d := range dims {
				tuple[i] = d.Value(idx[i])
			}
			if !yield(tuple) {
				return
			}

			// advance like an odometer, innermost dimension first
			i := len(dims) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < dims[i].Len() {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}
