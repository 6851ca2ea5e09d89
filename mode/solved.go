package mode

import (
	"fmt"
	"sort"
)

// Solved is a mode together with its effective index at a given k0.
type Solved struct {
	Mode
	Neff float64
	K0   float64
}

// Beta is the propagation constant k0·neff (rad/m).
func (s Solved) Beta() float64 { return s.K0 * s.Neff }

func (s Solved) String() string {
	return fmt.Sprintf("%v neff=%.8f", s.Mode, s.Neff)
}

// SortSolved sorts modes by decreasing neff, in place, and renumbers the
// radial orders. HE and EH modes of the same nu share one sequence and are
// assigned alternately: HE(nu,1), EH(nu,1), HE(nu,2), ...
func SortSolved(modes []Solved) []Solved {
	sort.SliceStable(modes, func(i, j int) bool {
		return modes[i].Neff > modes[j].Neff
	})

	type key struct {
		f  Family
		nu int
	}
	counts := map[key]int{}
	for i := range modes {
		f := modes[i].Family
		if f == HE || f == EH {
			he, eh := key{HE, modes[i].Nu}, key{EH, modes[i].Nu}
			f = HE
			if counts[he] != counts[eh] {
				f = EH
			}
			modes[i].Family = f
		}
		k := key{f, modes[i].Nu}
		counts[k]++
		modes[i].M = counts[k]
	}
	return modes
}
