package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/meenmo/fibermodes/fiber"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/wavelength"
)

// modeRow is one printed mode: its neff-order name, and the cutoff of the
// mode that was actually solved for that neff.
type modeRow struct {
	mode.Solved
	Cutoff float64
}

// guidedRows solves the vector modes of f at wl, in decreasing neff.
// Modes that fail to solve are reported to w and left out.
func guidedRows(w io.Writer, f *fiber.Fiber, wl wavelength.Wavelength) ([]modeRow, error) {
	modes, err := f.FindVModes(wl, fiber.Unlimited, fiber.Unlimited)
	if err != nil {
		return nil, err
	}
	solved := make([]mode.Solved, 0, len(modes))
	for _, md := range modes {
		s, err := f.Solve(md, wl)
		if err != nil {
			fmt.Fprintf(w, "  %-8v %v\n", md, err)
			continue
		}
		solved = append(solved, s)
	}

	// SortSolved keeps this order and only renames
	sort.SliceStable(solved, func(i, j int) bool { return solved[i].Neff > solved[j].Neff })
	rows := make([]modeRow, len(solved))
	for i, s := range solved {
		co, err := f.Cutoff(s.Mode)
		if err != nil {
			return nil, err
		}
		rows[i].Cutoff = co
	}
	for i, s := range mode.SortSolved(solved) {
		rows[i].Solved = s
	}
	return rows, nil
}

func main() {
	f, err := fiber.NewStepIndex(
		[]float64{4.5e-6},
		[]float64{1.448918, 1.444418},
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, nm := range []float64{1550, 1310, 800} {
		wl := wavelength.FromNanometers(nm)
		fmt.Printf("%v  V0 = %.4f\n", wl, f.V0(wl))
		rows, err := guidedRows(os.Stdout, f, wl)
		if err != nil {
			log.Fatal(err)
		}
		for _, r := range rows {
			fmt.Printf("  %-8v neff = %.8f  cutoff V0 = %.4f\n", r.Mode, r.Neff, r.Cutoff)
		}
	}

	lp11 := mode.Mode{Family: mode.LP, Nu: 1, M: 1}
	wl, err := f.CutoffWavelength(lp11)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("single mode above %v\n", wl)
}
