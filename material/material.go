// Package material defines how the solvers obtain refractive indices.
//
// Dispersion formulas live outside this module; anything that can answer
// Index(wl) satisfies Material.
package material

import (
	"fmt"

	"github.com/meenmo/fibermodes/wavelength"
)

// Material supplies the refractive index of a layer at a wavelength.
type Material interface {
	Index(wl wavelength.Wavelength) float64
}

// Fixed is a non-dispersive material.
type Fixed float64

// Index returns the constant index.
func (f Fixed) Index(wavelength.Wavelength) float64 { return float64(f) }

func (f Fixed) String() string { return fmt.Sprintf("Fixed(%g)", float64(f)) }

// Func adapts a plain function to Material.
type Func func(wl wavelength.Wavelength) float64

// Index calls f.
func (f Func) Index(wl wavelength.Wavelength) float64 { return f(wl) }
