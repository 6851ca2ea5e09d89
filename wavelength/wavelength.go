// Package wavelength holds the free-space wavelength value type used by the
// solvers, together with the physical constants the field equations need.
package wavelength

import (
	"fmt"
	"math"
)

// Physical constants (SI).
const (
	// C is the speed of light in vacuum (m/s).
	C = 299792458.0
	// Mu0 is the vacuum permeability (H/m).
	Mu0 = 1.25663706212e-6
	// Epsilon0 is the vacuum permittivity (F/m).
	Epsilon0 = 8.8541878128e-12

	twoPi = 2 * math.Pi
)

// Eta0 is the impedance of free space; Y0 is its inverse (admittance).
var (
	Eta0 = math.Sqrt(Mu0 / Epsilon0)
	Y0   = math.Sqrt(Epsilon0 / Mu0)
)

// Wavelength is a free-space wavelength in meters.
type Wavelength float64

// FromNanometers builds a Wavelength from a value in nm.
func FromNanometers(nm float64) Wavelength { return Wavelength(nm * 1e-9) }

// FromK0 builds a Wavelength from a vacuum wave number (rad/m).
func FromK0(k0 float64) Wavelength { return Wavelength(twoPi / k0) }

// FromOmega builds a Wavelength from an angular frequency (rad/s).
func FromOmega(omega float64) Wavelength { return Wavelength(C * twoPi / omega) }

// FromFrequency builds a Wavelength from a frequency (Hz).
func FromFrequency(f float64) Wavelength { return Wavelength(C / f) }

// Meters returns the wavelength as a plain float64.
func (w Wavelength) Meters() float64 { return float64(w) }

// K0 is the vacuum wave number 2π/λ.
func (w Wavelength) K0() float64 { return twoPi / float64(w) }

// Omega is the angular frequency in rad/s.
func (w Wavelength) Omega() float64 { return C * twoPi / float64(w) }

// Frequency is the frequency in Hz.
func (w Wavelength) Frequency() float64 { return C / float64(w) }

// Valid reports whether w is a finite, strictly positive wavelength.
func (w Wavelength) Valid() bool {
	f := float64(w)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (w Wavelength) String() string {
	return fmt.Sprintf("%.2f nm", 1e9*float64(w))
}
