package fiber

import (
	"fmt"
	"math"

	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/utils"
	"github.com/meenmo/fibermodes/wavelength"
)

// B is the normalized propagation constant
// (neff² - ncl²) / (nmax² - ncl²), between 0 at cutoff and 1.
func (f *Fiber) B(md mode.Mode, wl wavelength.Wavelength) (float64, error) {
	neff, err := f.Neff(md, wl, 0)
	if err != nil {
		return math.NaN(), err
	}
	p := f.Profile(wl)
	nmax, ncl := p.NMax(), p.NCladding()
	return (neff*neff - ncl*ncl) / (nmax*nmax - ncl*ncl), nil
}

// Beta returns the order-th derivative of the propagation constant with
// respect to angular frequency, d^p β / dω^p, in s^p/m. Order 0 is
// β = k0 neff itself; orders 1 to 4 use a 5-point central difference.
func (f *Fiber) Beta(md mode.Mode, wl wavelength.Wavelength, order int) (float64, error) {
	if order == 0 {
		neff, err := f.Neff(md, wl, 0)
		if err != nil {
			return math.NaN(), err
		}
		return wl.K0() * neff, nil
	}
	if order < 0 || order > 4 {
		return math.NaN(), fmt.Errorf("%w: beta derivative order %d", ErrInvalidArgument, order)
	}

	var first error
	beta := func(omega float64) float64 {
		b, err := f.Beta(md, wavelength.FromOmega(omega), 0)
		if err != nil && first == nil {
			first = err
		}
		return b
	}
	omega := wl.Omega()
	h := omega * f.cfg.DerivativeStep / wl.Meters()
	d, err := utils.CentralDerivative(beta, omega, order, h)
	if err != nil {
		return math.NaN(), err
	}
	if first != nil {
		return math.NaN(), first
	}
	return d, nil
}

// Ng is the group index c dβ/dω.
func (f *Fiber) Ng(md mode.Mode, wl wavelength.Wavelength) (float64, error) {
	b1, err := f.Beta(md, wl, 1)
	if err != nil {
		return math.NaN(), err
	}
	return b1 * wavelength.C, nil
}

// D is the chromatic dispersion -2πc/λ² β₂, in ps/(nm·km).
func (f *Fiber) D(md mode.Mode, wl wavelength.Wavelength) (float64, error) {
	b2, err := f.Beta(md, wl, 2)
	if err != nil {
		return math.NaN(), err
	}
	l := wl.Meters()
	return -b2 * 2 * math.Pi * wavelength.C / (l * l) * 1e6, nil
}

// S is the dispersion slope dD/dλ, in ps/(nm²·km).
func (f *Fiber) S(md mode.Mode, wl wavelength.Wavelength) (float64, error) {
	b2, err := f.Beta(md, wl, 2)
	if err != nil {
		return math.NaN(), err
	}
	b3, err := f.Beta(md, wl, 3)
	if err != nil {
		return math.NaN(), err
	}
	l := wl.Meters()
	w := 2 * math.Pi * wavelength.C / (l * l)
	return (w*w*b3 + 2*w/l*b2) * 1e-3, nil
}
