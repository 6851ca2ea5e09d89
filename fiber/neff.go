package fiber

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/internal/metrics"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
	"github.com/meenmo/fibermodes/wavelength"
)

// ErrInvalidArgument is returned for unusable wavelengths or steps.
var ErrInvalidArgument = errors.New("fiber: invalid argument")

// Neff returns the effective index of md at wl. delta is the scan step in
// index units; zero selects the configured default. Results are cached
// per (wl, md, delta).
//
// A mode below cutoff fails with ErrNotGuided, a mode whose root cannot be
// isolated with ErrNotFound. The returned neff always lies between the
// cladding index and the highest layer index.
func (f *Fiber) Neff(md mode.Mode, wl wavelength.Wavelength, delta float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return math.NaN(), err
	}
	if !wl.Valid() {
		return math.NaN(), fmt.Errorf("%w: wavelength %g", ErrInvalidArgument, float64(wl))
	}
	if delta == 0 {
		delta = f.cfg.NeffDelta
	}
	if !(delta > 0) || math.IsInf(delta, 0) {
		return math.NaN(), fmt.Errorf("%w: delta %g", ErrInvalidArgument, delta)
	}

	key := neffKey{wl: wl, mode: md, delta: delta}
	return memo(f, f.neffs, metrics.KindNeff, key, func() (float64, error) {
		v, err := f.neff(md, wl, delta)
		f.record(metrics.KindNeff, err)
		if err != nil {
			f.log.V(logging.DEBUG).Info("neff not solved",
				"mode", md.String(), "wavelength", wl.String(), "error", err.Error())
			return math.NaN(), &SolveError{Op: "neff", Mode: md, Wavelength: wl, Err: err}
		}
		f.log.V(logging.TRACE).Info("neff solved", "mode", md.String(), "wavelength", wl.String(), "neff", v)
		return v, nil
	})
}

// Solve is Neff with the default step, packaged as a mode.Solved.
func (f *Fiber) Solve(md mode.Mode, wl wavelength.Wavelength) (mode.Solved, error) {
	n, err := f.Neff(md, wl, 0)
	if err != nil {
		return mode.Solved{}, err
	}
	return mode.Solved{Mode: md, Neff: n, K0: wl.K0()}, nil
}

func (f *Fiber) neff(md mode.Mode, wl wavelength.Wavelength, delta float64) (float64, error) {
	if f.strategy == StrategyAuto && len(f.layers) == 2 {
		return f.stepIndexNeff(md, wl, delta)
	}
	return f.transferNeff(md, wl, delta)
}

// cutoffIndex maps a cutoff V0 to the neff the mode has at that cutoff
// under the current wavelength, sqrt(nco² - (V/(r k0))²). It is NaN when V
// is beyond the reach of the core.
func cutoffIndex(p chareq.Profile, nco, v float64) float64 {
	x := v / (p.CoreRadius() * p.K0)
	return math.Sqrt(nco*nco - x*x)
}

// nextMode is the LP mode whose cutoff bounds md from below in a
// two-layer fiber.
func nextMode(md mode.Mode) mode.Mode {
	switch md.Family {
	case mode.LP:
		return mode.Mode{Family: mode.LP, Nu: md.Nu + 1, M: md.M}
	case mode.HE:
		return mode.Mode{Family: mode.LP, Nu: md.Nu, M: md.M}
	case mode.EH:
		return mode.Mode{Family: mode.LP, Nu: md.Nu + 2, M: md.M}
	}
	return mode.Mode{Family: mode.LP, Nu: 1, M: md.M + 1}
}

// stepIndexNeff brackets the root between the cutoff bounds of md and of
// its next mode, then halves the bracket until a sign change shows up.
func (f *Fiber) stepIndexNeff(md mode.Mode, wl wavelength.Wavelength, delta float64) (float64, error) {
	co, err := f.Cutoff(md)
	if err != nil {
		return math.NaN(), err
	}
	if v0 := f.V0(wl); v0 < co {
		return math.NaN(), fmt.Errorf("%w: V0 %.6g below cutoff %.6g", ErrNotGuided, v0, co)
	}

	p := f.Profile(wl)
	nco, ncl := p.Layers[0].Index, p.NCladding()
	hi := cutoffIndex(p, nco, co) - delta

	nextCo, err := f.Cutoff(nextMode(md))
	if err != nil {
		return math.NaN(), err
	}
	lo := ncl + delta
	if b := cutoffIndex(p, nco, nextCo) + delta; b > lo {
		lo = b
	}
	if !(lo < hi) {
		return math.NaN(), fmt.Errorf("%w: empty bracket [%.10g, %.10g]", ErrNotFound, lo, hi)
	}

	eq, err := chareq.Neff(chareq.StepIndex, md.Family, md.Nu, p)
	if err != nil {
		return math.NaN(), err
	}
	return rootfind.FindBetween(f.counted(eq), lo, hi, f.scanOptions(delta, f.cfg.NeffMaxIter))
}

// neighbors lists the modes whose neff bounds the neff of md from above.
func neighbors(md mode.Mode) []mode.Mode {
	var out []mode.Mode
	switch {
	case md.Family == mode.HE && md.M > 1:
		out = append(out, mode.Mode{Family: mode.EH, Nu: md.Nu, M: md.M - 1})
	case md.Family == mode.EH:
		out = append(out, mode.Mode{Family: mode.HE, Nu: md.Nu, M: md.M})
	case md.Family != mode.HE && md.M > 1:
		out = append(out, mode.Mode{Family: md.Family, Nu: md.Nu, M: md.M - 1})
	}
	if md.Family == mode.LP && md.Nu > 0 {
		out = append(out, mode.Mode{Family: mode.LP, Nu: md.Nu - 1, M: md.M})
	}
	return out
}

// transferNeff scans the transfer-matrix equation downward from the
// lowest neighbor neff (or the highest index) to the cladding index.
func (f *Fiber) transferNeff(md mode.Mode, wl wavelength.Wavelength, delta float64) (float64, error) {
	p := f.Profile(wl)
	upper := p.NMax()

	co, err := f.Cutoff(md)
	switch {
	case err == nil:
		if v0 := f.V0(wl); v0 < co {
			return math.NaN(), fmt.Errorf("%w: V0 %.6g below cutoff %.6g", ErrNotGuided, v0, co)
		}
		if len(f.layers) == 2 {
			if b := cutoffIndex(p, p.Layers[0].Index, co); b < upper {
				upper = b
			}
		}
	case errors.Is(err, ErrCycle):
		return math.NaN(), err
	default:
		f.log.V(logging.DEBUG).Info("no cutoff bound", "mode", md.String(), "reason", err.Error())
	}

	for _, nb := range neighbors(md) {
		n, err := f.Neff(nb, wl, delta)
		if err != nil {
			if IsUnsupported(err) {
				return math.NaN(), fmt.Errorf("%w: neighbor %v: %v", ErrNotFound, nb, err)
			}
			return math.NaN(), err
		}
		upper = math.Min(upper, n)
	}

	lower := p.NCladding()
	if !(upper > lower) {
		return math.NaN(), &rootfind.BoundError{Low: upper, High: lower, Delta: -delta,
			Reason: "no layer index above the cladding"}
	}
	if upper-lower < 10*delta {
		delta = (upper - lower) / 10
	}

	eq, err := chareq.Neff(chareq.TransferMatrix, md.Family, md.Nu, p)
	if err != nil {
		return math.NaN(), err
	}
	// A neighbor neff is only known to within the root tolerance and may be
	// a root of eq itself; start strictly below it.
	gap := math.Max(1e-15, 2*f.cfg.Tolerance)
	start := upper - gap
	eq = f.counted(eq)
	opts := f.scanOptions(delta, f.cfg.NeffMaxIter)
	for {
		z, err := rootfind.FindFirstRoot(eq, start, lower+1e-15, -delta, opts)
		if err != nil || !atLayerIndex(p, z, 10*gap) {
			return z, err
		}
		// the field basis of that layer degenerates, not a mode
		f.log.V(logging.TRACE).Info("root at a layer index skipped", "mode", md.String(), "neff", z)
		if start = z - delta; start <= lower+1e-15 {
			return math.NaN(), ErrNotFound
		}
	}
}

// atLayerIndex reports whether neff is within tol of an inner layer index.
func atLayerIndex(p chareq.Profile, neff, tol float64) bool {
	for _, l := range p.Layers[:len(p.Layers)-1] {
		if math.Abs(neff-l.Index) <= tol {
			return true
		}
	}
	return false
}
