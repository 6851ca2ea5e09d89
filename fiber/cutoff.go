package fiber

import (
	"errors"
	"math"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/internal/metrics"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
	"github.com/meenmo/fibermodes/special"
	"github.com/meenmo/fibermodes/wavelength"
)

// Cutoff returns the normalized frequency V0 below which md is not
// guided. HE(1,1) and LP(0,1) have cutoff 0. Fibers of four layers or
// more only know the fundamental cutoff; other modes fail with
// chareq.ErrUnimplemented.
func (f *Fiber) Cutoff(md mode.Mode) (float64, error) {
	if err := md.Validate(); err != nil {
		return math.NaN(), err
	}
	return memo(f, f.cutoffs, metrics.KindCutoff, md, func() (float64, error) {
		v, err := f.cutoff(md)
		f.record(metrics.KindCutoff, err)
		if err != nil {
			f.log.V(logging.DEBUG).Info("cutoff not solved", "mode", md.String(), "error", err.Error())
			return math.NaN(), &SolveError{Op: "cutoff", Mode: md, Err: err}
		}
		f.log.V(logging.TRACE).Info("cutoff solved", "mode", md.String(), "v0", v)
		return v, nil
	})
}

// CutoffWavelength is the wavelength at which V0 equals the cutoff of md.
// Modes with cutoff 0 give +Inf.
func (f *Fiber) CutoffWavelength(md mode.Mode) (wavelength.Wavelength, error) {
	co, err := f.Cutoff(md)
	if err != nil {
		return wavelength.Wavelength(math.NaN()), err
	}
	return f.ToWavelength(co), nil
}

func (f *Fiber) cutoff(md mode.Mode) (float64, error) {
	n := len(f.layers)
	switch {
	case n == 2:
		return f.stepIndexCutoff(md)
	case chareq.HasCutoff(n, md.Family):
		return f.scanCutoff(md, nil)
	}
	return math.NaN(), &chareq.UnimplementedError{Kind: "cutoff", Family: md.Family, Layers: n}
}

// stepIndexCutoff uses the zeros of J for every family except HE(nu>=2).
func (f *Fiber) stepIndexCutoff(md mode.Mode) (float64, error) {
	nu, m := md.Nu, md.M
	switch md.Family {
	case mode.LP:
		if nu == 0 {
			nu, m = 1, m-1
		} else {
			nu--
		}
	case mode.HE:
		if nu != 1 {
			return f.scanCutoff(md, heCutoffPoints)
		}
		m--
	}
	return special.JZero(nu, m), nil
}

// heCutoffPoints are the zeros of J_nu and J_{nu-2} that bracket the
// two-layer HE cutoffs.
func heCutoffPoints(md mode.Mode) []float64 {
	return append(special.JZeros(md.Nu, md.M), special.JZeros(md.Nu-2, md.M)...)
}

// scanCutoff steps the cutoff equation of md upward from just above the
// cutoff of the previous radial order of the same family.
func (f *Fiber) scanCutoff(md mode.Mode, points func(mode.Mode) []float64) (float64, error) {
	delta := f.cfg.CutoffDelta
	lo := delta
	if md.M > 1 {
		prev, err := f.Cutoff(mode.Mode{Family: md.Family, Nu: md.Nu, M: md.M - 1})
		if err != nil {
			return math.NaN(), err
		}
		lo = prev + delta
	}

	eq, err := chareq.Cutoff(len(f.layers), md.Family, md.Nu, f.profileAt)
	if err != nil {
		return math.NaN(), err
	}
	opts := f.scanOptions(delta, f.cfg.CutoffMaxIter)
	if points != nil {
		opts.Points = points(md)
	}
	return rootfind.FindFirstRoot(f.counted(eq), lo, math.NaN(), delta, opts)
}

// scanOptions builds the root finder options for a scan of step delta.
func (f *Fiber) scanOptions(delta float64, maxIter int) rootfind.Options {
	// just under the floor, so that a step of exactly delta*floor is tried
	floor := math.Abs(delta) * f.cfg.RetryFloor * (1 - 1e-9)
	return rootfind.Options{
		Tolerance: f.cfg.Tolerance,
		MaxIter:   maxIter,
		Shrink:    f.cfg.Shrink,
		MinDelta:  floor,
		MaxDepth:  f.cfg.MaxDepth,
		Trace:     f.trace,
	}
}

// counted counts the evaluations of eq.
func (f *Fiber) counted(eq rootfind.Func) rootfind.Func {
	if f.rec == nil {
		return eq
	}
	return func(x float64) float64 {
		f.rec.Evaluation()
		return eq(x)
	}
}

func (f *Fiber) record(kind string, err error) {
	result := metrics.ResultFound
	switch {
	case err == nil:
	case errors.Is(err, ErrNotGuided):
		result = metrics.ResultNotGuided
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
	}
	f.rec.Solve(kind, result)
}
