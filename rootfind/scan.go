package rootfind

import (
	"errors"
	"math"
	"sort"
)

// Options tunes FindFirstRoot and FindBetween. Zero fields take the
// defaults of DefaultOptions.
type Options struct {
	// Tolerance is the absolute x tolerance of Brent refinement.
	Tolerance float64
	// MaxIter caps the samples taken by one scan pass.
	MaxIter int
	// Shrink divides delta when a scan pass runs out of iterations.
	Shrink float64
	// MinDelta is the retry floor: a pass that runs out of iterations is
	// retried with a smaller step while |delta| stays >= MinDelta. Zero
	// disables retries.
	MinDelta float64
	// MaxDepth caps the halving levels of FindBetween.
	MaxDepth int
	// Points are extra sample locations merged into the scan grid.
	Points []float64
	// Trace receives diagnostics when non-nil.
	Trace *Trace
}

// DefaultOptions mirrors the tolerances of a standard bracketed solver.
func DefaultOptions() Options {
	return Options{
		Tolerance: 2e-12,
		MaxIter:   1000000,
		Shrink:    10,
		MaxDepth:  16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Shrink <= 1 {
		o.Shrink = d.Shrink
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	return o
}

var errExhausted = errors.New("rootfind: iteration budget exhausted")

// FindFirstRoot steps from lowbound toward highbound by delta and returns
// the first acceptable root. A negative delta scans downward. A NaN
// highbound leaves the scan unbounded, limited only by opts.MaxIter.
//
// On a sign change between two finite samples a and b the root is refined
// with Brent and kept only when |f(root)| < |f(a)| and |f(root)| < |f(b)|;
// otherwise the sign change is taken to be a pole and the scan goes on.
// Non-finite samples never form a bracket.
//
// Stepping past highbound ends the search with ErrNotFound. A pass that
// spends opts.MaxIter samples is retried with delta/opts.Shrink down to
// opts.MinDelta.
func FindFirstRoot(f Func, lowbound, highbound, delta float64, opts Options) (float64, error) {
	opts = opts.withDefaults()
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) || math.IsNaN(lowbound) {
		return math.NaN(), &BoundError{Low: lowbound, High: highbound, Delta: delta, Reason: "unusable step"}
	}
	if !math.IsNaN(highbound) && (highbound-lowbound)*delta <= 0 {
		return math.NaN(), &BoundError{Low: lowbound, High: highbound, Delta: delta, Reason: "step does not move toward highbound"}
	}

	for d := delta; ; d /= opts.Shrink {
		x, err := scan(f, lowbound, highbound, d, opts)
		if err == nil {
			return x, nil
		}
		if !errors.Is(err, errExhausted) {
			return math.NaN(), err
		}
		next := d / opts.Shrink
		if opts.MinDelta <= 0 || math.Abs(next) < opts.MinDelta {
			return math.NaN(), ErrNotFound
		}
		opts.Trace.add(Event{Kind: EventRetry, A: lowbound, Delta: next})
	}
}

func scan(f Func, lo, hi, delta float64, opts Options) (float64, error) {
	bounded := !math.IsNaN(hi)
	dir := math.Copysign(1, delta)
	points := pendingPoints(opts.Points, lo, dir)

	a := lo
	fa := f(a)
	if fa == 0 {
		return a, nil
	}
	for i := 0; i < opts.MaxIter; i++ {
		b := a + delta
		if len(points) > 0 && (points[0]-b)*dir <= 0 {
			b = points[0]
			points = points[1:]
		}
		if bounded && (b-hi)*dir > 0 {
			opts.Trace.add(Event{Kind: EventOutOfRange, A: a, B: b, Delta: delta})
			return math.NaN(), ErrNotFound
		}
		fb := f(b)
		if fb == 0 {
			return b, nil
		}
		if x, ok := refine(f, a, b, fa, fb, opts); ok {
			return x, nil
		}
		a, fa = b, fb
	}
	opts.Trace.add(Event{Kind: EventExhausted, A: a, Delta: delta})
	return math.NaN(), errExhausted
}

// pendingPoints keeps the points strictly beyond lo, ordered along dir.
func pendingPoints(pts []float64, lo, dir float64) []float64 {
	out := make([]float64, 0, len(pts))
	for _, p := range pts {
		if (p-lo)*dir > 0 && !math.IsNaN(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i]*dir < out[j]*dir })
	return out
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// refine runs Brent on a sign change and applies the pole rejection rule.
func refine(f Func, a, b, fa, fb float64, opts Options) (float64, bool) {
	if !isFinite(fa) || !isFinite(fb) || math.Signbit(fa) == math.Signbit(fb) {
		return 0, false
	}
	lo, hi, flo, fhi := a, b, fa, fb
	if lo > hi {
		lo, hi, flo, fhi = hi, lo, fhi, flo
	}
	z, err := brent(f, lo, hi, flo, fhi, opts.Tolerance)
	if err != nil {
		opts.Trace.add(Event{Kind: EventBrentFailed, A: a, B: b, FA: fa, FB: fb})
		return 0, false
	}
	fz := f(z)
	ev := Event{A: a, B: b, FA: fa, FB: fb, X: z, FX: fz}
	if math.Abs(fz) < math.Abs(fa) && math.Abs(fz) < math.Abs(fb) {
		ev.Kind = EventRoot
		opts.Trace.add(ev)
		return z, true
	}
	ev.Kind = EventReject
	opts.Trace.add(ev)
	return 0, false
}

// FindBetween searches [lowbound, highbound] by repeated halving: every
// level checks each adjacent pair of samples for an acceptable root, then
// inserts the midpoints, up to opts.MaxDepth levels.
func FindBetween(f Func, lowbound, highbound float64, opts Options) (float64, error) {
	opts = opts.withDefaults()
	if !(lowbound < highbound) || math.IsInf(lowbound, 0) || math.IsInf(highbound, 0) {
		return math.NaN(), &BoundError{Low: lowbound, High: highbound, Reason: "lowbound must be below highbound"}
	}

	v := []float64{lowbound, highbound}
	s := []float64{f(lowbound), f(highbound)}
	for depth := 0; ; depth++ {
		for i := range v {
			if s[i] == 0 {
				return v[i], nil
			}
		}
		for i := 0; i+1 < len(v); i++ {
			if x, ok := refine(f, v[i], v[i+1], s[i], s[i+1], opts); ok {
				return x, nil
			}
		}
		if depth >= opts.MaxDepth {
			opts.Trace.add(Event{Kind: EventExhausted, A: lowbound, B: highbound, Depth: depth})
			return math.NaN(), ErrNotFound
		}
		opts.Trace.add(Event{Kind: EventDepth, Depth: depth + 1})

		nv := make([]float64, 0, 2*len(v)-1)
		ns := make([]float64, 0, 2*len(s)-1)
		for i := 0; i+1 < len(v); i++ {
			c := (v[i] + v[i+1]) / 2
			nv = append(nv, v[i], c)
			ns = append(ns, s[i], f(c))
		}
		v = append(nv, v[len(v)-1])
		s = append(ns, s[len(s)-1])
	}
}
