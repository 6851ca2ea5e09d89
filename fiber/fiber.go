// Package fiber solves the guided modes of cylindrical multi-layer
// step-index fibers.
//
// A Fiber is an immutable stack of layers plus a solve cache. Neff finds
// the effective index of a mode at a wavelength; Cutoff finds the
// normalized frequency V0 below which the mode is not guided. Both reuse
// the answers of related modes: the neff of a higher order mode is
// searched below the neff of its neighbor, and the cutoff of the m-th
// mode above the cutoff of the (m-1)-th. Results are cached per fiber, so
// a Fiber must not be shared between goroutines; give each worker its own.
//
// Failures to find a root are values, not faults: Neff and Cutoff return
// NaN with ErrNotFound or ErrNotGuided, which IsUnsupported recognizes.
package fiber

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-logr/logr"

	"github.com/meenmo/fibermodes/chareq"
	"github.com/meenmo/fibermodes/config"
	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/internal/metrics"
	"github.com/meenmo/fibermodes/material"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
	"github.com/meenmo/fibermodes/wavelength"
)

// Layer is one concentric layer. Radius is the outer radius in meters;
// the cladding, always last, has Radius = +Inf.
type Layer struct {
	Radius   float64
	Material material.Material
}

// Strategy selects the characteristic equations used for neff.
type Strategy int

const (
	// StrategyAuto uses closed forms for two-layer fibers and the transfer
	// matrix otherwise.
	StrategyAuto Strategy = iota
	// StrategyTransferMatrix uses the transfer matrix for every fiber.
	StrategyTransferMatrix
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyTransferMatrix:
		return "transfer-matrix"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy is the inverse of String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "transfer-matrix":
		return StrategyTransferMatrix, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
}

// Option configures a Fiber.
type Option func(*Fiber)

// WithLogger sets the logger. The default discards.
func WithLogger(l logr.Logger) Option {
	return func(f *Fiber) { f.log = l }
}

// WithRecorder sets the metrics recorder. Nil records nothing.
func WithRecorder(r *metrics.Recorder) Option {
	return func(f *Fiber) { f.rec = r }
}

// WithStrategy overrides the equation strategy.
func WithStrategy(s Strategy) Option {
	return func(f *Fiber) { f.strategy = s }
}

// WithTrace collects root finder diagnostics of every solve into t.
func WithTrace(t *rootfind.Trace) Option {
	return func(f *Fiber) { f.trace = t }
}

// WithConfig overrides the solver configuration. The default is
// config.GetConfig() at construction time.
func WithConfig(c config.Config) Option {
	return func(f *Fiber) { f.cfg = c }
}

// Fiber is an immutable layer stack with its solve cache.
type Fiber struct {
	layers   []Layer
	strategy Strategy
	cfg      config.Config
	log      logr.Logger
	rec      *metrics.Recorder
	trace    *rootfind.Trace

	neffs   map[neffKey]*entry
	cutoffs map[mode.Mode]*entry
}

// New checks the layers and builds a Fiber. The slice is copied, and
// adjacent layers of equal fixed index are merged, so Len may be smaller
// than len(layers).
func New(layers []Layer, opts ...Option) (*Fiber, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidLayers, len(layers))
	}
	prev := 0.0
	for i, l := range layers {
		if l.Material == nil {
			return nil, fmt.Errorf("%w: layer %d has no material", ErrInvalidLayers, i)
		}
		last := i == len(layers)-1
		if last != math.IsInf(l.Radius, 1) {
			return nil, fmt.Errorf("%w: the last layer, and only it, must have infinite radius", ErrInvalidLayers)
		}
		if !(l.Radius > prev) {
			return nil, fmt.Errorf("%w: layer %d radius %g must exceed %g", ErrInvalidLayers, i, l.Radius, prev)
		}
		prev = l.Radius
	}

	merged := mergeLayers(layers)
	if len(merged) < 2 {
		return nil, fmt.Errorf("%w: every layer has the cladding index", ErrInvalidLayers)
	}

	f := &Fiber{
		layers:  merged,
		cfg:     config.GetConfig(),
		log:     logr.Discard(),
		neffs:   map[neffKey]*entry{},
		cutoffs: map[mode.Mode]*entry{},
	}
	for _, o := range opts {
		o(f)
	}
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}
	f.seedCutoffs()
	return f, nil
}

// mergeLayers copies layers, folding each layer into the next one when
// both are the same fixed index. A ring of the core index is part of the
// core.
func mergeLayers(layers []Layer) []Layer {
	out := make([]Layer, 0, len(layers))
	for _, l := range layers {
		if n := len(out); n > 0 && sameFixed(out[n-1].Material, l.Material) {
			out[n-1].Radius = l.Radius
			continue
		}
		out = append(out, l)
	}
	return out
}

func sameFixed(a, b material.Material) bool {
	x, ok := a.(material.Fixed)
	if !ok {
		return false
	}
	y, ok := b.(material.Fixed)
	return ok && x == y
}

// NewStepIndex builds a fiber from constant indices: radii holds the
// len(indices)-1 finite outer radii.
func NewStepIndex(radii, indices []float64, opts ...Option) (*Fiber, error) {
	if len(indices) != len(radii)+1 {
		return nil, fmt.Errorf("%w: %d radii need %d indices, got %d",
			ErrInvalidLayers, len(radii), len(radii)+1, len(indices))
	}
	layers := make([]Layer, len(indices))
	for i, n := range indices {
		layers[i] = Layer{Radius: math.Inf(1), Material: material.Fixed(n)}
		if i < len(radii) {
			layers[i].Radius = radii[i]
		}
	}
	return New(layers, opts...)
}

// FromSpec builds a fiber from a config.FiberSpec.
func FromSpec(s config.FiberSpec, opts ...Option) (*Fiber, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayers, err)
	}
	radii := s.Radii()
	return NewStepIndex(radii[:len(radii)-1], s.Indices(), opts...)
}

// Len is the number of layers, cladding included.
func (f *Fiber) Len() int { return len(f.layers) }

// Layers returns a copy of the layer stack.
func (f *Fiber) Layers() []Layer { return append([]Layer(nil), f.layers...) }

// CoreRadius is the outer radius of the last finite layer, the length
// scale of V0.
func (f *Fiber) CoreRadius() float64 { return f.layers[len(f.layers)-2].Radius }

// Profile evaluates every layer index at wl.
func (f *Fiber) Profile(wl wavelength.Wavelength) chareq.Profile {
	p := chareq.Profile{K0: wl.K0(), Layers: make([]chareq.Layer, len(f.layers))}
	for i, l := range f.layers {
		p.Layers[i] = chareq.Layer{Radius: l.Radius, Index: l.Material.Index(wl)}
	}
	return p
}

// NMax is the highest layer index at wl.
func (f *Fiber) NMax(wl wavelength.Wavelength) float64 { return f.Profile(wl).NMax() }

// NCladding is the cladding index at wl.
func (f *Fiber) NCladding(wl wavelength.Wavelength) float64 {
	return f.layers[len(f.layers)-1].Material.Index(wl)
}

// NA is the numerical aperture sqrt(nmax² - ncl²). It is NaN when no layer
// is above the cladding.
func (f *Fiber) NA(wl wavelength.Wavelength) float64 {
	p := f.Profile(wl)
	n1, n2 := p.NMax(), p.NCladding()
	return math.Sqrt(n1*n1 - n2*n2)
}

// V0 is the normalized frequency k0 · r · NA, with r the core radius.
func (f *Fiber) V0(wl wavelength.Wavelength) float64 {
	return wl.K0() * f.CoreRadius() * f.NA(wl)
}

// ToWavelength inverts V0. Dispersive materials make NA depend on the
// wavelength, so the inversion is a fixed point iteration started at
// 1550 nm. V0 = 0 maps to +Inf.
func (f *Fiber) ToWavelength(v0 float64) wavelength.Wavelength {
	if v0 == 0 {
		return wavelength.Wavelength(math.Inf(1))
	}
	b := f.CoreRadius()
	wl0 := wavelength.Wavelength(1.55e-6)
	var wl wavelength.Wavelength
	i := 0
	for ; i < f.cfg.ToWavelengthMaxIter; i++ {
		wl = wavelength.Wavelength(2 * math.Pi / v0 * b * f.NA(wl0))
		if math.Abs(float64(wl-wl0)) < f.cfg.ToWavelengthTolerance {
			break
		}
		wl0 = wl
	}
	if i == f.cfg.ToWavelengthMaxIter {
		f.log.Info("V0 to wavelength did not converge", "v0", v0, "iterations", i)
	} else {
		f.log.V(logging.TRACE).Info("V0 to wavelength converged", "v0", v0, "iterations", i)
	}
	return wl
}

// profileAt is the chareq.ProfileAt of this fiber.
func (f *Fiber) profileAt(v0 float64) chareq.Profile {
	return f.Profile(f.ToWavelength(v0))
}
