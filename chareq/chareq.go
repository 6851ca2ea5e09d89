// Package chareq builds the characteristic equations of layered step-index
// fibers: scalar functions whose real roots are mode effective indices
// (neff) or cutoff normalized frequencies (V0).
//
// Two families of builders exist. The step-index tables hold the
// closed forms of two-layer fibers; the transfer-matrix table matches
// tangential fields across any number of layers. Which table serves a
// request is decided by the caller through a Strategy, never by the
// type of the fiber.
//
// Equations return +Inf at singular sample points (zero denominators, a
// layer index equal to neff, singular interface systems). Root scanners
// treat such samples as unusable rather than as failures.
package chareq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
)

// ErrUnimplemented marks a family or layer count with no equation.
var ErrUnimplemented = errors.New("chareq: unimplemented")

// ErrInvalidProfile is returned for unusable layer stacks.
var ErrInvalidProfile = errors.New("chareq: invalid profile")

// UnimplementedError names the request that has no equation.
type UnimplementedError struct {
	Kind   string // "neff" or "cutoff"
	Family mode.Family
	Layers int
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("chareq: no %s equation for %v with %d layers", e.Kind, e.Family, e.Layers)
}

func (e *UnimplementedError) Unwrap() error { return ErrUnimplemented }

// Layer is one homogeneous layer at a fixed wavelength. Radius is the
// outer radius in meters; the cladding has Radius = +Inf.
type Layer struct {
	Radius float64
	Index  float64
}

// Profile is a layer stack evaluated at one wavelength.
type Profile struct {
	K0     float64
	Layers []Layer
}

// Validate checks the stack: at least two layers, strictly increasing
// radii, infinite cladding, positive finite indices.
func (p Profile) Validate() error {
	if len(p.Layers) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidProfile, len(p.Layers))
	}
	if !(p.K0 > 0) || math.IsInf(p.K0, 0) {
		return fmt.Errorf("%w: k0 = %g", ErrInvalidProfile, p.K0)
	}
	prev := 0.0
	for i, l := range p.Layers {
		if !(l.Index > 0) || math.IsInf(l.Index, 0) {
			return fmt.Errorf("%w: layer %d index %g", ErrInvalidProfile, i, l.Index)
		}
		last := i == len(p.Layers)-1
		if last != math.IsInf(l.Radius, 1) {
			return fmt.Errorf("%w: only the last layer has infinite radius", ErrInvalidProfile)
		}
		if !(l.Radius > prev) {
			return fmt.Errorf("%w: radii must increase (layer %d: %g)", ErrInvalidProfile, i, l.Radius)
		}
		prev = l.Radius
	}
	return nil
}

// NMax is the highest layer index.
func (p Profile) NMax() float64 { return floats.Max(p.Indices()) }

// Indices lists the layer indices, innermost first.
func (p Profile) Indices() []float64 {
	n := make([]float64, len(p.Layers))
	for i, l := range p.Layers {
		n[i] = l.Index
	}
	return n
}

// NCladding is the index of the outer layer.
func (p Profile) NCladding() float64 { return p.Layers[len(p.Layers)-1].Index }

// CoreRadius is the radius of the last finite layer.
func (p Profile) CoreRadius() float64 { return p.Layers[len(p.Layers)-2].Radius }

// Strategy selects an equation table.
type Strategy int

const (
	// StepIndex uses the two-layer closed forms.
	StepIndex Strategy = iota
	// TransferMatrix uses the N-layer boundary match.
	TransferMatrix
)

func (s Strategy) String() string {
	switch s {
	case StepIndex:
		return "step-index"
	case TransferMatrix:
		return "transfer-matrix"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// NeffEquation evaluates a characteristic function at neff.
type NeffEquation func(p Profile, nu int, neff float64) float64

// ProfileAt returns the stack at the wavelength matching a normalized
// frequency v0 for the fixed geometry.
type ProfileAt func(v0 float64) Profile

// CutoffEquation evaluates a cutoff characteristic function at v0.
type CutoffEquation func(at ProfileAt, nu int, v0 float64) float64

var neffTables = map[Strategy]map[mode.Family]NeffEquation{
	StepIndex: {
		mode.LP: stepLP,
		mode.TE: stepTE,
		mode.TM: stepTM,
		mode.HE: stepHE,
		mode.EH: stepEH,
	},
	TransferMatrix: {
		mode.LP: transferLP,
		mode.TE: transferTE,
		mode.TM: transferTM,
		mode.HE: transferHybrid,
		mode.EH: transferHybrid,
	},
}

// cutoffTables is keyed by layer count.
var cutoffTables = map[int]map[mode.Family]CutoffEquation{
	2: {
		mode.HE: stepHECutoff,
	},
	3: {
		mode.LP: threeLP,
		mode.TE: threeTE,
		mode.TM: threeTM,
		mode.HE: threeHE,
		mode.EH: threeEH,
	},
}

// Neff returns the characteristic function of family f, order nu, in
// neff, for profile p.
func Neff(s Strategy, f mode.Family, nu int, p Profile) (rootfind.Func, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s == StepIndex && len(p.Layers) != 2 {
		return nil, &UnimplementedError{Kind: "neff", Family: f, Layers: len(p.Layers)}
	}
	eq, ok := neffTables[s][f]
	if !ok {
		return nil, &UnimplementedError{Kind: "neff", Family: f, Layers: len(p.Layers)}
	}
	return func(neff float64) float64 {
		return guard(eq(p, nu, neff))
	}, nil
}

// HasCutoff reports whether a cutoff equation exists for the request.
func HasCutoff(layers int, f mode.Family) bool {
	_, ok := cutoffTables[layers][f]
	return ok
}

// Cutoff returns the cutoff characteristic function of family f, order
// nu, in v0, for a fiber with the given number of layers.
func Cutoff(layers int, f mode.Family, nu int, at ProfileAt) (rootfind.Func, error) {
	eq, ok := cutoffTables[layers][f]
	if !ok {
		return nil, &UnimplementedError{Kind: "cutoff", Family: f, Layers: layers}
	}
	return func(v0 float64) float64 {
		return guard(eq(at, nu, v0))
	}, nil
}

// guard maps undefined values to +Inf.
func guard(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1)
	}
	return v
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
