package config

import (
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// LayerSpec is one layer of a FiberSpec. The cladding leaves Radius
// unset.
type LayerSpec struct {
	Radius float64 `yaml:"radius,omitempty"`
	Index  float64 `yaml:"index"`
}

// FiberSpec describes a step-index fiber with constant layer indices,
// innermost layer first. Radii are outer radii in meters.
type FiberSpec struct {
	Name   string      `yaml:"name,omitempty"`
	Layers []LayerSpec `yaml:"layers"`
}

// NewFiberSpec pairs len(indices)-1 finite radii with indices; the last
// index is the cladding.
func NewFiberSpec(radii, indices []float64) (FiberSpec, error) {
	if len(indices) != len(radii)+1 {
		return FiberSpec{}, fmt.Errorf("%w: %d radii need %d indices, got %d",
			ErrInvalidConfig, len(radii), len(radii)+1, len(indices))
	}
	s := FiberSpec{Layers: make([]LayerSpec, len(indices))}
	for i, n := range indices {
		s.Layers[i].Index = n
		if i < len(radii) {
			s.Layers[i].Radius = radii[i]
		}
	}
	return s, s.Validate()
}

// ReadFiberSpec decodes a YAML fiber description.
func ReadFiberSpec(r io.Reader) (FiberSpec, error) {
	var s FiberSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return FiberSpec{}, fmt.Errorf("config: decode fiber: %w", err)
	}
	return s, s.Validate()
}

// Validate checks layer count, increasing radii and positive indices.
func (s FiberSpec) Validate() error {
	if len(s.Layers) < 2 {
		return fmt.Errorf("%w: fiber needs at least 2 layers, got %d", ErrInvalidConfig, len(s.Layers))
	}
	prev := 0.0
	for i, l := range s.Layers {
		if !(l.Index > 0) || math.IsInf(l.Index, 0) {
			return fmt.Errorf("%w: layer %d index %g", ErrInvalidConfig, i, l.Index)
		}
		if i == len(s.Layers)-1 {
			if l.Radius != 0 && !math.IsInf(l.Radius, 1) {
				return fmt.Errorf("%w: cladding radius must be unset", ErrInvalidConfig)
			}
			break
		}
		if !(l.Radius > prev) || math.IsInf(l.Radius, 0) {
			return fmt.Errorf("%w: layer %d radius %g must exceed %g", ErrInvalidConfig, i, l.Radius, prev)
		}
		prev = l.Radius
	}
	return nil
}

// Radii returns the outer radii, +Inf for the cladding.
func (s FiberSpec) Radii() []float64 {
	out := make([]float64, len(s.Layers))
	for i, l := range s.Layers {
		out[i] = l.Radius
	}
	if len(out) > 0 {
		out[len(out)-1] = math.Inf(1)
	}
	return out
}

// Indices returns the layer indices.
func (s FiberSpec) Indices() []float64 {
	out := make([]float64, len(s.Layers))
	for i, l := range s.Layers {
		out[i] = l.Index
	}
	return out
}
