package fiber

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fibermodes/config"
	"github.com/meenmo/fibermodes/material"
	"github.com/meenmo/fibermodes/wavelength"
)

const (
	wl1550 = wavelength.Wavelength(1550e-9)
	wl800  = wavelength.Wavelength(800e-9)
)

func mustFiber(t *testing.T, radii, indices []float64, opts ...Option) *Fiber {
	t.Helper()
	f, err := NewStepIndex(radii, indices, opts...)
	require.NoError(t, err)
	return f
}

// smf is a standard single mode fiber at 1550 nm.
func smf(t *testing.T, opts ...Option) *Fiber {
	return mustFiber(t, []float64{4.5e-6}, []float64{1.448918, 1.444418}, opts...)
}

func TestNewRejectsBadLayers(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	tests := []struct {
		name   string
		layers []Layer
	}{
		{"one layer", []Layer{{inf, material.Fixed(1.44)}}},
		{"no material", []Layer{{1e-6, nil}, {inf, material.Fixed(1.44)}}},
		{"finite cladding", []Layer{{1e-6, material.Fixed(1.45)}, {2e-6, material.Fixed(1.44)}}},
		{"infinite core", []Layer{{inf, material.Fixed(1.45)}, {inf, material.Fixed(1.44)}}},
		{"decreasing radii", []Layer{
			{2e-6, material.Fixed(1.45)}, {1e-6, material.Fixed(1.46)}, {inf, material.Fixed(1.44)},
		}},
		{"uniform", []Layer{{1e-6, material.Fixed(1.44)}, {inf, material.Fixed(1.44)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.layers)
			assert.ErrorIs(t, err, ErrInvalidLayers)
		})
	}
}

func TestNewStepIndexCountMismatch(t *testing.T) {
	_, err := NewStepIndex([]float64{4e-6, 6e-6}, []float64{1.45, 1.44})
	assert.ErrorIs(t, err, ErrInvalidLayers)
}

func TestNewRejectsBadConfig(t *testing.T) {
	c := config.DefaultConfig
	c.Shrink = 1
	_, err := NewStepIndex([]float64{4e-6}, []float64{1.45, 1.44}, WithConfig(c))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewCopiesLayers(t *testing.T) {
	layers := []Layer{
		{4e-6, material.Fixed(1.45)},
		{math.Inf(1), material.Fixed(1.44)},
	}
	f, err := New(layers)
	require.NoError(t, err)
	layers[0].Radius = 1
	assert.Equal(t, 4e-6, f.CoreRadius())

	got := f.Layers()
	got[0].Radius = 2
	assert.Equal(t, 4e-6, f.CoreRadius())
}

func TestNewMergesEqualLayers(t *testing.T) {
	f := mustFiber(t, []float64{5e-6, 6e-6}, []float64{1.6, 1.6, 1.4})
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 6e-6, f.CoreRadius())

	// a ring of the cladding index belongs to the cladding
	f = mustFiber(t, []float64{4e-6, 6e-6}, []float64{1.45, 1.44, 1.44})
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 4e-6, f.CoreRadius())

	f = mustFiber(t, []float64{4e-6, 6e-6}, []float64{1.47, 1.43, 1.44})
	assert.Equal(t, 3, f.Len())
}

func TestNewKeepsDispersiveLayers(t *testing.T) {
	n := material.Func(func(wavelength.Wavelength) float64 { return 1.45 })
	f, err := New([]Layer{
		{4e-6, n},
		{6e-6, n},
		{math.Inf(1), material.Fixed(1.44)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
}

func TestFromSpec(t *testing.T) {
	spec, err := config.NewFiberSpec([]float64{4e-6, 6e-6}, []float64{1.47, 1.43, 1.44})
	require.NoError(t, err)

	f, err := FromSpec(spec)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 6e-6, f.CoreRadius())
	assert.Equal(t, 1.44, f.NCladding(wl1550))
	assert.Equal(t, 1.47, f.NMax(wl1550))

	_, err = FromSpec(config.FiberSpec{Layers: []config.LayerSpec{{Index: 1.44}}})
	assert.ErrorIs(t, err, ErrInvalidLayers)
}

func TestV0(t *testing.T) {
	t.Parallel()

	f := smf(t)
	assert.InDelta(t, 2.081451885288964, f.V0(wl1550), 1e-12)
	assert.InDelta(t, 4.032813027747368, f.V0(wl800), 1e-12)
	assert.InDelta(t, math.Sqrt(1.448918*1.448918-1.444418*1.444418), f.NA(wl1550), 1e-15)
}

func TestV0UsesOuterFiniteRadius(t *testing.T) {
	f := mustFiber(t, []float64{4e-6, 10e-6}, []float64{1.4444, 1.4489, 1.4444})
	assert.InDelta(t, 4.6254198580801145, f.V0(wl1550), 1e-12)
}

func TestToWavelength(t *testing.T) {
	t.Parallel()

	f := smf(t)
	for _, wl := range []wavelength.Wavelength{wl800, wl1550, 2e-6} {
		got := f.ToWavelength(f.V0(wl))
		assert.InDelta(t, float64(wl), float64(got), 1e-18, "%v", wl)
	}
	assert.True(t, math.IsInf(float64(f.ToWavelength(0)), 1))
}

func TestToWavelengthDispersive(t *testing.T) {
	t.Parallel()

	// the core index falls slowly with the wavelength
	core := material.Func(func(wl wavelength.Wavelength) float64 {
		return 1.4489 - 0.002*(wl.Meters()-1.55e-6)/1e-6
	})
	f, err := New([]Layer{
		{4.5e-6, core},
		{math.Inf(1), material.Fixed(1.4444)},
	})
	require.NoError(t, err)

	for _, wl := range []wavelength.Wavelength{1.3e-6, 1.55e-6} {
		got := f.ToWavelength(f.V0(wl))
		assert.InDelta(t, float64(wl), float64(got), 1e-14, "%v", wl)
	}
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "auto", StrategyAuto.String())
	assert.Equal(t, "transfer-matrix", StrategyTransferMatrix.String())
	assert.Equal(t, "Strategy(7)", Strategy(7).String())

	for _, s := range []Strategy{StrategyAuto, StrategyTransferMatrix} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("bisection")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func withNeffDelta(d float64) config.Config {
	c := config.DefaultConfig
	c.NeffDelta = d
	return c
}
