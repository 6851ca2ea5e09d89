package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivativeOfSine(t *testing.T) {
	x := 0.7
	want := []float64{math.Cos(x), -math.Sin(x), -math.Cos(x), math.Sin(x)}
	for order := 1; order <= 4; order++ {
		got, err := CentralDerivative(math.Sin, x, order, 1e-2)
		require.NoError(t, err)
		assert.InDelta(t, want[order-1], got, 1e-3, "order %d", order)
	}
}

func TestDerivativePolynomialExact(t *testing.T) {
	// A 4-point rule is exact on cubics.
	f := func(x float64) float64 { return 2*x*x*x - x + 3 }
	for center := 0; center < 4; center++ {
		d1, err := Derivative(f, 1.5, 1, 4, center, 0.1)
		require.NoError(t, err)
		assert.InDelta(t, 6*1.5*1.5-1, d1, 1e-9, "center %d", center)

		d3, err := Derivative(f, 1.5, 3, 4, center, 0.1)
		require.NoError(t, err)
		assert.InDelta(t, 12, d3, 1e-6, "center %d", center)
	}
}

func TestDerivativeFifthOrder(t *testing.T) {
	got, err := Derivative(math.Exp, 0, 5, 6, 3, 1e-2)
	require.NoError(t, err)
	assert.InDelta(t, 1, got, 0.05)
}

func TestDerivativeUnknownStencil(t *testing.T) {
	_, err := Derivative(math.Sin, 0, 4, 4, 0, 1e-3)
	assert.Error(t, err)

	_, err = Derivative(math.Sin, 0, 1, 3, 1, 0)
	assert.Error(t, err)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.4472, RoundTo(1.44722962, 4))
	assert.Equal(t, 3.0, RoundTo(2.9999999, 3))
}
