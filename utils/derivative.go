package utils

import (
	"fmt"
	"math"
)

// stencil identifies a finite-difference rule: derivative order, number
// of points and index of the point at which the derivative is taken.
type stencil struct {
	order, points, center int
}

// stencils holds integer weights; the derivative is
// order! / ((points-1)! h^order) * sum(w[i] f(x + (i-center) h)).
var stencils = map[stencil][]float64{
	{1, 3, 0}: {-3, 4, -1},
	{1, 3, 1}: {-1, 0, 1},
	{1, 3, 2}: {1, -4, 3},
	{1, 4, 0}: {-11, 18, -9, 2},
	{1, 4, 1}: {-2, -3, 6, -1},
	{1, 4, 2}: {1, -6, 3, 2},
	{1, 4, 3}: {-2, 9, -18, 11},
	{1, 5, 0}: {-50, 96, -72, 32, -6},
	{1, 5, 1}: {-6, -20, 36, -12, 2},
	{1, 5, 2}: {2, -16, 0, 16, -2},
	{1, 5, 3}: {-2, 12, -36, 20, 6},
	{1, 5, 4}: {6, -32, 72, -96, 50},
	{1, 6, 0}: {-274, 600, -600, 400, -150, 24},
	{1, 6, 1}: {-24, -130, 240, -120, 40, -6},
	{1, 6, 2}: {6, -60, -40, 120, -30, 4},
	{1, 6, 3}: {-4, 30, -120, 40, 60, -6},
	{1, 6, 4}: {6, -40, 120, -240, 130, 24},
	{1, 6, 5}: {-24, 150, -400, 600, -600, 274},

	{2, 3, 0}: {1, -2, 1},
	{2, 3, 1}: {1, -2, 1},
	{2, 3, 2}: {1, -2, 1},
	{2, 4, 0}: {6, -15, 12, -3},
	{2, 4, 1}: {3, -6, 3, 0},
	{2, 4, 2}: {0, 3, -6, 3},
	{2, 4, 3}: {-3, 12, -15, 6},
	{2, 5, 0}: {35, -104, 114, -56, 11},
	{2, 5, 1}: {11, -20, 6, 4, -1},
	{2, 5, 2}: {-1, 16, -30, 16, -1},
	{2, 5, 3}: {-1, 4, 6, -20, 11},
	{2, 5, 4}: {11, -56, 114, -104, 35},
	{2, 6, 0}: {225, -770, 1070, -780, 305, -50},
	{2, 6, 1}: {50, -75, -20, 70, -30, 5},
	{2, 6, 2}: {-5, 80, -150, 80, -5, 0},
	{2, 6, 3}: {0, -5, 80, -150, 80, -5},
	{2, 6, 4}: {5, -30, 70, -20, -75, 50},
	{2, 6, 5}: {-50, 305, -780, 1070, -770, 225},

	{3, 4, 0}: {-1, 3, -3, 1},
	{3, 4, 1}: {-1, 3, -3, 1},
	{3, 4, 2}: {-1, 3, -3, 1},
	{3, 4, 3}: {-1, 3, -3, 1},
	{3, 5, 0}: {-10, 36, -48, 28, -6},
	{3, 5, 1}: {-6, 20, -24, 12, -2},
	{3, 5, 2}: {-2, 4, 0, -4, 2},
	{3, 5, 3}: {2, -12, 24, -20, 6},
	{3, 5, 4}: {6, -28, 48, -36, 10},
	{3, 6, 0}: {-85, 355, -590, 490, -205, 35},
	{3, 6, 1}: {-35, 125, -170, 110, -35, 5},
	{3, 6, 2}: {-5, -5, 50, -70, 35, -5},
	{3, 6, 3}: {5, -35, 70, -50, 5, 5},
	{3, 6, 4}: {-5, 35, -110, 170, -125, 35},
	{3, 6, 5}: {-35, 205, -490, 590, -355, 85},

	{4, 5, 0}: {1, -4, 6, -4, 1},
	{4, 5, 1}: {1, -4, 6, -4, 1},
	{4, 5, 2}: {1, -4, 6, -4, 1},
	{4, 5, 3}: {1, -4, 6, -4, 1},
	{4, 5, 4}: {1, -4, 6, -4, 1},
	{4, 6, 0}: {15, -70, 130, -120, 55, -10},
	{4, 6, 1}: {10, -45, 80, -70, 30, -5},
	{4, 6, 2}: {5, -20, 30, -20, 5, 0},
	{4, 6, 3}: {0, 5, -20, 30, -20, 5},
	{4, 6, 4}: {-5, 30, -70, 80, -45, 10},
	{4, 6, 5}: {-10, 55, -120, 130, -70, 15},

	{5, 6, 0}: {-1, 5, -10, 10, -5, 1},
	{5, 6, 1}: {-1, 5, -10, 10, -5, 1},
	{5, 6, 2}: {-1, 5, -10, 10, -5, 1},
	{5, 6, 3}: {-1, 5, -10, 10, -5, 1},
	{5, 6, 4}: {-1, 5, -10, 10, -5, 1},
	{5, 6, 5}: {-1, 5, -10, 10, -5, 1},
}

// Derivative approximates the order-th derivative of f at x with an
// equally spaced stencil of the given number of points, spacing h, where
// x is the center-th point (0-based). Orders 1 to 5 and 3 to 6 points are
// supported; an order needs at least order+1 points.
//
// Any NaN sample makes the result NaN.
func Derivative(f func(float64) float64, x float64, order, points, center int, h float64) (float64, error) {
	w, ok := stencils[stencil{order, points, center}]
	if !ok {
		return math.NaN(), fmt.Errorf("utils: no %d-point stencil for derivative order %d at point %d", points, order, center)
	}
	if !(h > 0) {
		return math.NaN(), fmt.Errorf("utils: derivative spacing must be positive, got %g", h)
	}
	sum := 0.0
	for i, c := range w {
		if c == 0 {
			continue
		}
		sum += c * f(x+float64(i-center)*h)
	}
	scale := factorial(order) / (factorial(points-1) * math.Pow(h, float64(order)))
	return scale * sum, nil
}

// CentralDerivative is the 5-point central rule for orders 1 to 4.
func CentralDerivative(f func(float64) float64, x float64, order int, h float64) (float64, error) {
	return Derivative(f, x, order, 5, 2, h)
}

func factorial(n int) float64 {
	r := 1.0
	for i := 2; i <= n; i++ {
		r *= float64(i)
	}
	return r
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
