package special

import (
	"math"

	"github.com/meenmo/fibermodes/rootfind"
)

const (
	zeroScanStep = 0.25
	zeroTol      = 1e-14
)

// JZeros returns the first m positive zeros of J_n, ascending.
func JZeros(n, m int) []float64 {
	if m <= 0 {
		return nil
	}
	if n < 0 {
		n = -n
	}
	f := func(x float64) float64 { return math.Jn(n, x) }

	zeros := make([]float64, 0, m)
	// J_n is positive on (0, n], its first zero lies above n.
	a := math.Max(float64(n), zeroScanStep)
	fa := f(a)
	for len(zeros) < m {
		b := a + zeroScanStep
		fb := f(b)
		if fb == 0 {
			zeros = append(zeros, b)
		} else if math.Signbit(fa) != math.Signbit(fb) && fa != 0 {
			z, err := rootfind.Brent(f, a, b, zeroTol)
			if err == nil {
				zeros = append(zeros, z)
			}
		}
		a, fa = b, fb
	}
	return zeros
}

// JZero returns the m-th positive zero of J_n (m >= 1).
func JZero(n, m int) float64 {
	if m <= 0 {
		return 0
	}
	return JZeros(n, m)[m-1]
}
