package chareq

import (
	"math"

	"github.com/meenmo/fibermodes/special"
)

// Cutoff equations of three-layer fibers (inner core r1 / n1, ring r2 / n2,
// cladding n3). Arguments are u_i = k0 sqrt|n_i² - n3²|; the sign s_i of
// n_i² - n3² selects ordinary or modified Bessel functions. The cases
// follow the ordering of the indices:
//
//	a: n1 > n3 > n2    b: n1 > n2 > n3    c: n2 > n3 > n1
//	d: n2 > n1 > n3    e: n1 = n3

type threeParams struct {
	u1r1, u2r1, u2r2 float64
	s1, s2           int
	n1sq, n2sq, n3sq float64
}

func threeLayerParams(at ProfileAt, v0 float64) threeParams {
	p := at(v0)
	r1, r2 := p.Layers[0].Radius, p.Layers[1].Radius
	n1sq := p.Layers[0].Index * p.Layers[0].Index
	n2sq := p.Layers[1].Index * p.Layers[1].Index
	n3sq := p.Layers[2].Index * p.Layers[2].Index
	k2 := p.K0 * p.K0
	usq1 := k2 * (n1sq - n3sq)
	usq2 := k2 * (n2sq - n3sq)
	u1 := math.Sqrt(math.Abs(usq1))
	u2 := math.Sqrt(math.Abs(usq2))
	return threeParams{
		u1r1: u1 * r1,
		u2r1: u2 * r1,
		u2r2: u2 * r2,
		s1:   sign(usq1),
		s2:   sign(usq2),
		n1sq: n1sq,
		n2sq: n2sq,
		n3sq: n3sq,
	}
}

// delta is the reduced boundary term shared by the hybrid cutoffs; s3
// picks the root of the quadratic. NaN when the roots are complex.
func (t threeParams) delta(nu int, s3 float64) float64 {
	fnu := float64(nu)
	var f float64
	if t.s1 < 0 {
		f = special.IP(nu, t.u1r1) / special.I(nu, t.u1r1) / t.u1r1
	} else {
		f = special.JP(nu, t.u1r1) / special.J(nu, t.u1r1) / t.u1r1
	}

	var kappa1, kappa2 float64
	if t.s1 == t.s2 {
		g := 1/(t.u1r1*t.u1r1) - 1/(t.u2r1*t.u2r1)
		kappa1 = -(t.n1sq + t.n2sq) * f / t.n2sq
		kappa2 = t.n1sq*f*f/t.n2sq - fnu*fnu*t.n3sq/t.n2sq*g*g
	} else {
		g := 1/(t.u1r1*t.u1r1) + 1/(t.u2r1*t.u2r1)
		kappa1 = (t.n1sq + t.n2sq) * f / t.n2sq
		kappa2 = t.n1sq*f*f/t.n2sq - fnu*fnu*t.n3sq/t.n2sq*g*g
	}

	d := kappa1*kappa1 - 4*kappa2
	if d < 0 {
		return math.NaN()
	}
	return t.u2r1 * (fnu/(t.u2r1*t.u2r1) + (kappa1+s3*math.Sqrt(d))*0.5)
}

func threeLP(at ProfileAt, nu int, v0 float64) float64 {
	t := threeLayerParams(at, v0)
	J, Y, I, K := special.J, special.Y, special.I, special.K

	if t.s1 == 0 { // e
		return J(nu+1, t.u2r1)*Y(nu-1, t.u2r2) - Y(nu+1, t.u2r1)*J(nu-1, t.u2r2)
	}

	var f11a, f11b float64
	if t.s1 > 0 {
		f11a, f11b = J(nu-1, t.u1r1), J(nu, t.u1r1)
	} else {
		f11a, f11b = I(nu-1, t.u1r1), I(nu, t.u1r1)
	}

	var f2a, f2b float64
	if t.s2 > 0 {
		f22a, f22b := J(nu-1, t.u2r2), Y(nu-1, t.u2r2)
		f2a = J(nu, t.u2r1)*f22b - Y(nu, t.u2r1)*f22a
		f2b = J(nu-1, t.u2r1)*f22b - Y(nu-1, t.u2r1)*f22a
	} else { // a
		f22a, f22b := I(nu-1, t.u2r2), K(nu-1, t.u2r2)
		f2a = I(nu, t.u2r1)*f22b + K(nu, t.u2r1)*f22a
		f2b = I(nu-1, t.u2r1)*f22b - K(nu-1, t.u2r1)*f22a
	}
	return f11a*f2a*t.u1r1 - f11b*f2b*t.u2r1
}

func threeTE(at ProfileAt, _ int, v0 float64) float64 {
	t := threeLayerParams(at, v0)
	J, Y, I, K := special.J, special.Y, special.I, special.K

	var f11a, f11b float64
	if t.s1 > 0 {
		f11a, f11b = J(0, t.u1r1), J(2, t.u1r1)
	} else {
		f11a, f11b = I(0, t.u1r1), -I(2, t.u1r1)
	}

	var f2a, f2b float64
	if t.s2 > 0 {
		f22a, f22b := J(0, t.u2r2), Y(0, t.u2r2)
		f2a = J(2, t.u2r1)*f22b - Y(2, t.u2r1)*f22a
		f2b = J(0, t.u2r1)*f22b - Y(0, t.u2r1)*f22a
	} else { // a
		f22a, f22b := I(0, t.u2r2), K(0, t.u2r2)
		f2a = K(2, t.u2r1)*f22a - I(2, t.u2r1)*f22b
		f2b = I(0, t.u2r1)*f22b - K(0, t.u2r1)*f22a
	}
	return f11a*f2a - f11b*f2b
}

func threeTM(at ProfileAt, _ int, v0 float64) float64 {
	t := threeLayerParams(at, v0)
	J, Y, I, K := special.J, special.Y, special.I, special.K

	var f11a, f11b float64
	switch {
	case t.s1 == 0: // e
		f11a, f11b = 2, 1
	case t.s1 > 0:
		f11a, f11b = J(0, t.u1r1)*t.u1r1, J(1, t.u1r1)
	default: // c
		f11a, f11b = I(0, t.u1r1)*t.u1r1, I(1, t.u1r1)
	}

	var f2a, f2b float64
	if t.s2 > 0 {
		f22a, f22b := J(0, t.u2r2), Y(0, t.u2r2)
		f2a = J(1, t.u2r1)*f22b - Y(1, t.u2r1)*f22a
		f2b = J(0, t.u2r1)*f22b - Y(0, t.u2r1)*f22a
	} else { // a
		f22a, f22b := I(0, t.u2r2), K(0, t.u2r2)
		f2a = I(1, t.u2r1)*f22b + K(1, t.u2r1)*f22a
		f2b = I(0, t.u2r1)*f22b - K(0, t.u2r1)*f22a
	}
	return f11a*t.n2sq*f2a - f11b*t.n1sq*f2b*t.u2r1
}

// hybridSign is the root selector of delta: +1 for EH, -1 for HE, flipped
// when the core does not oscillate slower than the ring, and again for
// nu = 1 with decreasing indices.
func (t threeParams) hybridSign(nu int, eh bool) float64 {
	s3 := -1.0
	if t.s1 > 0 && t.u1r1 < t.u2r1 {
		s3 = 1
	}
	if !eh {
		s3 = -s3
	}
	if nu == 1 && t.n1sq > t.n2sq && t.n2sq > t.n3sq {
		s3 = -s3
	}
	return s3
}

func threeEH(at ProfileAt, nu int, v0 float64) float64 {
	t := threeLayerParams(at, v0)
	J, Y, I, K := special.J, special.Y, special.I, special.K

	var delta0 float64
	if t.s1 == 0 {
		delta0 = (t.n3sq - t.n2sq) / (t.n3sq + t.n2sq)
	} else {
		delta0 = t.delta(nu, t.hybridSign(nu, true))
	}

	var f2a, f2b float64
	switch {
	case t.s1 == 0: // e
		f22a, f22b := J(nu, t.u2r2), Y(nu, t.u2r2)
		f2a = J(nu+2, t.u2r1)*f22b - Y(nu+2, t.u2r1)*f22a
		f2b = J(nu, t.u2r1)*f22b - Y(nu, t.u2r1)*f22a
	case t.s2 > 0: // b c d
		f22a, f22b := J(nu, t.u2r2), Y(nu, t.u2r2)
		f2a = J(nu+1, t.u2r1)*f22b - Y(nu+1, t.u2r1)*f22a
		f2b = J(nu, t.u2r1)*f22b - Y(nu, t.u2r1)*f22a
	default: // a
		f22a, f22b := I(nu, t.u2r2), K(nu, t.u2r2)
		f2a = I(nu+1, t.u2r1)*f22b + K(nu+1, t.u2r1)*f22a
		f2b = -I(nu, t.u2r1)*f22b + K(nu, t.u2r1)*f22a
	}
	return f2a - delta0*f2b
}

func threeHE(at ProfileAt, nu int, v0 float64) float64 {
	t := threeLayerParams(at, v0)
	J, Y, I, K := special.J, special.Y, special.I, special.K

	var f21a, f21b float64
	switch {
	case t.s1 == 0: // e
		f21a, f21b = J(nu, t.u2r1), Y(nu, t.u2r1)
	case t.s2 > 0:
		delta0 := t.delta(nu, t.hybridSign(nu, false))
		f21a = J(nu, t.u2r1)*delta0 - J(nu+1, t.u2r1)
		f21b = Y(nu, t.u2r1)*delta0 - Y(nu+1, t.u2r1)
	default:
		delta0 := t.delta(nu, t.hybridSign(nu, false))
		f21a = I(nu, t.u2r1)*delta0 + I(nu+1, t.u2r1)
		f21b = K(nu, t.u2r1)*delta0 - K(nu+1, t.u2r1)
	}
	n0sq := (t.n3sq - t.n2sq) / (t.n2sq + t.n3sq)

	var f2a, f2b float64
	if t.s2 > 0 {
		f2a = J(nu-2, t.u2r2)*f21b - Y(nu-2, t.u2r2)*f21a
		f2b = J(nu, t.u2r2)*f21b - Y(nu, t.u2r2)*f21a
	} else { // a
		f2a = I(nu-2, t.u2r2)*f21b - K(nu-2, t.u2r2)*f21a
		f2b = -I(nu, t.u2r2)*f21b + K(nu, t.u2r2)*f21a
	}
	return f2a - n0sq*f2b
}
