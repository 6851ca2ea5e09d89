package chareq

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/fibermodes/special"
)

// Transfer-matrix equations for any number of layers.
//
// Lengths are normalized by k0 (rho = k0 r) and magnetic fields by the
// free-space impedance (H~ = eta0 H), which leaves every root unchanged.
// In layer i the longitudinal fields are
//
//	Ez = A f1(kappa rho) + B f2(kappa rho)
//	Hz = C f1(kappa rho) + D f2(kappa rho)
//
// with kappa = sqrt|n² - neff²| and (f1, f2) = (J, Y) when neff < n, (I, K)
// otherwise. The core keeps only f1. The tangential components follow from
//
//	Ephi = p (neff nu Ez / rho - dHz/drho)
//	Hphi = p (n² dEz/drho - neff nu Hz / rho),   p = 1/(n² - neff²)
//
// Near neff = n_core the core fields vanish like kappa^nu while p diverges,
// which gives the hybrid determinant a spurious zero there for nu >= 2 and
// a jump for nu = 1. The core fields are therefore divided by their
// small-argument size (kappa rho / 2)^nu / nu!, and the hybrid
// determinant is multiplied by n_core² - neff².

// basis is the radial solution pair of one layer.
type basis struct {
	n, kappa, p float64
	osc         bool
}

func newBasis(n, neff float64) (basis, bool) {
	d := n*n - neff*neff
	if d == 0 {
		return basis{}, false
	}
	return basis{n: n, kappa: math.Sqrt(math.Abs(d)), p: 1 / d, osc: d > 0}, true
}

// eval returns f1, f2 and their derivatives with respect to rho.
func (b basis) eval(nu int, rho float64) (f1, f2, d1, d2 float64) {
	x := b.kappa * rho
	if b.osc {
		return special.J(nu, x), special.Y(nu, x), b.kappa * special.JP(nu, x), b.kappa * special.YP(nu, x)
	}
	return special.I(nu, x), special.K(nu, x), b.kappa * special.IP(nu, x), b.kappa * special.KP(nu, x)
}

// fieldMatrix maps (A, B, C, D) to (Ez, Hz, Ephi, Hphi) at rho.
func (b basis) fieldMatrix(nu int, neff, rho float64) *mat.Dense {
	f1, f2, d1, d2 := b.eval(nu, rho)
	a := b.p * neff * float64(nu) / rho
	n2 := b.n * b.n
	return mat.NewDense(4, 4, []float64{
		f1, f2, 0, 0,
		0, 0, f1, f2,
		a * f1, a * f2, -b.p * d1, -b.p * d2,
		b.p * n2 * d1, b.p * n2 * d2, -a * f1, -a * f2,
	})
}

// leading is (kappa rho / 2)^nu / nu!, the size of f1 for small arguments.
func (b basis) leading(nu int, rho float64) float64 {
	if nu == 0 {
		return 1
	}
	lg, _ := math.Lgamma(float64(nu + 1))
	return math.Exp(float64(nu)*math.Log(b.kappa*rho/2) - lg)
}

// coreEval is eval restricted to f1, scaled by leading.
func (b basis) coreEval(nu int, rho float64) (f1, d1 float64) {
	f1, _, d1, _ = b.eval(nu, rho)
	s := b.leading(nu, rho)
	return f1 / s, d1 / s
}

// coreFields returns the 4x2 field matrix at the core boundary for unit
// A (column 0) and unit C (column 1), scaled by leading.
func (b basis) coreFields(nu int, neff, rho float64) *mat.Dense {
	f1, d1 := b.coreEval(nu, rho)
	a := b.p * neff * float64(nu) / rho
	return mat.NewDense(4, 2, []float64{
		f1, 0,
		0, f1,
		a * f1, -b.p * d1,
		b.p * b.n * b.n * d1, -a * f1,
	})
}

// solve returns x with m x = rhs, or false when m is singular.
// Ill-conditioning alone is tolerated.
func solve(m, rhs mat.Matrix) (*mat.Dense, bool) {
	var lu mat.LU
	lu.Factorize(m)
	var x mat.Dense
	err := lu.SolveTo(&x, false, rhs)
	// an exactly singular m leaves x unset
	if x.IsEmpty() {
		return nil, false
	}
	if err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, false
		}
	}
	return &x, true
}

// propagate carries the core fields to the last interface. It returns the
// field matrix there and the normalized radius of that interface.
func propagate(p Profile, nu int, neff float64, start func(*mat.Dense) *mat.Dense) (*mat.Dense, float64, bool) {
	k0 := p.K0
	core, ok := newBasis(p.Layers[0].Index, neff)
	if !ok {
		return nil, 0, false
	}
	rho := k0 * p.Layers[0].Radius
	eh := start(core.coreFields(nu, neff, rho))

	for i := 1; i < len(p.Layers)-1; i++ {
		b, ok := newBasis(p.Layers[i].Index, neff)
		if !ok {
			return nil, 0, false
		}
		coef, ok := solve(b.fieldMatrix(nu, neff, rho), eh)
		if !ok {
			return nil, 0, false
		}
		rho = k0 * p.Layers[i].Radius
		var next mat.Dense
		next.Mul(b.fieldMatrix(nu, neff, rho), coef)
		eh = &next
	}
	return eh, rho, true
}

// claddingArg returns u = kappa_cl rho at the last interface.
func claddingArg(p Profile, neff, rho float64) (float64, bool) {
	ncl := p.NCladding()
	d := neff*neff - ncl*ncl
	if d == 0 {
		return 0, false
	}
	return rho * math.Sqrt(math.Abs(d)), true
}

func transferHybrid(p Profile, nu int, neff float64) float64 {
	eh, rho, ok := propagate(p, nu, neff, func(c *mat.Dense) *mat.Dense { return c })
	if !ok {
		return math.Inf(1)
	}
	u, ok := claddingArg(p, neff, rho)
	if !ok {
		return math.Inf(1)
	}
	ncl := p.NCladding()
	f4 := special.KP(nu, u) / special.K(nu, u)
	c1 := -rho / u
	c2 := neff * float64(nu) / u * c1
	c4 := ncl * ncl * c1

	var e, h [2]float64
	for j := 0; j < 2; j++ {
		ez, hz := eh.At(0, j), eh.At(1, j)
		e[j] = eh.At(2, j) - (c2*ez - c1*f4*hz)
		h[j] = eh.At(3, j) - (c4*f4*ez - c2*hz)
	}
	nco := p.Layers[0].Index
	return (nco*nco - neff*neff) * (e[0]*h[1] - e[1]*h[0])
}

func column(j int) func(*mat.Dense) *mat.Dense {
	return func(c *mat.Dense) *mat.Dense {
		return mat.DenseCopyOf(c.Slice(0, 4, j, j+1))
	}
}

func transferTE(p Profile, _ int, neff float64) float64 {
	eh, rho, ok := propagate(p, 0, neff, column(1))
	if !ok {
		return math.Inf(1)
	}
	u, ok := claddingArg(p, neff, rho)
	if !ok {
		return math.Inf(1)
	}
	hz, ephi := eh.At(1, 0), eh.At(2, 0)
	return ephi + rho/u*hz*special.K(1, u)/special.K(0, u)
}

func transferTM(p Profile, _ int, neff float64) float64 {
	eh, rho, ok := propagate(p, 0, neff, column(0))
	if !ok {
		return math.Inf(1)
	}
	u, ok := claddingArg(p, neff, rho)
	if !ok {
		return math.Inf(1)
	}
	ncl := p.NCladding()
	ez, hphi := eh.At(0, 0), eh.At(3, 0)
	return hphi - rho/u*ncl*ncl*ez*special.K(1, u)/special.K(0, u)
}

// transferLP matches the scalar field psi and rho dpsi/drho across
// interfaces; the cladding must carry K_nu alone.
func transferLP(p Profile, nu int, neff float64) float64 {
	k0 := p.K0
	core, ok := newBasis(p.Layers[0].Index, neff)
	if !ok {
		return math.Inf(1)
	}
	rho := k0 * p.Layers[0].Radius
	f1, d1 := core.coreEval(nu, rho)
	psi, rpsi := f1, rho*d1

	for i := 1; i < len(p.Layers)-1; i++ {
		b, ok := newBasis(p.Layers[i].Index, neff)
		if !ok {
			return math.Inf(1)
		}
		g1, g2, e1, e2 := b.eval(nu, rho)
		m := mat.NewDense(2, 2, []float64{
			g1, g2,
			rho * e1, rho * e2,
		})
		coef, ok := solve(m, mat.NewVecDense(2, []float64{psi, rpsi}))
		if !ok {
			return math.Inf(1)
		}
		a, c := coef.At(0, 0), coef.At(1, 0)
		rho = k0 * p.Layers[i].Radius
		g1, g2, e1, e2 = b.eval(nu, rho)
		psi = a*g1 + c*g2
		rpsi = rho * (a*e1 + c*e2)
	}

	u, ok := claddingArg(p, neff, rho)
	if !ok {
		return math.Inf(1)
	}
	return u*special.KP(nu, u)*psi - special.K(nu, u)*rpsi
}
