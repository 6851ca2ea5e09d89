package chareq

import (
	"math"

	"github.com/meenmo/fibermodes/special"
)

// Two-layer closed forms. With core radius r, core index nco and cladding
// index ncl:
//
//	u = k0 r sqrt(nco² - neff²)    w = k0 r sqrt(neff² - ncl²)

func stepUW(p Profile, neff float64) (u, w, nco, ncl float64) {
	nco, ncl = p.Layers[0].Index, p.Layers[1].Index
	rk0 := p.Layers[0].Radius * p.K0
	u = rk0 * math.Sqrt(nco*nco-neff*neff)
	w = rk0 * math.Sqrt(neff*neff-ncl*ncl)
	return u, w, nco, ncl
}

func stepLP(p Profile, nu int, neff float64) float64 {
	u, w, _, _ := stepUW(p, neff)
	return u*special.J(nu-1, u)*special.K(nu, w) + w*special.J(nu, u)*special.K(nu-1, w)
}

func stepTE(p Profile, _ int, neff float64) float64 {
	u, w, _, _ := stepUW(p, neff)
	return u*math.J0(u)*special.K(1, w) + w*math.J1(u)*special.K(0, w)
}

func stepTM(p Profile, _ int, neff float64) float64 {
	u, w, nco, ncl := stepUW(p, neff)
	return u*math.J0(u)*special.K(1, w)*ncl*ncl + w*math.J1(u)*special.K(0, w)*nco*nco
}

func stepHE(p Profile, nu int, neff float64) float64 { return stepHybrid(p, nu, neff, 1) }

func stepEH(p Profile, nu int, neff float64) float64 { return stepHybrid(p, nu, neff, -1) }

// stepHybrid is the exact hybrid-mode equation; HE takes the + root and EH
// the - root of the quadratic in J'/J.
func stepHybrid(p Profile, nu int, neff, root float64) float64 {
	u, w, nco, ncl := stepUW(p, neff)
	if u == 0 || w == 0 {
		return math.Inf(1)
	}
	v2 := u*u + w*w
	delta := (1 - ncl*ncl/(nco*nco)) / 2
	jnu := special.J(nu, u)
	knu := special.K(nu, w)
	kp := special.KP(nu, w)

	a := u * kp * delta
	b := float64(nu) * neff * v2 * knu / (nco * u * w)
	return special.JP(nu, u)*w*knu +
		kp*u*jnu*(1-delta) +
		root*jnu*math.Sqrt(a*a+b*b)
}

// stepHECutoff vanishes at the cutoff of HE(nu>=2, m) of a two-layer fiber:
//
//	(1 + n0²) J_{nu-2}(V) - (1 - n0²) J_nu(V),   n0² = nco²/ncl²
func stepHECutoff(at ProfileAt, nu int, v0 float64) float64 {
	p := at(v0)
	nco, ncl := p.Layers[0].Index, p.Layers[1].Index
	n02 := nco * nco / (ncl * ncl)
	return (1+n02)*special.J(nu-2, v0) - (1-n02)*special.J(nu, v0)
}
