// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package distrib

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// model is the closed-form machinery behind one Dist.
type model interface {
	cdf(x float64) float64
	quantile(p float64) float64
	mean() float64
	variance() float64
	support() (lo, hi float64)
	sampler(src rand.Source) func() float64
}

func (d Dist) model() (model, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	p := d.Params
	switch d.Name {
	case Uniform:
		return continuous{dist: distuv.Uniform{Min: p[0], Max: p[1]}, lo: p[0], hi: p[1],
			mk: func(src rand.Source) univariate { return distuv.Uniform{Min: p[0], Max: p[1], Src: src} }}, nil
	case Normal:
		return continuous{dist: distuv.Normal{Mu: p[0], Sigma: p[1]}, lo: math.Inf(-1), hi: math.Inf(1),
			mk: func(src rand.Source) univariate { return distuv.Normal{Mu: p[0], Sigma: p[1], Src: src} }}, nil
	case Exponential:
		return continuous{dist: distuv.Exponential{Rate: 1 / p[0]}, lo: 0, hi: math.Inf(1),
			mk: func(src rand.Source) univariate { return distuv.Exponential{Rate: 1 / p[0], Src: src} }}, nil
	case LogNormal:
		return continuous{dist: distuv.LogNormal{Mu: p[0], Sigma: p[1]}, lo: 0, hi: math.Inf(1),
			mk: func(src rand.Source) univariate { return distuv.LogNormal{Mu: p[0], Sigma: p[1], Src: src} }}, nil
	case Gamma:
		return continuous{dist: distuv.Gamma{Alpha: p[0], Beta: 1 / p[1]}, lo: 0, hi: math.Inf(1),
			mk: func(src rand.Source) univariate { return distuv.Gamma{Alpha: p[0], Beta: 1 / p[1], Src: src} }}, nil
	case NormalClipped:
		return newTruncNormal(p[0], p[1], p[2], p[3]), nil
	case NormalClippedToBoundary:
		return boundaryNormal{mu: p[0], sigma: p[1], lo: p[2], hi: p[3]}, nil
	case UniformInt, RandInt:
		return randInt{lo: math.Ceil(p[0]), hi: math.Ceil(p[1])}, nil
	case Poisson:
		return poisson{distuv.Poisson{Lambda: p[0]}}, nil
	case Binomial:
		return binomial{distuv.Binomial{N: p[0], P: p[1]}}, nil
	case VonMises:
		return newVonMises(p[0], p[1]), nil
	}
	return nil, ErrUnsupportedDistribution
}

// univariate is the method set shared by the continuous gonum distributions.
type univariate interface {
	CDF(x float64) float64
	Quantile(p float64) float64
	Mean() float64
	Variance() float64
	Rand() float64
}

// continuous wraps a gonum distribution that has an inverse CDF.
type continuous struct {
	dist   univariate
	lo, hi float64
	mk     func(src rand.Source) univariate
}

func (c continuous) cdf(x float64) float64       { return c.dist.CDF(x) }
func (c continuous) mean() float64               { return c.dist.Mean() }
func (c continuous) variance() float64           { return c.dist.Variance() }
func (c continuous) support() (float64, float64) { return c.lo, c.hi }

func (c continuous) quantile(p float64) float64 {
	switch {
	case p <= 0:
		return c.lo
	case p >= 1:
		return c.hi
	}
	return c.dist.Quantile(p)
}

func (c continuous) sampler(src rand.Source) func() float64 {
	return c.mk(src).Rand
}

//////////////////////////////////////////////////////////////////////////////////////
//  Normal variants

// truncNormal is a normal conditioned on lying inside [lo, hi]
type truncNormal struct {
	mu, sigma, lo, hi float64
	a, b, z           float64 // standardized bounds and mass inside
}

func newTruncNormal(mu, sigma, lo, hi float64) truncNormal {
	tn := truncNormal{mu: mu, sigma: sigma, lo: lo, hi: hi}
	tn.a = (lo - mu) / sigma
	tn.b = (hi - mu) / sigma
	tn.z = distuv.UnitNormal.CDF(tn.b) - distuv.UnitNormal.CDF(tn.a)
	return tn
}

// xphi returns x * phi(x), which is 0 at the infinities
func xphi(x float64) float64 {
	if math.IsInf(x, 0) {
		return 0
	}
	return x * distuv.UnitNormal.Prob(x)
}

func (tn truncNormal) cdf(x float64) float64 {
	switch {
	case x < tn.lo:
		return 0
	case x >= tn.hi:
		return 1
	}
	return (distuv.UnitNormal.CDF((x-tn.mu)/tn.sigma) - distuv.UnitNormal.CDF(tn.a)) / tn.z
}

func (tn truncNormal) quantile(p float64) float64 {
	switch {
	case p <= 0:
		return tn.lo
	case p >= 1:
		return tn.hi
	}
	q := distuv.UnitNormal.Quantile(distuv.UnitNormal.CDF(tn.a) + p*tn.z)
	return math.Min(math.Max(tn.mu+tn.sigma*q, tn.lo), tn.hi)
}

func (tn truncNormal) mean() float64 {
	pa, pb := distuv.UnitNormal.Prob(tn.a), distuv.UnitNormal.Prob(tn.b)
	return tn.mu + tn.sigma*(pa-pb)/tn.z
}

func (tn truncNormal) variance() float64 {
	pa, pb := distuv.UnitNormal.Prob(tn.a), distuv.UnitNormal.Prob(tn.b)
	r := (pa - pb) / tn.z
	return tn.sigma * tn.sigma * (1 + (xphi(tn.a)-xphi(tn.b))/tn.z - r*r)
}

func (tn truncNormal) support() (float64, float64) { return tn.lo, tn.hi }

// sampler uses inverse transform sampling, so that exactly one uniform
// deviate is consumed per value.
func (tn truncNormal) sampler(src rand.Source) func() float64 {
	r := rand.New(src)
	return func() float64 { return tn.quantile(r.Float64()) }
}

// boundaryNormal is a normal whose values outside [lo, hi] are moved onto
// the nearest boundary, giving point masses at lo and hi.
type boundaryNormal struct {
	mu, sigma, lo, hi float64
}

func (bn boundaryNormal) cdf(x float64) float64 {
	switch {
	case x < bn.lo:
		return 0
	case x >= bn.hi:
		return 1
	}
	return distuv.UnitNormal.CDF((x - bn.mu) / bn.sigma)
}

func (bn boundaryNormal) quantile(p float64) float64 {
	q := bn.mu + bn.sigma*distuv.UnitNormal.Quantile(math.Min(math.Max(p, 0), 1))
	return math.Min(math.Max(q, bn.lo), bn.hi)
}

func (bn boundaryNormal) moments() (m1, m2 float64) {
	a := (bn.lo - bn.mu) / bn.sigma
	b := (bn.hi - bn.mu) / bn.sigma
	pa, pb := distuv.UnitNormal.Prob(a), distuv.UnitNormal.Prob(b)
	ca, cb := distuv.UnitNormal.CDF(a), distuv.UnitNormal.CDF(b)
	z := cb - ca
	s := bn.sigma
	m1 = atom(bn.lo, ca) + atom(bn.hi, 1-cb) + bn.mu*z + s*(pa-pb)
	m2 = atom(bn.lo*bn.lo, ca) + atom(bn.hi*bn.hi, 1-cb) +
		bn.mu*bn.mu*z + 2*bn.mu*s*(pa-pb) + s*s*(z+xphi(a)-xphi(b))
	return
}

// atom is the contribution x*p of a point mass, 0 when the mass is 0
// (including at an infinite boundary).
func atom(x, p float64) float64 {
	if p == 0 {
		return 0
	}
	return x * p
}

func (bn boundaryNormal) mean() float64 {
	m1, _ := bn.moments()
	return m1
}

func (bn boundaryNormal) variance() float64 {
	m1, m2 := bn.moments()
	return math.Max(m2-m1*m1, 0)
}

func (bn boundaryNormal) support() (float64, float64) { return bn.lo, bn.hi }

func (bn boundaryNormal) sampler(src rand.Source) func() float64 {
	nd := distuv.Normal{Mu: bn.mu, Sigma: bn.sigma, Src: src}
	return func() float64 { return math.Min(math.Max(nd.Rand(), bn.lo), bn.hi) }
}

//////////////////////////////////////////////////////////////////////////////////////
//  Discrete

// discreteQuantile returns the smallest integer k in [lo, hi] with
// cdf(k) >= p.  hi may be +Inf, in which case the upper bracket is found by
// doubling from start.
func discreteQuantile(cdf func(float64) float64, p, lo, hi, start float64) float64 {
	const tol = 1e-12
	if p <= 0 {
		return lo
	}
	if p >= 1 {
		return hi
	}
	top := hi
	if math.IsInf(hi, 1) {
		top = math.Max(math.Ceil(start), lo)
		step := math.Max(top-lo, 1)
		for cdf(top) < p-tol {
			top += step
			step *= 2
		}
	}
	bot := lo - 1 // cdf(lo-1) == 0 < p
	for top-bot > 1 {
		mid := math.Floor((bot + top) / 2)
		if cdf(mid) >= p-tol {
			top = mid
		} else {
			bot = mid
		}
	}
	return top
}

// randInt is the discrete uniform over lo..hi-1
type randInt struct {
	lo, hi float64
}

func (ri randInt) n() float64 { return ri.hi - ri.lo }

func (ri randInt) cdf(x float64) float64 {
	k := math.Floor(x)
	switch {
	case k < ri.lo:
		return 0
	case k >= ri.hi-1:
		return 1
	}
	return (k - ri.lo + 1) / ri.n()
}

func (ri randInt) quantile(p float64) float64 {
	return discreteQuantile(ri.cdf, p, ri.lo, ri.hi-1, ri.lo)
}

func (ri randInt) mean() float64     { return (ri.lo + ri.hi - 1) / 2 }
func (ri randInt) variance() float64 { return (ri.n()*ri.n() - 1) / 12 }
func (ri randInt) support() (float64, float64) {
	return ri.lo, ri.hi - 1
}

func (ri randInt) sampler(src rand.Source) func() float64 {
	r := rand.New(src)
	n := uint64(ri.n())
	return func() float64 { return ri.lo + float64(r.Uint64n(n)) }
}

type poisson struct {
	distuv.Poisson
}

func (pd poisson) cdf(x float64) float64 { return pd.CDF(x) }
func (pd poisson) quantile(p float64) float64 {
	return discreteQuantile(pd.CDF, p, 0, math.Inf(1), pd.Lambda)
}
func (pd poisson) mean() float64               { return pd.Mean() }
func (pd poisson) variance() float64           { return pd.Variance() }
func (pd poisson) support() (float64, float64) { return 0, math.Inf(1) }
func (pd poisson) sampler(src rand.Source) func() float64 {
	ds := distuv.Poisson{Lambda: pd.Lambda, Src: src}
	return ds.Rand
}

type binomial struct {
	distuv.Binomial
}

func (bd binomial) cdf(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x >= bd.N:
		return 1
	}
	return bd.CDF(x)
}
func (bd binomial) quantile(p float64) float64 {
	return discreteQuantile(bd.cdf, p, 0, bd.N, bd.N*bd.P)
}
func (bd binomial) mean() float64               { return bd.N * bd.P }
func (bd binomial) variance() float64           { return bd.N * bd.P * (1 - bd.P) }
func (bd binomial) support() (float64, float64) { return 0, bd.N }
func (bd binomial) sampler(src rand.Source) func() float64 {
	if bd.N == 0 || bd.P == 0 {
		return func() float64 { return 0 }
	}
	if bd.P == 1 {
		return func() float64 { return bd.N }
	}
	ds := distuv.Binomial{N: bd.N, P: bd.P, Src: src}
	return ds.Rand
}

//////////////////////////////////////////////////////////////////////////////////////
//  von Mises

// vonMises has support [mu-pi, mu+pi].  Its CDF and variance have no closed
// form and are integrated numerically.
type vonMises struct {
	mu, kappa float64
	norm      float64 // integral of the scaled density over the support
}

const vmNodes = 256

func newVonMises(mu, kappa float64) vonMises {
	vm := vonMises{mu: mu, kappa: kappa}
	vm.norm = quad.Fixed(vm.scaled, -math.Pi, math.Pi, vmNodes, nil, 0)
	return vm
}

// scaled is the density at offset t from mu, up to the constant norm.
// exp(kappa*(cos t - 1)) keeps the exponent <= 0 for large kappa.
func (vm vonMises) scaled(t float64) float64 {
	return math.Exp(vm.kappa * (math.Cos(t) - 1))
}

func (vm vonMises) cdf(x float64) float64 {
	t := x - vm.mu
	switch {
	case t <= -math.Pi:
		return 0
	case t >= math.Pi:
		return 1
	}
	return quad.Fixed(vm.scaled, -math.Pi, t, vmNodes, nil, 0) / vm.norm
}

func (vm vonMises) quantile(p float64) float64 {
	lo, hi := -math.Pi, math.Pi
	switch {
	case p <= 0:
		return vm.mu + lo
	case p >= 1:
		return vm.mu + hi
	}
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if vm.cdf(vm.mu+mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return vm.mu + 0.5*(lo+hi)
}

func (vm vonMises) mean() float64 { return vm.mu }

func (vm vonMises) variance() float64 {
	sq := func(t float64) float64 { return t * t * vm.scaled(t) }
	return quad.Fixed(sq, -math.Pi, math.Pi, vmNodes, nil, 0) / vm.norm
}

func (vm vonMises) support() (float64, float64) { return vm.mu - math.Pi, vm.mu + math.Pi }

// sampler implements the Best & Fisher (1979) rejection algorithm.
func (vm vonMises) sampler(src rand.Source) func() float64 {
	r := rand.New(src)
	if vm.kappa < 1e-6 {
		return func() float64 { return vm.mu + math.Pi*(2*r.Float64()-1) }
	}
	tau := 1 + math.Sqrt(1+4*vm.kappa*vm.kappa)
	rho := (tau - math.Sqrt(2*tau)) / (2 * vm.kappa)
	rr := (1 + rho*rho) / (2 * rho)
	return func() float64 {
		for {
			u1, u2, u3 := r.Float64(), r.Float64(), r.Float64()
			z := math.Cos(math.Pi * u1)
			f := math.Min(math.Max((1+rr*z)/(rr+z), -1), 1)
			c := vm.kappa * (rr - f)
			if c*(2-c)-u2 > 0 || math.Log(c/u2)+1-c >= 0 {
				th := math.Acos(f)
				if u3 < 0.5 {
					th = -th
				}
				return vm.mu + th
			}
		}
	}
}
