// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package distrib

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the expected value of d.
func Mean(d Dist) (float64, error) {
	m, err := d.model()
	if err != nil {
		return 0, err
	}
	return m.mean(), nil
}

// Variance returns the variance of d.
func Variance(d Dist) (float64, error) {
	m, err := d.model()
	if err != nil {
		return 0, err
	}
	return m.variance(), nil
}

// StdDev returns the standard deviation of d.
func StdDev(d Dist) (float64, error) {
	v, err := Variance(d)
	return math.Sqrt(v), err
}

// CDF returns P(X <= x).
func CDF(d Dist, x float64) (float64, error) {
	m, err := d.model()
	if err != nil {
		return 0, err
	}
	return m.cdf(x), nil
}

// Quantile returns the inverse CDF of d at p.  For discrete distributions
// this is the smallest value v with P(X <= v) >= p.
func Quantile(d Dist, p float64) (float64, error) {
	m, err := d.model()
	if err != nil {
		return 0, err
	}
	return m.quantile(p), nil
}

// bonferroni returns chance / n, treating n < 1 as 1.
func bonferroni(n int, chance float64) float64 {
	if n < 1 {
		n = 1
	}
	return chance / float64(n)
}

// MaxProbable returns the value v with P(X <= v) = 1 - chance/n, so that the
// probability of any one of n independent draws exceeding v stays below
// chance.
func MaxProbable(d Dist, n int, chance float64) (float64, error) {
	return Quantile(d, 1-bonferroni(n, chance))
}

// MinProbable returns the value v with P(X <= v) = chance/n.
func MinProbable(d Dist, n int, chance float64) (float64, error) {
	return Quantile(d, bonferroni(n, chance))
}

// ProbInRange returns the probability that a draw of d falls in [lo, hi].
func ProbInRange(d Dist, lo, hi float64) (float64, error) {
	m, err := d.model()
	if err != nil {
		return 0, err
	}
	if hi < lo {
		return 0, nil
	}
	slo, shi := m.support()
	below, upto := 0.0, 1.0
	switch {
	case lo <= slo:
	case d.IsDiscrete():
		below = m.cdf(math.Ceil(lo) - 1)
	default:
		below = m.cdf(lo)
	}
	if hi < shi {
		upto = m.cdf(hi)
	}
	return math.Min(math.Max(upto-below, 0), 1), nil
}

// ProbableMaxSelected returns the likely maximum number of items selected
// out of nSelected independent trials of probability p, corrected for
// nTotal such selections being made.
func ProbableMaxSelected(nTotal, nSelected int, p, chance float64) float64 {
	switch {
	case nSelected <= 0 || p <= 0:
		return 0
	case p >= 1:
		return float64(nSelected)
	}
	bd := binomial{distuv.Binomial{N: float64(nSelected), P: p}}
	return bd.quantile(1 - bonferroni(nTotal, chance))
}

// Sampler returns a function that draws values of d using src as the
// source of randomness.
func Sampler(d Dist, src rand.Source) (func() float64, error) {
	m, err := d.model()
	if err != nil {
		return nil, err
	}
	return m.sampler(src), nil
}

// Sample draws n values of d from src.
func Sample(d Dist, src rand.Source, n int) ([]float64, error) {
	gen, err := Sampler(d, src)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = gen()
	}
	return vals, nil
}
