// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"fmt"
	"math"

	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/distrib"
	"github.com/emer/spinnconn/rng"
	"github.com/emer/spinnconn/space"
	"github.com/goki/mat32"
)

// Resolver turns a Source into per-connection values for a list of
// connections, or into statistics over them.  Distribution values are drawn
// from the stream keyed by (salt, connection index), so that the value of a
// connection does not depend on the slice it is generated in, on the order
// of generation, or on how many times it is generated.
type Resolver struct {
	RNG           rng.Source   `desc:"random source for distribution values"`
	Space         *space.Space `desc:"spatial metric for expressions, nil if none"`
	PrePositions  []mat32.Vec3 `desc:"positions of the pre-synaptic neurons"`
	PostPositions []mat32.Vec3 `desc:"positions of the post-synaptic neurons"`
	Chance        float64      `def:"0.01" desc:"probability allowed for any of n draws to exceed a probable bound"`
	Label         string       `desc:"name of the projection, for messages"`
}

func (rs *Resolver) chance() float64 {
	if rs.Chance <= 0 {
		return distrib.DefaultChance
	}
	return rs.Chance
}

// positions returns the pre and post positions of connection i.
func (rs *Resolver) positions(cn *Conns, i int) (mat32.Vec3, mat32.Vec3, error) {
	pre, post := cn.Pre[i], cn.Post[i]
	if pre >= len(rs.PrePositions) || post >= len(rs.PostPositions) {
		return mat32.Vec3{}, mat32.Vec3{}, fmt.Errorf("%w: no position for connection %d -> %d", ErrMissingSpatialContext, pre, post)
	}
	return rs.PrePositions[pre], rs.PostPositions[post], nil
}

// Values returns the value of src for each connection in cn.
func (rs *Resolver) Values(src Source, salt uint32, cn *Conns) ([]float64, error) {
	n := cn.Len()
	vals := make([]float64, n)
	if n == 0 {
		return vals, nil
	}
	switch src.Kind {
	case Scalar:
		for i := range vals {
			vals[i] = src.Scalar
		}
	case Distribution:
		rsrc := rs.RNG
		if rsrc == nil {
			rsrc = rng.NewPhilox(rng.DefaultSeed)
		}
		st := rsrc.Stream(salt, cn.Index[0])
		gen, err := distrib.Sampler(src.Dist, st)
		if err != nil {
			return nil, err
		}
		for i, idx := range cn.Index {
			st.Seed(idx)
			vals[i] = gen()
		}
	case Array:
		i := 0
		for _, rg := range cn.Ranges() {
			if rg[1] > uint64(len(src.Array)) {
				return nil, fmt.Errorf("%w: connection index %d, %d values", ErrInconsistentCardinality, rg[1]-1, len(src.Array))
			}
			i += copy(vals[i:], src.Array[rg[0]:rg[1]])
		}
	case Expression:
		if rs.Space == nil {
			return nil, fmt.Errorf("%w: projection %s", ErrMissingSpatialContext, rs.Label)
		}
		eval := src.Expr.Evaluator()
		for i := range vals {
			a, b, err := rs.positions(cn, i)
			if err != nil {
				return nil, err
			}
			axes := rs.Space.AxisDistances(a, b)
			v, err := eval(math.Sqrt(axes[0]*axes[0]+axes[1]*axes[1]+axes[2]*axes[2]), axes)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
	case Kernel:
		for i := range vals {
			vals[i] = src.Kern.Value(cn.Pre[i], cn.Post[i])
		}
	default:
		return nil, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
	}
	return vals, nil
}

// Weights returns the weights of cn as magnitudes.  In safe mode, weights
// of both signs are an error.
func (rs *Resolver) Weights(src Source, salt uint32, cn *Conns, safe bool) ([]float64, error) {
	ws, err := rs.Values(src, salt, cn)
	if err != nil {
		return nil, err
	}
	if safe && len(ws) > 0 {
		var rg minmax.F64
		rg.SetInfinity()
		for _, w := range ws {
			rg.FitValInRange(w)
		}
		if rg.Min < 0 && rg.Max > 0 {
			return nil, fmt.Errorf("%w: projection %s", ErrMixedSignWeights, rs.Label)
		}
	}
	for i, w := range ws {
		ws[i] = math.Abs(w)
	}
	return ws, nil
}

// explicit reports whether the values of src are given per connection, so
// that statistics are computed from the values themselves.
func explicit(src Source) bool {
	return src.Kind == Array || src.Kind == Expression || src.Kind == Kernel
}

func (rs *Resolver) explicitValues(src Source, cn *Conns, abs bool) ([]float64, error) {
	vals, err := rs.Values(src, 0, cn)
	if err != nil {
		return nil, err
	}
	if abs {
		for i, v := range vals {
			vals[i] = math.Abs(v)
		}
	}
	return vals, nil
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func varianceOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mn := meanOf(vals)
	ss := 0.0
	for _, v := range vals {
		ss += (v - mn) * (v - mn)
	}
	return ss / float64(len(vals))
}

// Mean returns the mean of src over the connections cn.
func (rs *Resolver) Mean(src Source, cn *Conns) (float64, error) {
	switch {
	case src.Kind == Scalar:
		return src.Scalar, nil
	case src.Kind == Distribution:
		return distrib.Mean(src.Dist)
	case explicit(src):
		vals, err := rs.explicitValues(src, cn, false)
		return meanOf(vals), err
	}
	return 0, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
}

// MagnitudeMean returns the mean magnitude of src over cn.
func (rs *Resolver) MagnitudeMean(src Source, cn *Conns) (float64, error) {
	if explicit(src) {
		vals, err := rs.explicitValues(src, cn, true)
		return meanOf(vals), err
	}
	mn, err := rs.Mean(src, cn)
	return math.Abs(mn), err
}

// Variance returns the variance of src over cn.
func (rs *Resolver) Variance(src Source, cn *Conns) (float64, error) {
	switch {
	case src.Kind == Scalar:
		return 0, nil
	case src.Kind == Distribution:
		return distrib.Variance(src.Dist)
	case explicit(src):
		vals, err := rs.explicitValues(src, cn, false)
		return varianceOf(vals), err
	}
	return 0, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
}

// MagnitudeVariance returns the variance of the magnitudes of src over cn.
func (rs *Resolver) MagnitudeVariance(src Source, cn *Conns) (float64, error) {
	if explicit(src) {
		vals, err := rs.explicitValues(src, cn, true)
		return varianceOf(vals), err
	}
	return rs.Variance(src, cn)
}

// Max returns the largest value src is expected to take over nConn
// connections.  For a distribution this is the probable maximum, limited
// by the hard upper bound of the distribution.
func (rs *Resolver) Max(src Source, nConn int, cn *Conns) (float64, error) {
	switch {
	case src.Kind == Scalar:
		return src.Scalar, nil
	case src.Kind == Distribution:
		mx, err := distrib.MaxProbable(src.Dist, nConn, rs.chance())
		if err != nil {
			return 0, err
		}
		return math.Min(mx, src.Dist.Bounds().Max), nil
	case explicit(src):
		vals, err := rs.explicitValues(src, cn, false)
		if err != nil || len(vals) == 0 {
			return 0, err
		}
		mx := math.Inf(-1)
		for _, v := range vals {
			mx = math.Max(mx, v)
		}
		return mx, nil
	}
	return 0, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
}

// Min returns the smallest value src is expected to take over nConn
// connections.
func (rs *Resolver) Min(src Source, nConn int, cn *Conns) (float64, error) {
	switch {
	case src.Kind == Scalar:
		return src.Scalar, nil
	case src.Kind == Distribution:
		mn, err := distrib.MinProbable(src.Dist, nConn, rs.chance())
		if err != nil {
			return 0, err
		}
		return math.Max(mn, src.Dist.Bounds().Min), nil
	case explicit(src):
		vals, err := rs.explicitValues(src, cn, false)
		if err != nil || len(vals) == 0 {
			return 0, err
		}
		mn := math.Inf(1)
		for _, v := range vals {
			mn = math.Min(mn, v)
		}
		return mn, nil
	}
	return 0, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
}

// MagnitudeMax returns the largest magnitude src is expected to take over
// nConn connections.
func (rs *Resolver) MagnitudeMax(src Source, nConn int, cn *Conns) (float64, error) {
	if explicit(src) {
		vals, err := rs.explicitValues(src, cn, true)
		mx := 0.0
		for _, v := range vals {
			mx = math.Max(mx, v)
		}
		return mx, err
	}
	mx, err := rs.Max(src, nConn, cn)
	if err != nil {
		return 0, err
	}
	mn, err := rs.Min(src, nConn, cn)
	if err != nil {
		return 0, err
	}
	return math.Max(math.Abs(mx), math.Abs(mn)), nil
}

// clippedInWindow returns the probability that max(X, floor) lies in the
// window, for X drawn from d.
func clippedInWindow(d distrib.Dist, floor float64, window minmax.F64) (float64, error) {
	switch {
	case floor > window.Max:
		return 0, nil
	case floor >= window.Min:
		return distrib.ProbInRange(d, math.Inf(-1), window.Max)
	}
	return distrib.ProbInRange(d, window.Min, window.Max)
}

// InWindow returns an upper bound on the number of connections from any one
// pre neuron whose value lies in the window, when values below floor are
// raised to floor.  nConn is the largest number of connections from one pre
// neuron, nTotal the number of connections in the whole projection, and cn
// the connections of the slice pair.
//
// Scalars are counted exactly, as are explicit values (arrays, expressions
// and kernels), per pre neuron.  For a distribution the count is the
// probable maximum of a binomial over nConn connections with the in-window
// probability, rounded up.
func (rs *Resolver) InWindow(src Source, nTotal, nConn int, cn *Conns, window minmax.F64, floor float64) (int, error) {
	if nConn <= 0 {
		return 0, nil
	}
	in := func(v float64) bool {
		v = math.Max(v, floor)
		return v >= window.Min && v <= window.Max
	}
	switch {
	case src.Kind == Scalar:
		if in(src.Scalar) {
			return nConn, nil
		}
		return 0, nil
	case src.Kind == Distribution:
		p, err := clippedInWindow(src.Dist, floor, window)
		if err != nil {
			return 0, err
		}
		return int(math.Ceil(distrib.ProbableMaxSelected(nTotal, nConn, p, rs.chance()))), nil
	case explicit(src):
		vals, err := rs.explicitValues(src, cn, false)
		if err != nil {
			return 0, err
		}
		return cn.MaxPerPre(func(i int) bool { return in(vals[i]) }), nil
	}
	return 0, fmt.Errorf("%w: kind %v", ErrUnsupportedParameterFormat, src.Kind)
}
