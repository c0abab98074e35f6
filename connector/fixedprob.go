// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"
	"math"

	"github.com/emer/spinnconn/param"
)

// FixedProbability connects each (pre, post) pair independently with
// probability P.  The draw of pair (i, j) comes from the connect stream of
// index i*PostSize+j, which is also the index of the connection, so no
// choice needs to be cached.
type FixedProbability struct {
	Base
	P float64 `min:"0" max:"1" desc:"probability of each connection"`
}

func NewFixedProbability(p float64, allowSelf bool) *FixedProbability {
	fp := &FixedProbability{P: p}
	fp.initBase(fp)
	fp.AllowSelf = allowSelf
	return fp
}

func (fp *FixedProbability) String() string {
	return fmt.Sprintf("%s(p=%g, allow_self=%v, weights=%v, delays=%v)", fp.Name(), fp.P, fp.AllowSelf, fp.Weights(), fp.Delays())
}

func (fp *FixedProbability) name() string      { return "FixedProbabilityConnector" }
func (fp *FixedProbability) allowsLists() bool { return false }
func (fp *FixedProbability) onMachine() bool   { return true }

// nTotal is the expected number of connections.
func (fp *FixedProbability) nTotal() int {
	return int(math.Ceil(fp.P * float64(fp.Bnd.PreSize) * float64(fp.Bnd.PostSize)))
}

func (fp *FixedProbability) bind() error {
	if fp.P < 0 || fp.P > 1 || math.IsNaN(fp.P) {
		return fmt.Errorf("connector: connection probability %v not in [0, 1]", fp.P)
	}
	return nil
}

func (fp *FixedProbability) info() []uint32 {
	return []uint32{math.Float32bits(float32(fp.P)), boolWord(fp.AllowSelf)}
}

func (fp *FixedProbability) conns(pre, post Slice) (*param.Conns, error) {
	self := fp.excludeSelf()
	np := fp.Bnd.PostSize
	st := fp.Bnd.RNG.Stream(SaltConnect, 0)
	cn := param.NewConns(int(fp.P*float64(pre.N()*post.N())) + 1)
	for p := post.Lo; p <= post.Hi; p++ {
		for s := pre.Lo; s <= pre.Hi; s++ {
			idx := uint64(s*np + p)
			st.Seed(idx)
			if st.Float64() >= fp.P || (self && s == p) {
				continue
			}
			cn.Add(idx, s, p)
		}
	}
	return cn, nil
}

// DistanceDependentProbability connects each (pre, post) pair with a
// probability given by an expression of the distance between them, drawn
// like FixedProbability.
type DistanceDependentProbability struct {
	Base
	Prob *param.Expr `desc:"connection probability as a function of distance d"`
}

// NewDistanceDependentProbability compiles the probability expression.
func NewDistanceDependentProbability(prob string, allowSelf bool) (*DistanceDependentProbability, error) {
	ex, err := param.CompileExpr(prob)
	if err != nil {
		return nil, err
	}
	dd := &DistanceDependentProbability{Prob: ex}
	dd.initBase(dd)
	dd.AllowSelf = allowSelf
	return dd, nil
}

func (dd *DistanceDependentProbability) String() string {
	return fmt.Sprintf("%s(d_expression=%q, allow_self=%v, weights=%v, delays=%v)", dd.Name(), dd.Prob.Text, dd.AllowSelf, dd.Weights(), dd.Delays())
}

func (dd *DistanceDependentProbability) name() string {
	return "DistanceDependentProbabilityConnector"
}
func (dd *DistanceDependentProbability) allowsLists() bool { return false }
func (dd *DistanceDependentProbability) onMachine() bool   { return false }
func (dd *DistanceDependentProbability) nTotal() int       { return dd.Bnd.PreSize * dd.Bnd.PostSize }
func (dd *DistanceDependentProbability) info() []uint32    { return []uint32{boolWord(dd.AllowSelf)} }

func (dd *DistanceDependentProbability) bind() error {
	bn := &dd.Bnd
	if bn.Space == nil || len(bn.PrePositions) != bn.PreSize || len(bn.PostPositions) != bn.PostSize {
		return fmt.Errorf("%w: %s needs a space and the position of every neuron", param.ErrMissingSpatialContext, dd.Name())
	}
	return nil
}

func (dd *DistanceDependentProbability) conns(pre, post Slice) (*param.Conns, error) {
	bn := &dd.Bnd
	dt := bn.Space.Distances(bn.PrePositions[pre.Lo:pre.Hi+1], bn.PostPositions[post.Lo:post.Hi+1], dd.Prob.PerAxis)
	nq := post.N()
	plane := pre.N() * nq
	eval := dd.Prob.Evaluator()
	self := dd.excludeSelf()
	st := bn.RNG.Stream(SaltConnect, 0)
	cn := param.NewConns(0)
	for p := post.Lo; p <= post.Hi; p++ {
		for s := pre.Lo; s <= pre.Hi; s++ {
			if self && s == p {
				continue
			}
			di := (s-pre.Lo)*nq + (p - post.Lo)
			var d float64
			var axes [3]float64
			if dd.Prob.PerAxis {
				for ax := range axes {
					axes[ax] = dt.Values[ax*plane+di]
				}
				d = math.Sqrt(axes[0]*axes[0] + axes[1]*axes[1] + axes[2]*axes[2])
			} else {
				d = dt.Values[di]
			}
			prob, err := eval(d, axes)
			if err != nil {
				return nil, err
			}
			idx := uint64(s*bn.PostSize + p)
			st.Seed(idx)
			if st.Float64() < prob {
				cn.Add(idx, s, p)
			}
		}
	}
	return cn, nil
}
