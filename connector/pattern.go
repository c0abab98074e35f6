// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"
	"log"
	"sync"

	"github.com/emer/emergent/v2/prjn"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/param"
)

// Pattern connects the populations with an emergent projection pattern
// (prjn.Full, prjn.UnifRnd, prjn.PoolTile ...), laid out on one
// dimensional shapes.  The pattern is computed once per binding;
// connection k of post neuron p (in ascending pre order) has index
// st[p]+k, st[p] being the number of connections of the post neurons
// before p.
type Pattern struct {
	Base
	Pat prjn.Pattern `desc:"pattern of connectivity"`

	cons *patternCache
}

type patternCache struct {
	once  sync.Once
	pre   [][]int // sorted pre neurons of each post neuron
	st    []int32 // index of the first connection of each post neuron
	total int

	// statistics of the number of connections of each neuron
	SConNAvgMax minmax.AvgMax32
	RConNAvgMax minmax.AvgMax32
}

func NewPattern(pat prjn.Pattern) *Pattern {
	pt := &Pattern{Pat: pat}
	pt.initBase(pt)
	pt.cons = &patternCache{}
	return pt
}

func (pt *Pattern) String() string {
	return fmt.Sprintf("%s(pattern=%s, weights=%v, delays=%v)", pt.Name(), pt.Pat.Name(), pt.Weights(), pt.Delays())
}

func (pt *Pattern) name() string      { return "PatternConnector" }
func (pt *Pattern) allowsLists() bool { return true }
func (pt *Pattern) onMachine() bool   { return false }
func (pt *Pattern) info() []uint32    { return nil }
func (pt *Pattern) nTotal() int       { return pt.connect().total }

func (pt *Pattern) bind() error {
	pt.cons = &patternCache{}
	if pt.Pat == nil {
		return fmt.Errorf("%w: Pat is nil", param.ErrUnsupportedParameterFormat)
	}
	return nil
}

// ConNAvgMax returns the statistics of the number of connections of each
// pre (send) and each post (recv) neuron.
func (pt *Pattern) ConNAvgMax() (send, recv minmax.AvgMax32, err error) {
	if err := pt.checkReady(); err != nil {
		return send, recv, err
	}
	pc := pt.connect()
	return pc.SConNAvgMax, pc.RConNAvgMax, nil
}

// connect computes the pattern on first use.
func (pt *Pattern) connect() *patternCache {
	pc := pt.cons
	pc.once.Do(func() {
		slen, rlen := pt.Bnd.PreSize, pt.Bnd.PostSize
		ssh := etensor.NewShape([]int{slen}, nil, nil)
		rsh := etensor.NewShape([]int{rlen}, nil, nil)
		// the pattern only sees one population when self connections are
		// excluded, so AllowSelf decides the diagonal, not the pattern
		sendn, recvn, cons := pt.Pat.Connect(ssh, rsh, pt.excludeSelf())
		var sst []int32
		tcons := setNIndexSt(&pc.SConNAvgMax, &sst, sendn)
		tconr := setNIndexSt(&pc.RConNAvgMax, &pc.st, recvn)
		if tconr != tcons {
			log.Printf("%v programmer error: total recv cons %v != total send cons %v\n", pt.Name(), tconr, tcons)
		}
		pc.pre = make([][]int, rlen)
		cbits := cons.Values
		for ri := 0; ri < rlen; ri++ {
			rbi := ri * slen // recv bit index
			for si := 0; si < slen; si++ {
				if cbits.Index(rbi + si) {
					pc.pre[ri] = append(pc.pre[ri], si)
				}
			}
			if n := len(pc.pre[ri]); n != int(recvn.Values[ri]) {
				log.Printf("%v programmer error: recv idx %v has %v cons, pattern counted %v\n", pt.Name(), ri, n, recvn.Values[ri])
			}
		}
		pc.total = int(tconr)
	})
	return pc
}

// setNIndexSt sets the start index of the connections of each neuron from
// the n tensor of the pattern, returning the total number of connections.
func setNIndexSt(avgmax *minmax.AvgMax32, idxst *[]int32, tn *etensor.Int32) int32 {
	ln := tn.Len()
	tnv := tn.Values
	*idxst = make([]int32, ln)
	idx := int32(0)
	avgmax.Init()
	for i := 0; i < ln; i++ {
		nv := tnv[i]
		(*idxst)[i] = idx
		idx += nv
		avgmax.UpdateVal(float32(nv), int32(i))
	}
	avgmax.CalcAvg()
	return idx
}

func (pt *Pattern) conns(pre, post Slice) (*param.Conns, error) {
	pc := pt.connect()
	self := pt.excludeSelf()
	cn := param.NewConns(0)
	for p := post.Lo; p <= post.Hi; p++ {
		for k, s := range pc.pre[p] {
			if !pre.Contains(s) || (self && s == p) {
				continue
			}
			cn.Add(uint64(int(pc.st[p])+k), s, p)
		}
	}
	return cn, nil
}
