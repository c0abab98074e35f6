// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"encoding/csv"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"

	"github.com/emer/spinnconn/param"
)

// FixedNumberPre connects each post neuron to N pre neurons chosen
// uniformly from the whole pre population.  The choice for every post
// neuron is made once per binding and then filtered down to each slice
// pair, so slicing never changes which neurons are connected.
// Connection k of post neuron p (in ascending pre order) has index p*N+k.
type FixedNumberPre struct {
	Base
	N               int  `desc:"number of pre neurons connected to each post neuron"`
	WithReplacement bool `desc:"the same pre neuron may be chosen more than once for a post neuron"`

	choice *choiceCache
}

// choiceCache is the per-post sorted pre choice, built once.
type choiceCache struct {
	once sync.Once
	pre  [][]int
}

// NewFixedNumberPre returns a FixedNumberPre connecting n pre neurons to
// each post neuron.
func NewFixedNumberPre(n int, allowSelf, withReplacement bool) *FixedNumberPre {
	fp := &FixedNumberPre{N: n, WithReplacement: withReplacement}
	fp.initBase(fp)
	fp.AllowSelf = allowSelf
	fp.choice = &choiceCache{}
	return fp
}

func (fp *FixedNumberPre) String() string {
	return fmt.Sprintf("%s(n=%d, allow_self=%v, with_replacement=%v, weights=%v, delays=%v)",
		fp.Name(), fp.N, fp.AllowSelf, fp.WithReplacement, fp.Weights(), fp.Delays())
}

func (fp *FixedNumberPre) name() string     { return "FixedNumberPreConnector" }
func (fp *FixedNumberPre) allowsLists() bool { return true }
func (fp *FixedNumberPre) onMachine() bool   { return true }
func (fp *FixedNumberPre) nTotal() int       { return fp.N * fp.Bnd.PostSize }

func (fp *FixedNumberPre) bind() error {
	fp.choice = &choiceCache{}
	if fp.N < 0 {
		return fmt.Errorf("%w: n = %d", ErrInfeasibleFixedCount, fp.N)
	}
	if !fp.WithReplacement && fp.N > fp.Bnd.PreSize {
		return fmt.Errorf("%w: %d of %d pre neurons in %s without replacement", ErrInfeasibleFixedCount, fp.N, fp.Bnd.PreSize, fp.Bnd.Label())
	}
	return nil
}

func (fp *FixedNumberPre) info() []uint32 {
	return []uint32{uint32(fp.N), boolWord(fp.WithReplacement), boolWord(fp.AllowSelf)}
}

// Choice returns the sorted pre neurons of each post neuron, computing
// them on the first call after Bind.  Concurrent first calls wait for a
// single computation.
func (fp *FixedNumberPre) Choice() ([][]int, error) {
	if err := fp.checkReady(); err != nil {
		return nil, err
	}
	cc := fp.choice
	cc.once.Do(func() {
		pre := make([][]int, fp.Bnd.PostSize)
		for p := range pre {
			ch := fp.Bnd.RNG.Stream(SaltChoice, uint64(p)).Choose(fp.Bnd.PreSize, fp.N, fp.WithReplacement)
			sort.Ints(ch)
			pre[p] = ch
		}
		cc.pre = pre
		if fp.verbose != nil {
			if err := fp.dumpChoice(pre); err != nil {
				log.Println(err)
			}
		}
	})
	return cc.pre, nil
}

// dumpChoice writes the choice as CSV: a pre size, post size, n header
// line, then the pre neurons of each post neuron.
func (fp *FixedNumberPre) dumpChoice(pre [][]int) error {
	w := csv.NewWriter(fp.verbose)
	w.Write([]string{strconv.Itoa(fp.Bnd.PreSize), strconv.Itoa(fp.Bnd.PostSize), strconv.Itoa(fp.N)})
	for _, ch := range pre {
		rec := make([]string, len(ch))
		for i, s := range ch {
			rec[i] = strconv.Itoa(s)
		}
		w.Write(rec)
	}
	w.Flush()
	return w.Error()
}

func (fp *FixedNumberPre) conns(pre, post Slice) (*param.Conns, error) {
	choice, err := fp.Choice()
	if err != nil {
		return nil, err
	}
	self := fp.excludeSelf()
	cn := param.NewConns(0)
	for p := post.Lo; p <= post.Hi; p++ {
		ch := choice[p]
		for k := sort.SearchInts(ch, pre.Lo); k < len(ch) && ch[k] <= pre.Hi; k++ {
			if self && ch[k] == p {
				continue
			}
			cn.Add(uint64(p*fp.N+k), ch[k], p)
		}
	}
	return cn, nil
}
