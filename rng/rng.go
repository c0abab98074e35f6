// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rng provides the random source bound to a projection.

Values are drawn from Philox2x32 counter-based streams (the same generator
the gosl GPU kernels use).  A stream is identified by a (salt, index) pair
rather than by how many values were drawn before it, so any worker can
regenerate the values for any connection without sharing generator state,
and the result does not depend on the order in which slices are processed.
*/
package rng

import (
	mrand "math/rand"

	"github.com/emer/emergent/v2/erand"
	"github.com/emer/spinnconn/distrib"
	"github.com/goki/gosl/slrand"
	"github.com/goki/gosl/sltype"
)

// DefaultSeed is used when a projection is bound without a random source.
const DefaultSeed = 0x5EED

// Source hands out deterministic random streams keyed by a salt, which
// separates independent uses (connectivity, weights, delays), and an index,
// typically a global connection or neuron index.
type Source interface {
	Stream(salt uint32, index uint64) *Stream
}

// Philox is a Source whose streams are Philox2x32 counter sequences.
type Philox struct {
	Seed uint32 `desc:"seed mixed into every stream key"`
}

// NewPhilox returns a Philox source with the given seed.
func NewPhilox(seed uint32) *Philox {
	return &Philox{Seed: seed}
}

// Stream returns the stream for (salt, index), positioned at its start.
func (px *Philox) Stream(salt uint32, index uint64) *Stream {
	st := &Stream{}
	st.Reset(px.Seed, salt, index)
	return st
}

// Stream is one deterministic sequence of random bits.  It implements the
// golang.org/x/exp/rand Source interface used by gonum and distrib.
// A Stream is not safe for concurrent use.
type Stream struct {
	base  uint32 // seed and salt mixed
	index uint64
	draw  uint32
}

// fmix is the murmur3 32 bit finalizer, a bijective bit mixer.
func fmix(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// Reset repositions the stream at the start of (salt, index) under seed.
func (st *Stream) Reset(seed, salt uint32, index uint64) {
	st.base = fmix(seed ^ fmix(salt*0x9E3779B1+1))
	st.index = index
	st.draw = 0
}

// Uint64 returns the next 64 random bits.
func (st *Stream) Uint64() uint64 {
	ctr := sltype.Uint2{X: uint32(st.index), Y: uint32(st.index >> 32)}
	key := fmix(st.base ^ (st.draw * 0x27D4EB2F))
	st.draw++
	r := slrand.Philox2x32(ctr, key)
	return uint64(r.X)<<32 | uint64(r.Y)
}

// Seed restarts the stream at a new index, keeping the seed and salt.
func (st *Stream) Seed(index uint64) {
	st.index = index
	st.draw = 0
}

// Float64 returns a uniform value in [0, 1).
func (st *Stream) Float64() float64 {
	return float64(st.Uint64()>>11) / (1 << 53)
}

// Intn returns a uniform integer in [0, n).
func (st *Stream) Intn(n int) int {
	return int(st.Float64() * float64(n))
}

// Next draws n values of d from the stream.
func (st *Stream) Next(n int, d distrib.Dist) ([]float64, error) {
	return distrib.Sample(d, st, n)
}

// source64 adapts a Stream to the math/rand Source64 interface.
type source64 struct {
	st *Stream
}

func (s source64) Int63() int64 { return int64(s.st.Uint64() >> 1) }
func (s source64) Uint64() uint64 { return s.st.Uint64() }
func (s source64) Seed(seed int64) { s.st.Seed(uint64(seed)) }

// Rand returns the stream as an erand generator, for the erand helpers.
func (st *Stream) Rand() *erand.SysRand {
	return &erand.SysRand{Rand: mrand.New(source64{st})}
}

// Choose returns k values drawn uniformly from 0..n-1, without repeats
// unless replace is set.  The order of the returned values is random.
// Without replacement k must not exceed n.
func (st *Stream) Choose(n, k int, replace bool) []int {
	out := make([]int, 0, k)
	if k <= 0 || n <= 0 {
		return out
	}
	if replace {
		for i := 0; i < k; i++ {
			out = append(out, st.Intn(n))
		}
		return out
	}
	if 2*k >= n {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		erand.PermuteInts(perm, st.Rand())
		return append(out, perm[:k]...)
	}
	// Floyd's algorithm: O(k) draws for sparse choices
	seen := make(map[int]struct{}, k)
	for j := n - k; j < n; j++ {
		v := st.Intn(j + 1)
		if _, has := seen[v]; has {
			v = j
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
