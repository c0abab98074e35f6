// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log"
	"math"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/emer/emergent/v2/prjn"
	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/distrib"
	"github.com/emer/spinnconn/ondevice"
	"github.com/emer/spinnconn/param"
	"github.com/emer/spinnconn/rng"
	"github.com/emer/spinnconn/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binding(pre, post int) Binding {
	return Binding{PreSize: pre, PostSize: post, PreLabel: "pre", PostLabel: "post", MinDelay: 0.1, RNG: rng.NewPhilox(42)}
}

func whole(bnd Binding) (Slice, Slice) {
	return Slice{0, bnd.PreSize - 1}, Slice{0, bnd.PostSize - 1}
}

func counts(blks ...Block) map[Synapse]int {
	cs := make(map[Synapse]int)
	for _, blk := range blks {
		for _, sy := range blk {
			cs[sy]++
		}
	}
	return cs
}

func maxCount[K comparable](m map[K]int) int {
	mx := 0
	for _, c := range m {
		if c > mx {
			mx = c
		}
	}
	return mx
}

// sliced generates every slice pair, in reverse order.
func sliced(t *testing.T, c Connector, preAtoms, postAtoms int) Block {
	bnd := c.Binding()
	pres := NewSlices(bnd.PreSize, preAtoms)
	posts := NewSlices(bnd.PostSize, postAtoms)
	var all Block
	for i := len(posts) - 1; i >= 0; i-- {
		for j := len(pres) - 1; j >= 0; j-- {
			blk, err := c.CreateSynapticBlock(pres[j], posts[i], 1)
			require.NoError(t, err)
			all = append(all, blk...)
		}
	}
	return all
}

func TestFixedNumberPreScenario(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	require.NoError(t, fp.SetWeightsAndDelays(1.0, 1.0))
	bnd := binding(10, 5)
	require.NoError(t, fp.Bind(bnd))
	pre, post := whole(bnd)
	blk, err := fp.CreateSynapticBlock(pre, post, 0)
	require.NoError(t, err)
	require.Len(t, blk, 15)

	perPost := make(map[uint16]map[uint32]bool)
	for _, sy := range blk {
		assert.Equal(t, 1.0, sy.Weight)
		assert.Equal(t, 1.0, sy.Delay)
		assert.Less(t, sy.Source, uint32(10))
		if perPost[sy.Target] == nil {
			perPost[sy.Target] = make(map[uint32]bool)
		}
		perPost[sy.Target][sy.Source] = true
	}
	require.Len(t, perPost, 5)
	for p, pres := range perPost {
		assert.Len(t, pres, 3, "post %d", p)
	}

	mp, err := fp.MaxConnectionsToPost(pre, post)
	require.NoError(t, err)
	assert.Equal(t, 3, mp)
	wm, err := fp.WeightMean(pre, post)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wm)
	dv, err := fp.DelayVariance(pre, post)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dv)
	mx, ok := fp.MaxDelay()
	assert.True(t, ok)
	assert.Equal(t, 1.0, mx)
	assert.Equal(t, int64(0), fp.NClippedDelays())
	assert.False(t, fp.Provenance()[0].Report)
}

func TestInfeasibleFixedCount(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	err := fp.Bind(binding(2, 5))
	assert.True(t, errors.Is(err, ErrInfeasibleFixedCount))
	blk, err := fp.CreateSynapticBlock(Slice{0, 1}, Slice{0, 4}, 0)
	assert.True(t, errors.Is(err, ErrInfeasibleFixedCount))
	assert.Nil(t, blk)

	fr := NewFixedNumberPre(3, true, true)
	require.NoError(t, fr.Bind(binding(2, 5)))
	blk, err = fr.CreateSynapticBlock(Slice{0, 1}, Slice{0, 4}, 0)
	require.NoError(t, err)
	assert.Len(t, blk, 15, "with replacement")
}

func TestMixedSignWeights(t *testing.T) {
	fp := NewFixedNumberPre(1, true, false)
	err := fp.SetWeightsAndDelays([]float64{-1.0, 2.0}, nil)
	assert.True(t, errors.Is(err, param.ErrMixedSignWeights))
	assert.Equal(t, param.Scalar, fp.Weights().Kind, "unchanged on failure")

	fp.Safe = false
	require.NoError(t, fp.SetWeightsAndDelays([]float64{-1.0, 2.0}, nil))
	require.NoError(t, fp.Bind(binding(3, 2)))
	blk, err := fp.CreateSynapticBlock(Slice{0, 2}, Slice{0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, blk[0].Weight, "magnitudes")
	assert.Equal(t, 2.0, blk[1].Weight)

	// distribution weights are checked per block
	sf := NewAllToAll(true)
	require.NoError(t, sf.SetWeightsAndDelays(distrib.NewNormal(0, 1), nil))
	require.NoError(t, sf.Bind(binding(10, 10)))
	_, err = sf.CreateSynapticBlock(Slice{0, 9}, Slice{0, 9}, 0)
	assert.True(t, errors.Is(err, param.ErrMixedSignWeights))
}

func TestCardinality(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	require.NoError(t, fp.Bind(binding(10, 5)))
	err := fp.SetWeightsAndDelays(make([]float64, 14), nil)
	assert.True(t, errors.Is(err, param.ErrInconsistentCardinality))
	require.NoError(t, fp.SetWeightsAndDelays(make([]float64, 15), nil))

	// arrays set before binding are checked by Bind
	fq := NewFixedNumberPre(3, true, false)
	require.NoError(t, fq.SetWeightsAndDelays(nil, make([]float64, 4)))
	assert.True(t, errors.Is(fq.Bind(binding(10, 5)), param.ErrInconsistentCardinality))

	pr := NewFixedProbability(0.5, true)
	err = pr.SetWeightsAndDelays([]float64{1, 2}, nil)
	assert.True(t, errors.Is(err, param.ErrUnsupportedListParameter))
	err = pr.SetWeightsAndDelays(struct{}{}, nil)
	assert.True(t, errors.Is(err, param.ErrUnsupportedParameterFormat))
}

func TestNotBound(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	_, err := fp.CreateSynapticBlock(Slice{0, 1}, Slice{0, 1}, 0)
	assert.True(t, errors.Is(err, ErrNotBound))
	_, err = fp.MaxConnectionsToPost(Slice{0, 1}, Slice{0, 1})
	assert.True(t, errors.Is(err, ErrNotBound))
	_, ok := fp.MaxDelay()
	assert.False(t, ok)

	err = fp.Bind(Binding{PreSize: 10, PostSize: MaxTargets + 1})
	assert.True(t, errors.Is(err, ErrTargetRange))
	err = fp.Bind(Binding{PreSize: 10, PostSize: 5, SamePopulation: true})
	assert.True(t, errors.Is(err, ErrSizeMismatch))

	require.NoError(t, fp.Bind(binding(10, 5)))
	_, err = fp.CreateSynapticBlock(Slice{5, 10}, Slice{0, 4}, 0)
	assert.True(t, errors.Is(err, ErrSliceRange))
	_, err = fp.CreateSynapticBlock(Slice{0, 9}, Slice{3, 2}, 0)
	assert.True(t, errors.Is(err, ErrSliceRange))
}

// rules returns fresh connectors of every rule, bound to 23 pre and 17
// post neurons, with random weights and delays, some below MinDelay.
func rules(t *testing.T) map[string]func() Connector {
	ws := distrib.NewUniform(0.5, 1.5)
	ds := distrib.NewUniform(0, 2)
	bnd := binding(23, 17)
	bnd.MinDelay = 0.5
	bnd.Space = space.New("xyz")
	bnd.PrePositions = (&space.Line{Dx: 1}).Positions(23)
	bnd.PostPositions = (&space.Grid2D{AspectRatio: 1, Dx: 2, Dy: 2}).Positions(17)
	var rows [][]float64
	for r := 0; r < 60; r++ {
		rows = append(rows, []float64{float64((r * 7) % 23), float64((r * 5) % 17), 0.5 + float64(r%4), 0.05 + float64(r%3)})
	}
	setup := func(c Connector, setWD bool) Connector {
		if setWD {
			require.NoError(t, c.SetWeightsAndDelays(ws, ds))
		}
		require.NoError(t, c.Bind(bnd))
		return c
	}
	return map[string]func() Connector{
		"FixedNumberPre":   func() Connector { return setup(NewFixedNumberPre(4, true, false), true) },
		"WithReplacement":  func() Connector { return setup(NewFixedNumberPre(30, true, true), true) },
		"AllToAll":         func() Connector { return setup(NewAllToAll(true), true) },
		"FixedProbability": func() Connector { return setup(NewFixedProbability(0.3, true), true) },
		"Pattern":          func() Connector { return setup(NewPattern(prjn.NewFull()), true) },
		"DistanceDependent": func() Connector {
			dd, err := NewDistanceDependentProbability("exp(-d / 5)", true)
			require.NoError(t, err)
			return setup(dd, true)
		},
		"FromList": func() Connector {
			fl, err := NewFromList(rows, true)
			require.NoError(t, err)
			return setup(fl, false)
		},
	}
}

func TestPartitionInvariance(t *testing.T) {
	for name, mk := range rules(t) {
		c := mk()
		pre, post := whole(*c.Binding())
		full, err := c.CreateSynapticBlock(pre, post, 1)
		require.NoError(t, err, name)
		require.NotEmpty(t, full, name)
		want := counts(full)

		assert.Equal(t, want, counts(sliced(t, c, 5, 6)), name)
		assert.Equal(t, want, counts(sliced(t, mk(), 7, 4)), "%s: fresh connector", name)
		assert.Equal(t, want, counts(sliced(t, mk(), 1, 17)), "%s: single pre neurons", name)
	}
}

func TestDeterminism(t *testing.T) {
	for name, mk := range rules(t) {
		c := mk()
		pre, post := Slice{3, 14}, Slice{2, 9}
		a, err := c.CreateSynapticBlock(pre, post, 0)
		require.NoError(t, err, name)
		b, err := c.CreateSynapticBlock(pre, post, 0)
		require.NoError(t, err, name)
		assert.Equal(t, a, b, name)
		o, err := mk().CreateSynapticBlock(pre, post, 0)
		require.NoError(t, err, name)
		assert.Equal(t, a, o, "%s: same seed", name)
	}
	fp := NewFixedNumberPre(4, true, false)
	bnd := binding(23, 17)
	bnd.RNG = rng.NewPhilox(43)
	require.NoError(t, fp.Bind(bnd))
	other, err := fp.Choice()
	require.NoError(t, err)
	same, err := rules(t)["FixedNumberPre"]().(*FixedNumberPre).Choice()
	require.NoError(t, err)
	assert.NotEqual(t, same, other, "seed changes the choice")
}

func TestBlockOrder(t *testing.T) {
	for name, mk := range rules(t) {
		blk, err := mk().CreateSynapticBlock(Slice{0, 22}, Slice{0, 16}, 0)
		require.NoError(t, err, name)
		assert.True(t, sort.SliceIsSorted(blk, func(i, j int) bool {
			if blk[i].Target != blk[j].Target {
				return blk[i].Target < blk[j].Target
			}
			return blk[i].Source < blk[j].Source
		}), name)
	}
}

func TestConcurrentGeneration(t *testing.T) {
	for name, mk := range rules(t) {
		c := mk()
		pres := NewSlices(23, 6)
		posts := NewSlices(17, 5)
		blks := make([]Block, len(pres)*len(posts))
		var wg sync.WaitGroup
		for i, post := range posts {
			for j, pre := range pres {
				wg.Add(1)
				go func(k int, pre, post Slice) {
					defer wg.Done()
					blk, err := c.CreateSynapticBlock(pre, post, 1)
					assert.NoError(t, err)
					blks[k] = blk
				}(i*len(pres)+j, pre, post)
			}
		}
		wg.Wait()
		assert.Equal(t, counts(sliced(t, mk(), 23, 17)), counts(blks...), name)
	}
}

func TestBoundSoundness(t *testing.T) {
	dists := []distrib.Dist{
		distrib.NewUniform(0, 2),
		distrib.NewUniformInt(0, 4),
		distrib.NewNormal(1, 0.5),
		distrib.NewNormalClipped(1, 1, 0, 3),
		distrib.NewNormalClippedToBoundary(1, 1, 0.5, 2),
		distrib.NewExponential(1),
		distrib.NewLogNormal(0, 0.5),
		distrib.NewGamma(2, 0.5),
		distrib.NewPoisson(1.5),
		distrib.NewBinomial(4, 0.5),
	}
	for _, d := range dists {
		med, err := distrib.Quantile(d, 0.5)
		require.NoError(t, err)
		windows := []minmax.F64{{Min: 0.1, Max: med}, {Min: med, Max: math.Inf(1)}}
		for trial := 0; trial < 1000; trial++ {
			fp := NewFixedNumberPre(3, true, false)
			require.NoError(t, fp.SetWeightsAndDelays(1.0, d))
			bnd := binding(10, 5)
			bnd.RNG = rng.NewPhilox(uint32(trial))
			require.NoError(t, fp.Bind(bnd))
			cut := 1 + trial%9
			post := Slice{0, 4}
			for _, pre := range []Slice{{0, cut - 1}, {cut, 9}} {
				blk, err := fp.CreateSynapticBlock(pre, post, 0)
				require.NoError(t, err)
				out := make(map[uint32]int)
				in := make(map[uint16]int)
				inWin := make([]map[uint32]int, len(windows))
				for w := range windows {
					inWin[w] = make(map[uint32]int)
				}
				for _, sy := range blk {
					out[sy.Source]++
					in[sy.Target]++
					for w, win := range windows {
						if sy.Delay >= win.Min && sy.Delay <= win.Max {
							inWin[w][sy.Source]++
						}
					}
				}
				mx, err := fp.MaxConnectionsFromPre(pre, post, nil)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, mx, maxCount(out), "%v trial %d", d, trial)
				mp, err := fp.MaxConnectionsToPost(pre, post)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, mp, maxCount(in), "%v trial %d", d, trial)
				for w := range windows {
					mw, err := fp.MaxConnectionsFromPre(pre, post, &windows[w])
					require.NoError(t, err)
					assert.GreaterOrEqual(t, mw, maxCount(inWin[w]), "%v trial %d window %v", d, trial, windows[w])
				}
			}
		}
	}
}

func TestClippingConservation(t *testing.T) {
	assert.Equal(t, 2, ClipDelays([]float64{0.05, 0.1, 1, -3}, 0.1))

	fp := NewFixedNumberPre(2, true, false)
	delays := []float64{0.05, 1, 0.01, 2, 0.5, 0.09, 3, 0.1}
	require.NoError(t, fp.SetWeightsAndDelays(1.0, delays))
	require.NoError(t, fp.Bind(binding(6, 4)))
	for round := int64(1); round <= 2; round++ {
		blk, err := fp.CreateSynapticBlock(Slice{0, 5}, Slice{0, 3}, 0)
		require.NoError(t, err)
		require.Len(t, blk, 8)
		for _, sy := range blk {
			assert.GreaterOrEqual(t, sy.Delay, 0.1)
		}
		assert.Equal(t, 3*round, fp.NClippedDelays())
	}
	pv := fp.Provenance()
	require.Len(t, pv, 1)
	assert.Equal(t, []string{"pre_post_FixedNumberPreConnector", ClippedDelaysKey}, pv[0].KeyPath)
	assert.Equal(t, int64(6), pv[0].Value)
	assert.True(t, pv[0].Report)
	assert.NotEmpty(t, pv[0].Message)

	// sliced generation clips the same delays
	fq := NewFixedNumberPre(2, true, false)
	require.NoError(t, fq.SetWeightsAndDelays(1.0, delays))
	require.NoError(t, fq.Bind(binding(6, 4)))
	sliced(t, fq, 2, 3)
	assert.Equal(t, int64(3), fq.NClippedDelays())
}

func TestSelfExclusion(t *testing.T) {
	bnd := binding(12, 12)
	bnd.SamePopulation = true
	cs := []Connector{NewAllToAll(false), NewFixedNumberPre(5, false, false), NewFixedProbability(0.5, false), NewOneToOne()}
	cs[3].(*OneToOne).AllowSelf = false
	for _, c := range cs {
		require.NoError(t, c.Bind(bnd))
		blk := sliced(t, c, 5, 7)
		for _, sy := range blk {
			assert.NotEqual(t, sy.Source, uint32(sy.Target), c.Name())
		}
	}
	assert.Len(t, sliced(t, cs[0], 12, 12), 12*11)
	assert.Empty(t, sliced(t, cs[3], 4, 4))

	// different populations keep i -> i
	aa := NewAllToAll(false)
	require.NoError(t, aa.Bind(binding(12, 12)))
	assert.Len(t, sliced(t, aa, 12, 12), 144)
}

func TestEmptyPair(t *testing.T) {
	fl, err := NewFromList([][]float64{{0, 0, 1, 2}, {3, 1, 2, 1}, {1, 0, 3, 1}}, true)
	require.NoError(t, err)
	require.NoError(t, fl.Bind(binding(5, 5)))
	pre, post := Slice{0, 4}, Slice{2, 4}
	var logb bytes.Buffer
	log.SetOutput(&logb)
	defer log.SetOutput(os.Stderr)
	blk, err := fl.CreateSynapticBlock(pre, post, 0)
	require.NoError(t, err)
	assert.NotNil(t, blk)
	assert.Empty(t, blk)
	assert.Contains(t, logb.String(), "No connection in pre->post [0:4] x [2:4]")
	dv, err := fl.DelayVariance(pre, post)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dv)
	wm, _ := fl.WeightMax(pre, post)
	assert.Equal(t, 0.0, wm)
	n, _ := fl.MaxConnectionsFromPre(pre, post, &minmax.F64{Min: 0, Max: 10})
	assert.Equal(t, 0, n)

	blk, err = fl.CreateSynapticBlock(pre, Slice{0, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, Block{
		{Source: 0, Target: 0, Weight: 1, Delay: 2, SynapseType: 3},
		{Source: 1, Target: 0, Weight: 3, Delay: 1, SynapseType: 3},
		{Source: 3, Target: 1, Weight: 2, Delay: 1, SynapseType: 3},
	}, blk)
	wm, _ = fl.WeightMean(pre, Slice{0, 1})
	assert.InDelta(t, 2, wm, 1e-12)
	mx, _ := fl.MaxDelay()
	assert.Equal(t, 2.0, mx)
}

func TestMaxDelay(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	require.NoError(t, fp.Bind(binding(10, 5)))
	mx, ok := fp.MaxDelay()
	assert.True(t, ok)
	assert.Equal(t, 0.1, mx, "defaults to the minimum delay")

	require.NoError(t, fp.SetWeightsAndDelays(nil, 0.01))
	mx, _ = fp.MaxDelay()
	assert.Equal(t, 0.1, mx, "clipped")

	require.NoError(t, fp.SetWeightsAndDelays(nil, distrib.NewUniform(1, 3)))
	mx, ok = fp.MaxDelay()
	assert.True(t, ok)
	assert.LessOrEqual(t, mx, 3.0)
	assert.Greater(t, mx, 2.9)

	require.NoError(t, fp.SetWeightsAndDelays(nil, distrib.NewExponential(1)))
	mx, _ = fp.MaxDelay()
	assert.InDelta(t, -math.Log(0.01/15), mx, 1e-9)

	fp.Bnd.Space = space.New("xyz")
	require.NoError(t, fp.SetWeightsAndDelays(nil, "d + 1"))
	_, ok = fp.MaxDelay()
	assert.False(t, ok, "expressions are unbounded")

	require.NoError(t, fp.SetWeightsAndDelays(nil, param.NewConvKernel(1, 3, []float64{2, 7, 4}, 1, 1)))
	mx, ok = fp.MaxDelay()
	assert.True(t, ok)
	assert.Equal(t, 7.0, mx)
}

func TestGenerateOnMachine(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	require.NoError(t, fp.SetWeightsAndDelays(0.5, distrib.NewUniform(1, 2)))
	require.NoError(t, fp.Bind(binding(10, 5)))
	assert.True(t, fp.GenerateOnMachine())
	assert.Equal(t, []uint32{3, 0, 1}, fp.GenOnMachineInfo())
	ds, err := ondevice.Describe(fp)
	require.NoError(t, err)
	assert.Equal(t, ondevice.NameHash("FixedNumberPreConnector"), ds.NameHash)
	assert.Equal(t, ondevice.NameHash("uniform"), ds.DelayHash)

	require.NoError(t, fp.SetWeightsAndDelays(nil, distrib.NewGamma(2, 1)))
	assert.False(t, fp.GenerateOnMachine())
	require.NoError(t, fp.SetWeightsAndDelays(make([]float64, 15), 1.0))
	assert.False(t, fp.GenerateOnMachine())

	fl, err := NewFromList([][]float64{{0, 0}}, true)
	require.NoError(t, err)
	assert.False(t, fl.GenerateOnMachine())
}

func TestOneToOne(t *testing.T) {
	oo := NewOneToOne()
	assert.True(t, errors.Is(oo.Bind(binding(4, 5)), ErrSizeMismatch))
	require.NoError(t, oo.Bind(binding(8, 8)))
	blk, err := oo.CreateSynapticBlock(Slice{2, 5}, Slice{4, 7}, 0)
	require.NoError(t, err)
	require.Len(t, blk, 2)
	assert.Equal(t, uint32(4), blk[0].Source)
	assert.Equal(t, uint16(4), blk[0].Target)
	blk, err = oo.CreateSynapticBlock(Slice{0, 3}, Slice{4, 7}, 0)
	require.NoError(t, err)
	assert.Empty(t, blk)
}

func TestPatternFull(t *testing.T) {
	pt := NewPattern(prjn.NewFull())
	aa := NewAllToAll(true)
	for _, c := range []Connector{pt, aa} {
		require.NoError(t, c.SetWeightsAndDelays(2.0, 1.5))
		require.NoError(t, c.Bind(binding(9, 6)))
	}
	assert.Equal(t, counts(sliced(t, aa, 9, 6)), counts(sliced(t, pt, 4, 4)))
	snd, rcv, err := pt.ConNAvgMax()
	require.NoError(t, err)
	assert.Equal(t, float32(6), snd.Max)
	assert.Equal(t, float32(9), rcv.Avg)
}

func TestPatternSelfConnections(t *testing.T) {
	for _, allowSelf := range []bool{true, false} {
		pt := NewPattern(prjn.NewFull())
		pt.AllowSelf = allowSelf
		require.NoError(t, pt.SetWeightsAndDelays(1.0, 1.0))
		bnd := binding(5, 5)
		bnd.SamePopulation = true
		require.NoError(t, pt.Bind(bnd))
		blk := sliced(t, pt, 2, 3)
		nself := 0
		for _, sy := range blk {
			if int(sy.Source) == int(sy.Target) {
				nself++
			}
		}
		if allowSelf {
			assert.Len(t, blk, 25)
			assert.Equal(t, 5, nself)
		} else {
			assert.Len(t, blk, 20)
			assert.Equal(t, 0, nself)
		}
	}
}

func TestDistanceDependent(t *testing.T) {
	dd, err := NewDistanceDependentProbability("exp(-d / 2)", true)
	require.NoError(t, err)
	assert.True(t, errors.Is(dd.Bind(binding(10, 10)), param.ErrMissingSpatialContext))
	assert.False(t, dd.GenerateOnMachine())

	_, err = NewDistanceDependentProbability("d +* 2", true)
	assert.Error(t, err)

	// probability 1 at distance 0, 0 beyond
	near, err := NewDistanceDependentProbability("d < 0.5 ? 1.0 : 0.0", true)
	require.NoError(t, err)
	bnd := binding(10, 10)
	bnd.Space = space.New("xyz")
	bnd.PrePositions = (&space.Line{Dx: 1}).Positions(10)
	bnd.PostPositions = (&space.Line{Dx: 1}).Positions(10)
	require.NoError(t, near.Bind(bnd))
	blk := sliced(t, near, 3, 4)
	require.Len(t, blk, 10)
	for _, sy := range blk {
		assert.Equal(t, sy.Source, uint32(sy.Target))
	}
}

func TestVerboseDump(t *testing.T) {
	fp := NewFixedNumberPre(3, true, false)
	var buf bytes.Buffer
	fp.SetVerbose(&buf)
	require.NoError(t, fp.Bind(binding(10, 5)))
	_, err := fp.CreateSynapticBlock(Slice{0, 9}, Slice{0, 4}, 0)
	require.NoError(t, err)
	rd := csv.NewReader(&buf)
	rd.FieldsPerRecord = -1
	recs, err := rd.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 6)
	assert.Equal(t, []string{"10", "5", "3"}, recs[0])
	for _, rec := range recs[1:] {
		assert.Len(t, rec, 3)
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"FixedNumberPreConnector", "AllToAllConnector", "OneToOneConnector",
		"FixedProbabilityConnector", "DistanceDependentProbabilityConnector",
		"FromListConnector", "PatternConnector",
	}, Names())
	for _, nm := range Names() {
		c, err := New(nm, Options{N: 2, P: 0.5, Prob: "exp(-d)", List: [][]float64{{0, 1}}, Pat: prjn.NewFull()})
		require.NoError(t, err, nm)
		assert.Equal(t, nm, c.Name())
	}
	_, err := New("SmallWorldConnector", Options{})
	assert.Error(t, err)
}

func TestSlices(t *testing.T) {
	sls := NewSlices(10, 4)
	assert.Equal(t, []Slice{{0, 3}, {4, 7}, {8, 9}}, sls)
	assert.Equal(t, 2, sls[2].N())
	ov, ok := Slice{2, 6}.Overlap(Slice{5, 9})
	assert.True(t, ok)
	assert.Equal(t, Slice{5, 6}, ov)
	_, ok = Slice{0, 1}.Overlap(Slice{2, 3})
	assert.False(t, ok)
	assert.True(t, Slice{2, 3}.Within(Slice{0, 3}))
	assert.Equal(t, 0.5, MinDelayFromTimestep(500))
}

func TestSynapseBinary(t *testing.T) {
	blk := Block{{Source: 70000, Target: 65535, Weight: 0.25, Delay: 1.5, SynapseType: 1}, {Source: 1, Target: 2, Weight: 3, Delay: 0.1}}
	b, err := blk.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, b, 2*SynapseSize)
	var back Block
	require.NoError(t, back.UnmarshalBinary(b))
	assert.Equal(t, blk, back)
	assert.Error(t, back.UnmarshalBinary(b[:30]))
}
