// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synmat

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/emer/spinnconn/connector"
	"github.com/emer/spinnconn/distrib"
	"github.com/emer/spinnconn/param"
	"github.com/emer/spinnconn/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bound(t *testing.T, c connector.Connector, pre, post int) connector.Connector {
	require.NoError(t, c.SetWeightsAndDelays(param.NewDist(distrib.NewUniform(0, 1)), param.NewDist(distrib.NewUniform(1, 10))))
	require.NoError(t, c.Bind(connector.Binding{PreSize: pre, PostSize: post, PreLabel: "in", PostLabel: "out", MinDelay: 1, RNG: rng.NewPhilox(7)}))
	return c
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	c := bound(t, connector.NewFixedNumberPre(4, true, false), 40, 30)
	seq := NewBuilder(c, 7, 8)
	sres, err := seq.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4*30, sres.NSyns)
	assert.Len(t, sres.Blocks, 6*4)

	par := NewBuilder(c, 7, 8)
	par.NThreads = 4
	pres, err := par.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(sres.Blocks), len(pres.Blocks))
	for i := range sres.Blocks {
		assert.Equal(t, sres.Blocks[i].Pair, pres.Blocks[i].Pair)
		assert.Equal(t, sres.Blocks[i].Block, pres.Blocks[i].Block, "%v", sres.Blocks[i].Pair)
	}
	assert.Len(t, par.ThrTimes, 4)
	assert.Contains(t, pres.String(), "120 synapses")
}

func TestBuildProgress(t *testing.T) {
	c := bound(t, connector.NewAllToAll(true), 10, 10)
	bd := NewBuilder(c, 3, 5)
	bd.NThreads = 3
	var calls []int
	bd.Progress = func(done, total int) {
		assert.Equal(t, 8, total)
		calls = append(calls, done)
	}
	res, err := bd.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, res.NSyns)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, calls)
}

func TestBuildMPISingleProc(t *testing.T) {
	c := bound(t, connector.NewAllToAll(true), 6, 6)
	bd := NewBuilder(c, 2, 3)
	bd.MPI = true
	res, err := bd.Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Blocks, 6)
	assert.Equal(t, 36, res.NSyns)
}

func TestBuildCanceled(t *testing.T) {
	c := bound(t, connector.NewAllToAll(true), 6, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, nthr := range []int{1, 2} {
		bd := NewBuilder(c, 2, 2)
		bd.NThreads = nthr
		res, err := bd.Build(ctx)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, context.Canceled), "%v", err)
	}
}

var errBroken = errors.New("broken pair")

// failing fails on the pair with post slice starting at failAt.
type failing struct {
	connector.Connector
	failAt int
}

func (fc *failing) CreateSynapticBlock(pre, post connector.Slice, synType uint8) (connector.Block, error) {
	if post.Lo == fc.failAt {
		return nil, errBroken
	}
	return fc.Connector.CreateSynapticBlock(pre, post, synType)
}

func TestBuildError(t *testing.T) {
	c := &failing{Connector: bound(t, connector.NewAllToAll(true), 8, 8), failAt: 4}
	for _, nthr := range []int{1, 3} {
		bd := NewBuilder(c, 2, 2)
		bd.NThreads = nthr
		res, err := bd.Build(context.Background())
		assert.Nil(t, res)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errBroken))
		assert.Contains(t, err.Error(), "AllToAllConnector")
	}
}

func TestTimerReport(t *testing.T) {
	c := bound(t, connector.NewAllToAll(true), 4, 4)
	bd := NewBuilder(c, 2, 2)
	bd.NThreads = 2
	_, err := bd.Build(context.Background())
	require.NoError(t, err)
	var buf bytes.Buffer
	bd.TimerReport(&buf)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "TimerReport: AllToAllConnector, NThreads: 2"))
	assert.Contains(t, out, "Thr\tSecs\tPct")
}

func TestRows(t *testing.T) {
	pre := connector.Slice{Lo: 10, Hi: 13}
	blk := connector.Block{
		{Source: 12, Target: 0}, {Source: 10, Target: 1}, {Source: 12, Target: 2},
		{Source: 13, Target: 3}, {Source: 12, Target: 4},
	}
	rw := NewRows(pre, blk)
	assert.Equal(t, []int32{1, 0, 3, 1}, rw.ConN)
	assert.Equal(t, []int32{0, 1, 1, 4}, rw.ConIndexSt)
	assert.Equal(t, []int32{0, 2, 4}, rw.Row(2))
	assert.Empty(t, rw.Row(1))
	assert.Equal(t, 3, rw.MaxRowLength())
	assert.InDelta(t, 1.25, rw.ConNAvgMax.Avg, 1e-6)

	c := bound(t, connector.NewFixedNumberPre(3, true, false), 12, 9)
	res, err := NewBuilder(c, 4, 9).Build(context.Background())
	require.NoError(t, err)
	for _, pb := range res.Blocks {
		rw := NewRows(pb.Pre, pb.Block)
		mx, err := c.MaxConnectionsFromPre(pb.Pre, pb.Post, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, rw.MaxRowLength(), mx)
		assert.Len(t, rw.SynIndex, len(pb.Block))
	}
}

func TestSize(t *testing.T) {
	var dp DelayParams
	dp.Defaults()
	pr := Pair{Pre: connector.Slice{Lo: 0, Hi: 9}, Post: connector.Slice{Lo: 0, Hi: 4}}

	c := connector.NewFixedNumberPre(3, true, false)
	require.NoError(t, c.SetWeightsAndDelays(-2.0, 20.0))
	require.NoError(t, c.Bind(connector.Binding{PreSize: 10, PostSize: 5, MinDelay: 1, RNG: rng.NewPhilox(1)}))
	sz, err := Size(c, pr, &dp)
	require.NoError(t, err)
	assert.Equal(t, 1, sz.NStages)
	assert.Equal(t, 0, sz.MaxRowLength)
	all, err := c.MaxConnectionsFromPre(pr.Pre, pr.Post, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{all}, sz.StageRowLens)
	assert.Equal(t, 3, sz.MaxColLength)
	assert.Equal(t, 2.0, sz.WeightMax)
	want := 10 * (RowHeaderWords + 0 + RowHeaderWords + all) * WordBytes
	assert.Equal(t, datasize.ByteSize(want), sz.Bytes)
	assert.Contains(t, sz.String(), "1 delay stages")

	require.NoError(t, c.SetWeightsAndDelays(nil, 1000.0))
	_, err = Size(c, pr, &dp)
	assert.Error(t, err)

	require.NoError(t, c.SetWeightsAndDelays(nil, param.NewDist(distrib.NewExponential(5))))
	sz, err = Size(c, pr, &dp)
	require.NoError(t, err)
	mx, ok := c.MaxDelay()
	require.True(t, ok)
	assert.Equal(t, mx, sz.MaxDelay)
	assert.Equal(t, int(math.Ceil(mx/dp.StageDelay))-1, sz.NStages)
	assert.Len(t, sz.StageRowLens, sz.NStages)

	sz, err = Size(unbounded{c}, pr, &dp)
	require.NoError(t, err)
	assert.True(t, sz.DelayUnbounds)
	assert.Equal(t, dp.MaxStages, sz.NStages)
	for _, n := range sz.StageRowLens {
		assert.Equal(t, all, n)
	}
}

type unbounded struct {
	connector.Connector
}

func (ub unbounded) MaxDelay() (float64, bool) { return 0, false }
