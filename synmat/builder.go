// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synmat

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/emer/emergent/v2/timer"
	"github.com/emer/empi/v2/empi"
	"github.com/emer/spinnconn/connector"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/emer/spinnconn/synmat"

// Progress is told how many of the slice pairs are done after each one.
type Progress func(done, total int)

// Pair is a (pre-slice, post-slice) pair of a projection.
type Pair struct {
	Pre  connector.Slice
	Post connector.Slice
}

func (pr Pair) String() string {
	return fmt.Sprintf("%v x %v", pr.Pre, pr.Post)
}

// PairBlock is the synaptic block of a pair.
type PairBlock struct {
	Pair
	Block connector.Block
}

// Result is the output of Build.
type Result struct {
	Blocks     []PairBlock                `desc:"blocks of the generated pairs, in pair order"`
	NSyns      int                        `desc:"total number of synapses"`
	Provenance []connector.ProvenanceItem `desc:"provenance of the connector after generation"`
}

func (rs *Result) String() string {
	return fmt.Sprintf("%s synapses in %s blocks", humanize.Comma(int64(rs.NSyns)), humanize.Comma(int64(len(rs.Blocks))))
}

// Builder generates the synaptic blocks of a bound connector over all
// pairs of pre and post slices, sequentially or with NThreads goroutines.
type Builder struct {
	Conn       connector.Connector `desc:"bound connector to generate"`
	PreSlices  []connector.Slice   `desc:"partition of the pre population"`
	PostSlices []connector.Slice   `desc:"partition of the post population"`
	SynType    uint8               `desc:"synapse type of the generated synapses"`
	NThreads   int                 `def:"1" desc:"number of goroutines generating pairs -- 1 is sequential"`
	MPI        bool                `desc:"generate only the share of the pairs of this MPI process"`
	Progress   Progress            `view:"-" desc:"called after each pair, nil for none"`

	Timer    timer.Time   `view:"-" desc:"time spent in Build"`
	ThrTimes []timer.Time `view:"-" desc:"time spent by each thread generating blocks"`

	progMu sync.Mutex
	done   int
}

// NewBuilder returns a sequential builder over the slices of the two
// populations, at most maxAtoms neurons per slice.
func NewBuilder(conn connector.Connector, preAtoms, postAtoms int) *Builder {
	bnd := conn.Binding()
	return &Builder{
		Conn:       conn,
		PreSlices:  connector.NewSlices(bnd.PreSize, preAtoms),
		PostSlices: connector.NewSlices(bnd.PostSize, postAtoms),
		NThreads:   1,
	}
}

// Pairs returns every pair, post slices outermost.
func (bd *Builder) Pairs() []Pair {
	prs := make([]Pair, 0, len(bd.PreSlices)*len(bd.PostSlices))
	for _, post := range bd.PostSlices {
		for _, pre := range bd.PreSlices {
			prs = append(prs, Pair{Pre: pre, Post: post})
		}
	}
	return prs
}

// Build generates the blocks of all pairs, or of this process's share of
// them under MPI.  The context is checked between pairs: generation of a
// block is never interrupted.  No blocks are returned on error.
func (bd *Builder) Build(ctx context.Context) (*Result, error) {
	bd.Timer.Start()
	defer bd.Timer.Stop()

	prs := bd.Pairs()
	if bd.MPI {
		st, ed, err := empi.AllocN(len(prs))
		if err != nil {
			return nil, err
		}
		prs = prs[st:ed]
	}
	nthr := bd.NThreads
	if nthr < 1 {
		nthr = 1
	}
	bd.ThrTimes = make([]timer.Time, nthr)
	bd.done = 0

	ctx, span := otel.Tracer(tracerName).Start(ctx, "synmat.Build",
		trace.WithAttributes(
			attribute.String("connector", bd.Conn.Name()),
			attribute.Int("pairs", len(prs)),
			attribute.Int("threads", nthr),
		))
	defer span.End()

	blks := make([]PairBlock, len(prs))
	var err error
	if nthr == 1 {
		err = bd.buildSeq(ctx, prs, blks)
	} else {
		err = bd.buildThr(ctx, nthr, prs, blks)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}
	res := &Result{Blocks: blks, Provenance: bd.Conn.Provenance()}
	for i := range blks {
		res.NSyns += len(blks[i].Block)
	}
	span.SetAttributes(attribute.Int("synapses", res.NSyns))
	return res, nil
}

func (bd *Builder) buildSeq(ctx context.Context, prs []Pair, blks []PairBlock) error {
	for i, pr := range prs {
		if err := ctx.Err(); err != nil {
			return err
		}
		blk, err := bd.genPair(ctx, 0, pr)
		if err != nil {
			return err
		}
		blks[i] = PairBlock{Pair: pr, Block: blk}
		bd.report(len(prs))
	}
	return nil
}

// buildThr hands the pairs out to nthr goroutines, stopping them all at
// the first error.
func (bd *Builder) buildThr(ctx context.Context, nthr int, prs []Pair, blks []PairBlock) error {
	g, gctx := errgroup.WithContext(ctx)
	next := make(chan int)
	g.Go(func() error {
		defer close(next)
		for i := range prs {
			select {
			case next <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for th := 0; th < nthr; th++ {
		th := th
		g.Go(func() error {
			for i := range next {
				if err := gctx.Err(); err != nil {
					return err
				}
				blk, err := bd.genPair(gctx, th, prs[i])
				if err != nil {
					return err
				}
				blks[i] = PairBlock{Pair: prs[i], Block: blk}
				bd.report(len(prs))
			}
			return nil
		})
	}
	return g.Wait()
}

func (bd *Builder) genPair(ctx context.Context, th int, pr Pair) (connector.Block, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "CreateSynapticBlock",
		trace.WithAttributes(
			attribute.String("pre", pr.Pre.String()),
			attribute.String("post", pr.Post.String()),
			attribute.Int("thread", th),
		))
	defer span.End()
	bd.ThrTimes[th].Start()
	blk, err := bd.Conn.CreateSynapticBlock(pr.Pre, pr.Post, bd.SynType)
	bd.ThrTimes[th].Stop()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block failed")
		return nil, fmt.Errorf("synmat: %s %v: %w", bd.Conn.Name(), pr, err)
	}
	span.SetAttributes(attribute.Int("synapses", len(blk)))
	return blk, nil
}

func (bd *Builder) report(total int) {
	bd.progMu.Lock()
	defer bd.progMu.Unlock()
	bd.done++
	if bd.Progress != nil {
		bd.Progress(bd.done, total)
	}
}

// TimerReport writes the time of the last Build, and the share of each
// thread.
func (bd *Builder) TimerReport(w io.Writer) {
	fmt.Fprintf(w, "TimerReport: %v, NThreads: %v\n", bd.Conn.Name(), len(bd.ThrTimes))
	fmt.Fprintf(w, "\t%13s \t%7.3f\n", "Build", bd.Timer.TotalSecs())
	if len(bd.ThrTimes) <= 1 {
		return
	}
	fmt.Fprintf(w, "\n\tThr\tSecs\tPct\n")
	tot := 0.0
	for th := range bd.ThrTimes {
		tot += bd.ThrTimes[th].TotalSecs()
	}
	for th := range bd.ThrTimes {
		secs := bd.ThrTimes[th].TotalSecs()
		pct := 0.0
		if tot > 0 {
			pct = 100 * secs / tot
		}
		fmt.Fprintf(w, "\t%v \t%7.3f\t%7.1f\n", th, secs, pct)
	}
}
