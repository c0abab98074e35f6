// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync/atomic"

	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/ondevice"
	"github.com/emer/spinnconn/param"
	"github.com/emer/spinnconn/rng"
)

// rule is the topology of a connection rule: which connections exist,
// and how they are numbered.  Everything else is common to all rules and
// lives in Base.
type rule interface {
	// name is the Connector name.
	name() string

	// allowsLists is true if weights and delays may be given per connection.
	allowsLists() bool

	// onMachine is true if the device has a generator for the topology.
	onMachine() bool

	// bind checks the rule against the newly bound projection and resets
	// any cached connectivity.
	bind() error

	// nTotal is the number of connections of the whole projection, which
	// is also the length required of Array sources.
	nTotal() int

	// conns returns the connections of a valid slice pair, by post neuron
	// then pre neuron, with self connections already excluded.
	conns(pre, post Slice) (*param.Conns, error)

	// info returns the rule words of the on-device descriptor.
	info() []uint32
}

// Base carries what all connection rules share: the binding, the weight
// and delay sources, and the statistics computed from them.  Rules embed
// Base and set Self to themselves.
type Base struct {
	Safe      bool    `def:"true" desc:"weights of both signs are an error, as the device takes the sign from the synapse type"`
	AllowSelf bool    `def:"true" desc:"allow connections from a neuron to itself when pre and post are the same population"`
	Chance    float64 `def:"0.01" desc:"probability allowed for a probable maximum to be exceeded anywhere in the projection"`

	// we need a pointer to ourselves as a rule, to reach the topology of the embedding type from the shared methods
	Self rule `copy:"-" json:"-" xml:"-" view:"-"`

	Bnd       Binding      `view:"-" desc:"projection the connector is bound to"`
	bound     bool         // Bind has succeeded in validating Bnd
	bindErr   error        // error of the rule bind, returned by every query
	weights   param.Source // weight source
	delays    param.Source // delay source, if hasDelays
	hasDelays bool         // delays were set, otherwise they are MinDelay
	verbose   io.Writer    // connectivity dump, nil for none
	nClipped  atomic.Int64 // delays raised to MinDelay so far
}

func (b *Base) initBase(self rule) {
	b.Self = self
	b.Defaults()
}

func (b *Base) Defaults() {
	b.Safe = true
	b.AllowSelf = true
	b.Chance = 0.01
	b.weights = param.NewScalar(0)
}

func (b *Base) Name() string {
	return b.Self.name()
}

func (b *Base) String() string {
	return fmt.Sprintf("%s(weights=%v, delays=%v)", b.Name(), b.Weights(), b.Delays())
}

// Bind attaches the connector to a projection, checking the rule and any
// Array sources against it.  An error from the rule is also returned by
// every later query.
func (b *Base) Bind(bnd Binding) error {
	if err := bnd.Validate(); err != nil {
		b.bound = false
		return err
	}
	if bnd.RNG == nil {
		bnd.RNG = rng.NewPhilox(rng.DefaultSeed)
	}
	b.Bnd = bnd
	b.bound = true
	b.bindErr = b.Self.bind()
	if b.bindErr == nil {
		b.bindErr = b.checkLengths(b.weights, b.Delays())
	}
	return b.bindErr
}

func (b *Base) Binding() *Binding {
	return &b.Bnd
}

// checkReady returns the error a query should fail with, if any.
func (b *Base) checkReady() error {
	if !b.bound {
		return fmt.Errorf("%w: %s", ErrNotBound, b.Name())
	}
	return b.bindErr
}

func (b *Base) checkLengths(srcs ...param.Source) error {
	n := b.Self.nTotal()
	for _, src := range srcs {
		if err := param.CheckLength(src, n); err != nil {
			return err
		}
	}
	return nil
}

// attach classifies a weight or delay value for this rule.
func (b *Base) attach(v any) (param.Source, error) {
	src, err := param.Classify(v)
	if err != nil {
		return src, err
	}
	if err := param.CheckCardinality(src, b.Self.allowsLists()); err != nil {
		return src, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if b.bound && b.bindErr == nil {
		if err := b.checkLengths(src); err != nil {
			return src, err
		}
	}
	return src, nil
}

// SetWeightsAndDelays classifies and checks both values before setting
// either, so a failure leaves the connector unchanged.
func (b *Base) SetWeightsAndDelays(weights, delays any) error {
	ws, ds := b.weights, b.delays
	var err error
	if weights != nil {
		if ws, err = b.attach(weights); err != nil {
			return err
		}
		if b.Safe && ws.Kind == param.Array && mixedSign(ws.Array) {
			return fmt.Errorf("%w: %s of %s", param.ErrMixedSignWeights, ws, b.Name())
		}
	}
	if delays != nil {
		if ds, err = b.attach(delays); err != nil {
			return err
		}
	}
	b.weights = ws
	if delays != nil {
		b.delays = ds
		b.hasDelays = true
	}
	return nil
}

func mixedSign(vals []float64) bool {
	var rg minmax.F64
	rg.SetInfinity()
	for _, v := range vals {
		rg.FitValInRange(v)
	}
	return rg.Min < 0 && rg.Max > 0
}

func (b *Base) Weights() param.Source {
	return b.weights
}

// Delays returns the delay source, which is the minimum delay of the
// binding until delays are set.
func (b *Base) Delays() param.Source {
	if !b.hasDelays {
		return param.NewScalar(b.Bnd.MinDelay)
	}
	return b.delays
}

func (b *Base) SetVerbose(w io.Writer) {
	b.verbose = w
}

func (b *Base) resolver() *param.Resolver {
	return &param.Resolver{
		RNG:           b.Bnd.RNG,
		Space:         b.Bnd.Space,
		PrePositions:  b.Bnd.PrePositions,
		PostPositions: b.Bnd.PostPositions,
		Chance:        b.Chance,
		Label:         b.Bnd.Label(),
	}
}

// excludeSelf is true if connections from a neuron to itself are dropped.
func (b *Base) excludeSelf() bool {
	return b.Bnd.SamePopulation && !b.AllowSelf
}

// pairConns returns the connections of the slice pair.
func (b *Base) pairConns(pre, post Slice) (*param.Conns, error) {
	if err := b.checkReady(); err != nil {
		return nil, err
	}
	if err := pre.Validate(b.Bnd.PreSize); err != nil {
		return nil, err
	}
	if err := post.Validate(b.Bnd.PostSize); err != nil {
		return nil, err
	}
	return b.Self.conns(pre, post)
}

// MaxDelay bounds the delays of the projection: exactly for scalars,
// arrays and kernels, by the probable maximum over all connections for
// distributions.  Expression delays are unbounded.
// Delays below the minimum delay are clipped up to it.
func (b *Base) MaxDelay() (float64, bool) {
	if err := b.checkReady(); err != nil {
		log.Printf("%v programmer error: MaxDelay: %v\n", b.Name(), err)
		return 0, false
	}
	ds := b.Delays()
	mx := b.Bnd.MinDelay
	switch ds.Kind {
	case param.Scalar:
		mx = ds.Scalar
	case param.Distribution:
		v, err := b.resolver().Max(ds, b.Self.nTotal(), nil)
		if err != nil {
			log.Printf("%v programmer error: MaxDelay: %v\n", b.Name(), err)
			return 0, false
		}
		mx = v
	case param.Array:
		for _, d := range ds.Array {
			mx = math.Max(mx, d)
		}
	case param.Kernel:
		mx = ds.Kern.Range().Max
	default:
		return 0, false
	}
	return math.Max(mx, b.Bnd.MinDelay), true
}

func (b *Base) DelayVariance(pre, post Slice) (float64, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil || cn.Len() == 0 {
		return 0, err
	}
	return b.resolver().Variance(b.Delays(), cn)
}

func (b *Base) MaxConnectionsFromPre(pre, post Slice, window *minmax.F64) (int, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil || cn.Len() == 0 {
		return 0, err
	}
	nConn := cn.MaxPerPre(nil)
	if window == nil {
		return nConn, nil
	}
	return b.resolver().InWindow(b.Delays(), b.Self.nTotal(), nConn, cn, *window, b.Bnd.MinDelay)
}

func (b *Base) MaxConnectionsToPost(pre, post Slice) (int, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil {
		return 0, err
	}
	return cn.MaxPerPost(), nil
}

func (b *Base) WeightMean(pre, post Slice) (float64, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil || cn.Len() == 0 {
		return 0, err
	}
	return b.resolver().MagnitudeMean(b.weights, cn)
}

func (b *Base) WeightMax(pre, post Slice) (float64, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil || cn.Len() == 0 {
		return 0, err
	}
	return b.resolver().MagnitudeMax(b.weights, cn.Len(), cn)
}

func (b *Base) WeightVariance(pre, post Slice) (float64, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil || cn.Len() == 0 {
		return 0, err
	}
	return b.resolver().MagnitudeVariance(b.weights, cn)
}

// GenerateOnMachine is true if the device can generate the topology and
// both the weights and the delays.
func (b *Base) GenerateOnMachine() bool {
	return b.Self.onMachine() && ondevice.IsGeneratable(b.weights) && ondevice.IsGeneratable(b.Delays())
}

func (b *Base) GenOnMachineInfo() []uint32 {
	return b.Self.info()
}

// CreateSynapticBlock materializes the synapses of the slice pair, with
// weights from the weight stream and delays from the delay stream of
// each connection, delays clipped to the minimum delay.
func (b *Base) CreateSynapticBlock(pre, post Slice, synType uint8) (Block, error) {
	cn, err := b.pairConns(pre, post)
	if err != nil {
		return nil, err
	}
	if cn.Len() == 0 {
		if b.Safe {
			log.Printf("No connection in %s %v x %v\n", b.Bnd.Label(), pre, post)
		}
		return Block{}, nil
	}
	rs := b.resolver()
	ws, err := rs.Weights(b.weights, SaltWeight, cn, b.Safe)
	if err != nil {
		return nil, err
	}
	ds, err := rs.Values(b.Delays(), SaltDelay, cn)
	if err != nil {
		return nil, err
	}
	if nc := ClipDelays(ds, b.Bnd.MinDelay); nc > 0 {
		b.nClipped.Add(int64(nc))
	}
	blk := make(Block, cn.Len())
	for i := range blk {
		blk[i] = Synapse{
			Source:      uint32(cn.Pre[i]),
			Target:      uint16(cn.Post[i]),
			Weight:      ws[i],
			Delay:       ds[i],
			SynapseType: synType,
		}
	}
	return blk, nil
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
