// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"errors"
	"fmt"
	"io"

	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/param"
	"github.com/emer/spinnconn/rng"
	"github.com/emer/spinnconn/space"
	"github.com/goki/ki/ints"
	"github.com/goki/mat32"
)

var (
	// ErrInfeasibleFixedCount is returned when a fixed number of distinct
	// neurons is asked of a population with fewer neurons.
	ErrInfeasibleFixedCount = errors.New("connector: fixed connection count exceeds the available neurons")

	// ErrNotBound is returned by queries made before Bind.
	ErrNotBound = errors.New("connector: not bound to a projection")

	// ErrTargetRange is returned when post neuron indexes do not fit the
	// 16 bit target field of a synapse.
	ErrTargetRange = errors.New("connector: post population too large for 16 bit targets")

	// ErrSizeMismatch is returned when population sizes do not fit the rule.
	ErrSizeMismatch = errors.New("connector: population sizes do not fit the connection rule")

	// ErrSliceRange is returned for slices outside their population.
	ErrSliceRange = errors.New("connector: slice outside the population")
)

// MaxTargets is the largest post population a 16 bit target can address.
const MaxTargets = 1 << 16

// Salts separating the random streams of one projection.
const (
	SaltChoice uint32 = iota + 1
	SaltConnect
	SaltWeight
	SaltDelay
)

// Connector is a rule for which pre neurons connect to which post neurons,
// with what weights and delays.  A Connector is bound to one projection
// and then queried per (pre-slice, post-slice) pair, possibly from several
// goroutines at once.
type Connector interface {
	fmt.Stringer

	// Name is the name of the rule, which is also hashed to select the
	// on-device generator.
	Name() string

	// Bind attaches the connector to a projection.  Rebinding resets any
	// cached connectivity.
	Bind(b Binding) error

	// Binding returns the projection the connector is bound to.
	Binding() *Binding

	// SetWeightsAndDelays classifies and attaches the weight and delay
	// sources (see param.Classify).  A nil value leaves that source as is.
	SetWeightsAndDelays(weights, delays any) error

	Weights() param.Source
	Delays() param.Source

	// MaxDelay returns an upper bound on the delays of the whole
	// projection, and false if they are unbounded.
	MaxDelay() (float64, bool)

	// DelayVariance is the variance of the delays in the slice pair, 0 if
	// the pair is not connected.
	DelayVariance(pre, post Slice) (float64, error)

	// MaxConnectionsFromPre bounds the number of connections from any one
	// pre neuron of pre into post, counting only delays in window if given.
	MaxConnectionsFromPre(pre, post Slice, window *minmax.F64) (int, error)

	// MaxConnectionsToPost bounds the number of connections into any one
	// post neuron of post from pre.
	MaxConnectionsToPost(pre, post Slice) (int, error)

	WeightMean(pre, post Slice) (float64, error)
	WeightMax(pre, post Slice) (float64, error)
	WeightVariance(pre, post Slice) (float64, error)

	// GenerateOnMachine is true if the connectivity, weights and delays can
	// all be generated by the device.
	GenerateOnMachine() bool

	// GenOnMachineInfo returns the rule specific words of the on-device
	// generation descriptor.
	GenOnMachineInfo() []uint32

	// CreateSynapticBlock returns the synapses of the slice pair.  It is
	// deterministic: the same pair always gives the same block, however
	// the populations are sliced and in whatever order pairs are generated.
	CreateSynapticBlock(pre, post Slice, synType uint8) (Block, error)

	// Provenance reports the delay clipping of the connector.
	Provenance() []ProvenanceItem

	// NClippedDelays is the number of delays clipped so far.
	NClippedDelays() int64

	// SetVerbose sets a writer for a dump of the connectivity, nil for none.
	SetVerbose(w io.Writer)
}

// Binding describes the projection a connector is bound to.
type Binding struct {
	PreSize        int          `desc:"number of neurons in the pre-synaptic population"`
	PostSize       int          `desc:"number of neurons in the post-synaptic population"`
	PreLabel       string       `desc:"label of the pre-synaptic population"`
	PostLabel      string       `desc:"label of the post-synaptic population"`
	SamePopulation bool         `desc:"pre and post are the same population, so self connections are possible"`
	RNG            rng.Source   `desc:"random source, rng.DefaultSeed Philox if nil"`
	MinDelay       float64      `desc:"smallest delay the hardware supports, in ms -- smaller delays are clipped up to it"`
	Space          *space.Space `desc:"spatial metric for distance dependent parameters, nil if none"`
	PrePositions   []mat32.Vec3 `desc:"positions of the pre-synaptic neurons, for distance dependent parameters"`
	PostPositions  []mat32.Vec3 `desc:"positions of the post-synaptic neurons"`
}

// MinDelayFromTimestep returns the minimum delay in ms for a machine
// timestep in microseconds.
func MinDelayFromTimestep(us float64) float64 {
	return us / 1000
}

// Validate checks the sizes and delay of the binding.
func (b *Binding) Validate() error {
	if b.PreSize <= 0 || b.PostSize <= 0 {
		return fmt.Errorf("%w: pre %d, post %d", ErrSizeMismatch, b.PreSize, b.PostSize)
	}
	if b.PostSize > MaxTargets {
		return fmt.Errorf("%w: %d post neurons", ErrTargetRange, b.PostSize)
	}
	if b.SamePopulation && b.PreSize != b.PostSize {
		return fmt.Errorf("%w: same population with pre %d != post %d", ErrSizeMismatch, b.PreSize, b.PostSize)
	}
	if b.MinDelay < 0 {
		return fmt.Errorf("connector: negative minimum delay %v", b.MinDelay)
	}
	if b.Space != nil {
		if err := b.Space.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Label identifies the projection in messages.
func (b *Binding) Label() string {
	return b.PreLabel + "->" + b.PostLabel
}

// Slice is an inclusive range [Lo, Hi] of neuron indexes of a population.
type Slice struct {
	Lo int `desc:"first neuron"`
	Hi int `desc:"last neuron, inclusive"`
}

// N is the number of neurons in the slice.
func (sl Slice) N() int {
	return sl.Hi - sl.Lo + 1
}

// Contains is true if neuron i is in the slice.
func (sl Slice) Contains(i int) bool {
	return i >= sl.Lo && i <= sl.Hi
}

// Within is true if every neuron of sl is in o.
func (sl Slice) Within(o Slice) bool {
	return sl.Lo >= o.Lo && sl.Hi <= o.Hi
}

// Overlap returns the neurons in both slices, and false if there are none.
func (sl Slice) Overlap(o Slice) (Slice, bool) {
	ov := Slice{Lo: ints.MaxInt(sl.Lo, o.Lo), Hi: ints.MinInt(sl.Hi, o.Hi)}
	return ov, ov.Lo <= ov.Hi
}

// Validate checks that the slice is non-empty and inside a population of n.
func (sl Slice) Validate(n int) error {
	if sl.Lo < 0 || sl.Lo > sl.Hi || sl.Hi >= n {
		return fmt.Errorf("%w: %v of %d neurons", ErrSliceRange, sl, n)
	}
	return nil
}

func (sl Slice) String() string {
	return fmt.Sprintf("[%d:%d]", sl.Lo, sl.Hi)
}

// NewSlices partitions n neurons into contiguous slices of at most
// maxAtoms neurons each.
func NewSlices(n, maxAtoms int) []Slice {
	if n <= 0 {
		return nil
	}
	if maxAtoms <= 0 {
		maxAtoms = n
	}
	sls := make([]Slice, 0, (n+maxAtoms-1)/maxAtoms)
	for lo := 0; lo < n; lo += maxAtoms {
		sls = append(sls, Slice{Lo: lo, Hi: ints.MinInt(lo+maxAtoms, n) - 1})
	}
	return sls
}

// ProvenanceItem is a diagnostic value recorded during generation.
type ProvenanceItem struct {
	KeyPath []string `desc:"projection name and metric"`
	Value   int64    `desc:"value of the metric"`
	Report  bool     `desc:"the value should be brought to the user's attention"`
	Message string   `desc:"explanation for the user"`
}
