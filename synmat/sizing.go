// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synmat

import (
	"fmt"
	"math"

	"github.com/c2h5oh/datasize"
	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/connector"
)

// Device row format: a row header of RowHeaderWords words, then one word
// per synapse.
const (
	RowHeaderWords = 3
	WordBytes      = 4
)

// DelayParams describes how the device splits long delays: the core
// handles delays up to StageDelay ms itself, and a delay extension holds
// the rest back in stages of StageDelay ms.
type DelayParams struct {
	StageDelay float64 `def:"16" desc:"longest delay in ms one stage can hold"`
	MaxStages  int     `def:"8" desc:"most delay extension stages available"`
}

func (dp *DelayParams) Defaults() {
	dp.StageDelay = 16
	dp.MaxStages = 8
}

// Sizing is the memory needed for one slice pair, computed from the
// bounds of the connector before any block is generated.
type Sizing struct {
	Pair          Pair              `desc:"slice pair sized"`
	MaxRowLength  int               `desc:"most synapses from one pre neuron in the core rows"`
	MaxColLength  int               `desc:"most synapses to one post neuron"`
	MaxDelay      float64           `desc:"bound on the delays of the projection"`
	NStages       int               `desc:"number of delay extension stages used"`
	StageRowLens  []int             `desc:"most synapses from one pre neuron in each delay stage"`
	Bytes         datasize.ByteSize `desc:"memory for the rows of all stages"`
	WeightMax     float64           `desc:"bound on the weight magnitudes"`
	DelayUnbounds bool              `desc:"delays have no bound, so every stage is sized for all synapses"`
}

// DelayStageRowLength bounds the number of synapses from one pre neuron
// with delays in stage st: stage 0 is the core, up to StageDelay ms, and
// stage k holds delays in [k * StageDelay, (k+1) * StageDelay].
func DelayStageRowLength(c connector.Connector, pr Pair, dp *DelayParams, st int) (int, error) {
	win := minmax.F64{Min: float64(st) * dp.StageDelay, Max: float64(st+1) * dp.StageDelay}
	if st == 0 {
		win.Min = math.Inf(-1)
	}
	return c.MaxConnectionsFromPre(pr.Pre, pr.Post, &win)
}

// Size computes the Sizing of a slice pair.
func Size(c connector.Connector, pr Pair, dp *DelayParams) (*Sizing, error) {
	sz := &Sizing{Pair: pr}
	var err error
	if sz.MaxColLength, err = c.MaxConnectionsToPost(pr.Pre, pr.Post); err != nil {
		return nil, err
	}
	if sz.WeightMax, err = c.WeightMax(pr.Pre, pr.Post); err != nil {
		return nil, err
	}
	mx, bounded := c.MaxDelay()
	sz.DelayUnbounds = !bounded
	nst := dp.MaxStages + 1
	if bounded {
		sz.MaxDelay = mx
		nst = int(math.Ceil(mx / dp.StageDelay))
		if nst > dp.MaxStages+1 {
			return nil, fmt.Errorf("synmat: %s delays up to %g ms need %d delay stages, %d available", c.Name(), mx, nst-1, dp.MaxStages)
		}
	}
	if nst < 1 {
		nst = 1
	}
	rows := int64(pr.Pre.N())
	for st := 0; st < nst; st++ {
		var n int
		if bounded {
			n, err = DelayStageRowLength(c, pr, dp, st)
		} else {
			n, err = c.MaxConnectionsFromPre(pr.Pre, pr.Post, nil)
		}
		if err != nil {
			return nil, err
		}
		if st == 0 {
			sz.MaxRowLength = n
		} else {
			sz.StageRowLens = append(sz.StageRowLens, n)
		}
		sz.Bytes += datasize.ByteSize(rows * int64(RowHeaderWords+n) * WordBytes)
	}
	sz.NStages = nst - 1
	return sz, nil
}

func (sz *Sizing) String() string {
	return fmt.Sprintf("%v: rows %d, cols %d, %d delay stages, %s", sz.Pair, sz.MaxRowLength, sz.MaxColLength, sz.NStages, sz.Bytes.HumanReadable())
}
