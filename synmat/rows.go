// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synmat

import (
	"log"

	"github.com/emer/etable/v2/minmax"
	"github.com/emer/spinnconn/connector"
)

// Rows is the row layout of a block as the device reads it: one row per
// pre neuron of the slice, holding the synapses from that neuron.
type Rows struct {
	Pre        connector.Slice `desc:"pre slice the rows are for"`
	ConN       []int32         `desc:"number of synapses in each row"`
	ConIndexSt []int32         `desc:"start of each row in SynIndex"`
	SynIndex   []int32         `desc:"index into the block of each synapse, row by row"`
	ConNAvgMax minmax.AvgMax32 `inactive:"+" view:"inline" desc:"average and maximum row length"`
}

// NewRows lays out the synapses of blk, which must all come from pre,
// keeping the block order within each row.
func NewRows(pre connector.Slice, blk connector.Block) *Rows {
	rw := &Rows{Pre: pre}
	n := pre.N()
	rw.ConN = make([]int32, n)
	for i := range blk {
		ri := int(blk[i].Source) - pre.Lo
		if ri < 0 || ri >= n {
			log.Printf("synmat programmer error: synapse %d from %d is outside of pre slice %v\n", i, blk[i].Source, pre)
			continue
		}
		rw.ConN[ri]++
	}
	tot := rw.setIndexSt()
	rw.SynIndex = make([]int32, tot)
	rowN := make([]int32, n) // temporary: synapses placed so far in each row
	for i := range blk {
		ri := int(blk[i].Source) - pre.Lo
		if ri < 0 || ri >= n {
			continue
		}
		rw.SynIndex[rw.ConIndexSt[ri]+rowN[ri]] = int32(i)
		rowN[ri]++
	}
	return rw
}

// setIndexSt sets the row starts from the row lengths, and their
// statistics, returning the total.
func (rw *Rows) setIndexSt() int32 {
	rw.ConIndexSt = make([]int32, len(rw.ConN))
	idx := int32(0)
	rw.ConNAvgMax.Init()
	for i, nv := range rw.ConN {
		rw.ConIndexSt[i] = idx
		idx += nv
		rw.ConNAvgMax.UpdateVal(float32(nv), int32(i))
	}
	rw.ConNAvgMax.CalcAvg()
	return idx
}

// Row returns the block indexes of the synapses from pre neuron pre.Lo+ri.
func (rw *Rows) Row(ri int) []int32 {
	st := rw.ConIndexSt[ri]
	return rw.SynIndex[st : st+rw.ConN[ri]]
}

// MaxRowLength is the length of the longest row.
func (rw *Rows) MaxRowLength() int {
	return int(rw.ConNAvgMax.Max)
}
