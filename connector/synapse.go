// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SynapseSize is the size in bytes of a packed Synapse record.
const SynapseSize = 23

// Synapse is one directed connection, with population relative neuron
// indexes.
type Synapse struct {
	Source      uint32  `desc:"pre-synaptic neuron"`
	Target      uint16  `desc:"post-synaptic neuron"`
	Weight      float64 `desc:"weight magnitude -- the sign is given by the synapse type"`
	Delay       float64 `desc:"delay in ms"`
	SynapseType uint8   `desc:"synapse type, e.g. excitatory or inhibitory"`
}

// Block is the synapses of one (pre-slice, post-slice) pair, grouped by
// post neuron in ascending order, then by pre neuron.
type Block []Synapse

// AppendBinary appends the packed little-endian record
// {source u32, target u16, weight f64, delay f64, type u8}.
func (sy *Synapse) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, sy.Source)
	b = binary.LittleEndian.AppendUint16(b, sy.Target)
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(sy.Weight))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(sy.Delay))
	return append(b, sy.SynapseType)
}

// MarshalBinary returns the packed records of the block.
func (bk Block) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, len(bk)*SynapseSize)
	for i := range bk {
		b = bk[i].AppendBinary(b)
	}
	return b, nil
}

// UnmarshalBinary reads packed records written by MarshalBinary.
func (bk *Block) UnmarshalBinary(b []byte) error {
	if len(b)%SynapseSize != 0 {
		return fmt.Errorf("connector: %d bytes is not a whole number of %d byte synapses", len(b), SynapseSize)
	}
	blk := make(Block, len(b)/SynapseSize)
	for i := range blk {
		r := b[i*SynapseSize:]
		blk[i] = Synapse{
			Source:      binary.LittleEndian.Uint32(r),
			Target:      binary.LittleEndian.Uint16(r[4:]),
			Weight:      math.Float64frombits(binary.LittleEndian.Uint64(r[6:])),
			Delay:       math.Float64frombits(binary.LittleEndian.Uint64(r[14:])),
			SynapseType: r[22],
		}
	}
	*bk = blk
	return nil
}
