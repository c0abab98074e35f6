// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"fmt"
	"math"

	"github.com/emer/etable/v2/minmax"
)

// ConvKernel gives a parameter as a convolution kernel over 2D neuron grids.
// Pre and post neurons are numbered row by row on grids PreWidth and
// PostWidth wide; the value for a pair is the kernel entry at the offset of
// the pre neuron from the post neuron, with the kernel centered on the post
// neuron.  Pairs outside the kernel get 0.
type ConvKernel struct {
	Rows      int       `desc:"kernel height"`
	Cols      int       `desc:"kernel width"`
	Values    []float64 `desc:"kernel values, row by row, Rows * Cols of them"`
	PreWidth  int       `desc:"row length of the pre-synaptic grid"`
	PostWidth int       `desc:"row length of the post-synaptic grid"`
}

// NewConvKernel returns a kernel over grids of the given widths.
func NewConvKernel(rows, cols int, vals []float64, preWidth, postWidth int) *ConvKernel {
	return &ConvKernel{Rows: rows, Cols: cols, Values: append([]float64(nil), vals...), PreWidth: preWidth, PostWidth: postWidth}
}

func (ck *ConvKernel) Validate() error {
	if ck.Rows <= 0 || ck.Cols <= 0 || ck.PreWidth <= 0 || ck.PostWidth <= 0 {
		return fmt.Errorf("%w: kernel sizes must be positive: %v", ErrUnsupportedParameterFormat, ck)
	}
	if len(ck.Values) != ck.Rows*ck.Cols {
		return fmt.Errorf("%w: kernel needs %d values, has %d", ErrUnsupportedParameterFormat, ck.Rows*ck.Cols, len(ck.Values))
	}
	return nil
}

// Value returns the kernel value for the pre / post pair.
func (ck *ConvKernel) Value(pre, post int) float64 {
	pr, pc := pre/ck.PreWidth, pre%ck.PreWidth
	qr, qc := post/ck.PostWidth, post%ck.PostWidth
	r := pr - qr + ck.Rows/2
	c := pc - qc + ck.Cols/2
	if r < 0 || r >= ck.Rows || c < 0 || c >= ck.Cols {
		return 0
	}
	return ck.Values[r*ck.Cols+c]
}

// Range returns the range of values the kernel can produce, including the
// 0 given outside the kernel.
func (ck *ConvKernel) Range() minmax.F64 {
	rg := minmax.F64{Min: 0, Max: 0}
	for _, v := range ck.Values {
		rg.FitValInRange(v)
	}
	return rg
}

// Words returns the kernel as 32 bit words: the four sizes followed by the
// values as float32 bits.
func (ck *ConvKernel) Words() []uint32 {
	w := make([]uint32, 0, 4+len(ck.Values))
	w = append(w, uint32(ck.Rows), uint32(ck.Cols), uint32(ck.PreWidth), uint32(ck.PostWidth))
	for _, v := range ck.Values {
		w = append(w, math.Float32bits(float32(v)))
	}
	return w
}

func (ck *ConvKernel) String() string {
	return fmt.Sprintf("kernel(%dx%d)", ck.Rows, ck.Cols)
}
