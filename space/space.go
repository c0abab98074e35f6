// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package space is the spatial metric used by distance-dependent parameters
and connectors: a Space computes distances between neuron positions, and the
Line, Grid2D and Grid3D structures lay a population out in space.
*/
package space

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

// Space computes distances between neuron positions.  Distances are
// measured along the selected Axes only, scaled by ScaleFactor and shifted
// by Offset.  Axes with a non-zero Periodic extent wrap around, as on a
// torus.
type Space struct {
	Axes        string     `def:"xyz" desc:"which axes are measured: any combination of x, y and z"`
	ScaleFactor float64    `def:"1" desc:"multiplies the coordinate differences"`
	Offset      float64    `def:"0" desc:"added to each scaled coordinate difference"`
	Periodic    [3]float64 `desc:"extent of each axis for periodic boundaries -- 0 means no wrap-around on that axis"`

	mask [3]bool
}

// New returns a Space over the given axes with default scale and offset.
func New(axes string) *Space {
	sp := &Space{}
	sp.Defaults()
	sp.Axes = axes
	sp.Update()
	return sp
}

func (sp *Space) Defaults() {
	sp.Axes = "xyz"
	sp.ScaleFactor = 1
	sp.Offset = 0
	sp.Periodic = [3]float64{}
	sp.Update()
}

// Update must be called after changing Axes.
func (sp *Space) Update() {
	ax := strings.ToLower(sp.Axes)
	for i, c := range "xyz" {
		sp.mask[i] = strings.ContainsRune(ax, c)
	}
}

// Validate checks the axes and boundaries.
func (sp *Space) Validate() error {
	if sp.Axes == "" {
		return errors.New("space: no axes selected")
	}
	for _, c := range strings.ToLower(sp.Axes) {
		if c != 'x' && c != 'y' && c != 'z' {
			return fmt.Errorf("space: invalid axis %q in %q", c, sp.Axes)
		}
	}
	for i, p := range sp.Periodic {
		if p < 0 {
			return fmt.Errorf("space: negative periodic extent %v on axis %d", p, i)
		}
	}
	return nil
}

// AxisDistances returns the absolute distance from a to b along each axis.
// Axes that are not measured are 0.
func (sp *Space) AxisDistances(a, b mat32.Vec3) [3]float64 {
	var d [3]float64
	av := [3]float32{a.X, a.Y, a.Z}
	bv := [3]float32{b.X, b.Y, b.Z}
	for i := range d {
		if !sp.mask[i] {
			continue
		}
		v := math.Abs(float64(bv[i]) - float64(av[i]))
		if p := sp.Periodic[i]; p > 0 {
			v = math.Mod(v, p)
			v = math.Min(v, p-v)
		}
		d[i] = math.Abs(sp.ScaleFactor*v + sp.Offset)
	}
	return d
}

// Distance returns the euclidean distance from a to b over the measured axes.
func (sp *Space) Distance(a, b mat32.Vec3) float64 {
	d := sp.AxisDistances(a, b)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// Distances returns the distance from every pre position to every post
// position, as a [pre, post] tensor.  With perAxis the result is a
// [3, pre, post] tensor of the per-axis distances instead.
func (sp *Space) Distances(pre, post []mat32.Vec3, perAxis bool) *etensor.Float64 {
	np, nq := len(pre), len(post)
	if !perAxis {
		tsr := etensor.NewFloat64([]int{np, nq}, nil, []string{"Pre", "Post"})
		for i, a := range pre {
			for j, b := range post {
				tsr.Values[i*nq+j] = sp.Distance(a, b)
			}
		}
		return tsr
	}
	tsr := etensor.NewFloat64([]int{3, np, nq}, nil, []string{"Axis", "Pre", "Post"})
	plane := np * nq
	for i, a := range pre {
		for j, b := range post {
			d := sp.AxisDistances(a, b)
			for ax := 0; ax < 3; ax++ {
				tsr.Values[ax*plane+i*nq+j] = d[ax]
			}
		}
	}
	return tsr
}
