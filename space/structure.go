// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package space

import (
	"math"

	"github.com/goki/mat32"
)

// Structure lays out n neurons in space.
type Structure interface {
	Positions(n int) []mat32.Vec3
}

// Line places neurons along the x axis, Dx apart, starting at Origin.
type Line struct {
	Dx     float32    `def:"1" desc:"spacing between neurons"`
	Origin mat32.Vec3 `desc:"position of the first neuron"`
}

func (ln *Line) Positions(n int) []mat32.Vec3 {
	pos := make([]mat32.Vec3, n)
	for i := range pos {
		pos[i] = mat32.Vec3{X: ln.Origin.X + float32(i)*ln.Dx, Y: ln.Origin.Y, Z: ln.Origin.Z}
	}
	return pos
}

// Grid2D places neurons on a grid in the x-y plane.  The number of columns
// along x is sqrt(n * AspectRatio), and neurons are filled column by column
// (y varies fastest).
type Grid2D struct {
	AspectRatio float32    `def:"1" desc:"ratio of the number of neurons along x to the number along y"`
	Dx          float32    `def:"1" desc:"spacing along x"`
	Dy          float32    `def:"1" desc:"spacing along y"`
	Origin      mat32.Vec3 `desc:"position of the first neuron"`
}

// Dims returns the grid size along x and y for n neurons.
func (gr *Grid2D) Dims(n int) (nx, ny int) {
	ar := gr.AspectRatio
	if ar <= 0 {
		ar = 1
	}
	nx = int(math.Round(math.Sqrt(float64(n) * float64(ar))))
	if nx < 1 {
		nx = 1
	}
	ny = (n + nx - 1) / nx
	return
}

func (gr *Grid2D) Positions(n int) []mat32.Vec3 {
	_, ny := gr.Dims(n)
	pos := make([]mat32.Vec3, n)
	for i := range pos {
		x, y := i/ny, i%ny
		pos[i] = mat32.Vec3{X: gr.Origin.X + float32(x)*gr.Dx, Y: gr.Origin.Y + float32(y)*gr.Dy, Z: gr.Origin.Z}
	}
	return pos
}

// Grid3D places neurons on a cubic lattice, z varying fastest.
type Grid3D struct {
	AspectRatioXY float32    `def:"1" desc:"ratio of the number of neurons along x to the number along y"`
	AspectRatioXZ float32    `def:"1" desc:"ratio of the number of neurons along x to the number along z"`
	Dx            float32    `def:"1" desc:"spacing along x"`
	Dy            float32    `def:"1" desc:"spacing along y"`
	Dz            float32    `def:"1" desc:"spacing along z"`
	Origin        mat32.Vec3 `desc:"position of the first neuron"`
}

// Dims returns the grid size along each axis for n neurons.
func (gr *Grid3D) Dims(n int) (nx, ny, nz int) {
	axy, axz := float64(gr.AspectRatioXY), float64(gr.AspectRatioXZ)
	if axy <= 0 {
		axy = 1
	}
	if axz <= 0 {
		axz = 1
	}
	nx = int(math.Round(math.Cbrt(float64(n) * axy * axz)))
	if nx < 1 {
		nx = 1
	}
	ny = int(math.Round(float64(nx) / axy))
	if ny < 1 {
		ny = 1
	}
	nz = (n + nx*ny - 1) / (nx * ny)
	return
}

func (gr *Grid3D) Positions(n int) []mat32.Vec3 {
	_, ny, nz := gr.Dims(n)
	pos := make([]mat32.Vec3, n)
	for i := range pos {
		x, y, z := i/(ny*nz), (i/nz)%ny, i%nz
		pos[i] = mat32.Vec3{
			X: gr.Origin.X + float32(x)*gr.Dx,
			Y: gr.Origin.Y + float32(y)*gr.Dy,
			Z: gr.Origin.Z + float32(z)*gr.Dz,
		}
	}
	return pos
}
