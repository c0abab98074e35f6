// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ondevice

import (
	"bytes"
	"errors"
	"hash/crc32"
	"math"
	"testing"

	"github.com/emer/spinnconn/distrib"
	"github.com/emer/spinnconn/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGeneratable(t *testing.T) {
	tests := []struct {
		src param.Source
		gen bool
	}{
		{param.NewScalar(1), true},
		{param.NewDist(distrib.NewUniform(0, 1)), true},
		{param.NewDist(distrib.NewUniformInt(0, 4)), true},
		{param.NewDist(distrib.NewNormal(0, 1)), true},
		{param.NewDist(distrib.NewPoisson(2)), true},
		{param.NewDist(distrib.NewExponential(1)), true},
		{param.NewDist(distrib.NewGamma(1, 2)), false},
		{param.NewDist(distrib.NewNormalClipped(0, 1, -1, 1)), false},
		{param.NewDist(distrib.NewLogNormal(0, 1)), false},
		{param.NewArray([]float64{1, 2}), false},
		{param.MustClassify("d * 2"), false},
		{param.MustClassify(param.NewConvKernel(1, 1, []float64{1}, 1, 1)), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.gen, IsGeneratable(tt.src), "%v", tt.src)
	}
}

func TestHashes(t *testing.T) {
	assert.Equal(t, crc32.ChecksumIEEE([]byte("FixedNumberPreConnector")), NameHash("FixedNumberPreConnector"))
	assert.Equal(t, NameHash("constant"), ParamHash(param.NewScalar(3)))
	assert.Equal(t, NameHash("normal"), ParamHash(param.NewDist(distrib.NewNormal(0, 1))))
	assert.Equal(t, uint32(0), ParamHash(param.NewArray([]float64{1})))
	assert.NotEqual(t, NameHash("uniform"), NameHash("normal"))
}

type fakeConnector struct {
	ws, ds param.Source
}

func (fc *fakeConnector) Name() string               { return "AllToAllConnector" }
func (fc *fakeConnector) Weights() param.Source      { return fc.ws }
func (fc *fakeConnector) Delays() param.Source       { return fc.ds }
func (fc *fakeConnector) GenOnMachineInfo() []uint32 { return []uint32{1} }
func (fc *fakeConnector) GenerateOnMachine() bool {
	return IsGeneratable(fc.ws) && IsGeneratable(fc.ds)
}

func TestDescribe(t *testing.T) {
	fc := &fakeConnector{ws: param.NewScalar(0.5), ds: param.NewDist(distrib.NewUniform(1, 2))}
	ds, err := Describe(fc)
	require.NoError(t, err)
	assert.Equal(t, NameHash("AllToAllConnector"), ds.NameHash)
	assert.Equal(t, []uint32{math.Float32bits(0.5)}, ds.WeightParams)
	assert.Equal(t, []uint32{math.Float32bits(1), math.Float32bits(2)}, ds.DelayParams)

	words := ds.Words()
	assert.Len(t, words, 3+2+2+3)
	var buf bytes.Buffer
	n, err := ds.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4*len(words)), n)
	back, err := ReadDescriptor(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds, back)

	fc.ws = param.NewArray([]float64{1, 2})
	_, err = Describe(fc)
	assert.True(t, errors.Is(err, ErrHostOnly))
}
