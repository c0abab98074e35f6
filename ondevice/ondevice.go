// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ondevice decides whether a connector can be generated by the
device's procedural synapse generator, and builds the descriptor that
selects and parameterizes the device routines.

Routines are selected by the CRC-32 (IEEE) checksum of their name, which
the device computes the same way from its own routine table.
*/
package ondevice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/emer/spinnconn/distrib"
	"github.com/emer/spinnconn/param"
)

// ErrHostOnly is returned when asked to describe a connector that has to
// be generated on the host.
var ErrHostOnly = errors.New("ondevice: connector must be generated on the host")

// Generatable are the distributions the device generator can draw from.
var Generatable = map[distrib.Names]bool{
	distrib.Uniform:     true,
	distrib.UniformInt:  true,
	distrib.Poisson:     true,
	distrib.Normal:      true,
	distrib.Exponential: true,
}

// ConstantName and KernelName name the device routines for scalar and
// kernel parameters.
const (
	ConstantName = "constant"
	KernelName   = "kernel"
)

// IsGeneratable is true if the device can generate the values of src:
// scalars, kernels and the Generatable distributions.
func IsGeneratable(src param.Source) bool {
	switch src.Kind {
	case param.Scalar, param.Kernel:
		return true
	case param.Distribution:
		return Generatable[src.Dist.Name]
	}
	return false
}

// NameHash is the checksum selecting the device routine called name.
func NameHash(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

// ParamHash returns the hash of the routine generating src, 0 if there is
// none.
func ParamHash(src param.Source) uint32 {
	if !IsGeneratable(src) {
		return 0
	}
	switch src.Kind {
	case param.Scalar:
		return NameHash(ConstantName)
	case param.Kernel:
		return NameHash(KernelName)
	}
	return NameHash(src.Dist.Name.String())
}

// ParamWords returns the parameters of src as words for its routine.
func ParamWords(src param.Source) []uint32 {
	switch src.Kind {
	case param.Scalar:
		return []uint32{math.Float32bits(float32(src.Scalar))}
	case param.Distribution:
		w := make([]uint32, len(src.Dist.Params))
		for i, p := range src.Dist.Params {
			w[i] = math.Float32bits(float32(p))
		}
		return w
	case param.Kernel:
		return src.Kern.Words()
	}
	return nil
}

// Connector is what the descriptor needs to know of a connector.
type Connector interface {
	Name() string
	GenerateOnMachine() bool
	Weights() param.Source
	Delays() param.Source
	GenOnMachineInfo() []uint32
}

// Descriptor is the on-device generation header of one projection.
type Descriptor struct {
	NameHash     uint32   `desc:"hash of the connector routine"`
	WeightHash   uint32   `desc:"hash of the weight routine"`
	DelayHash    uint32   `desc:"hash of the delay routine"`
	Extra        []uint32 `desc:"connector parameters"`
	WeightParams []uint32 `desc:"weight routine parameters"`
	DelayParams  []uint32 `desc:"delay routine parameters"`
}

// Describe returns the descriptor of a connector that can be generated
// on the device.
func Describe(cn Connector) (*Descriptor, error) {
	if !cn.GenerateOnMachine() {
		return nil, fmt.Errorf("%w: %s with weights %v and delays %v", ErrHostOnly, cn.Name(), cn.Weights(), cn.Delays())
	}
	ws, ds := cn.Weights(), cn.Delays()
	return &Descriptor{
		NameHash:     NameHash(cn.Name()),
		WeightHash:   ParamHash(ws),
		DelayHash:    ParamHash(ds),
		Extra:        cn.GenOnMachineInfo(),
		WeightParams: ParamWords(ws),
		DelayParams:  ParamWords(ds),
	}, nil
}

// Words lays out the descriptor as the three hashes followed by the
// connector, weight and delay parameters, each preceded by its length.
func (ds *Descriptor) Words() []uint32 {
	w := []uint32{ds.NameHash, ds.WeightHash, ds.DelayHash}
	for _, ps := range [][]uint32{ds.Extra, ds.WeightParams, ds.DelayParams} {
		w = append(w, uint32(len(ps)))
		w = append(w, ps...)
	}
	return w
}

// WriteTo writes the words little endian.
func (ds *Descriptor) WriteTo(w io.Writer) (int64, error) {
	words := ds.Words()
	if err := binary.Write(w, binary.LittleEndian, words); err != nil {
		return 0, err
	}
	return int64(4 * len(words)), nil
}

// ReadDescriptor reads a descriptor written by WriteTo.
func ReadDescriptor(r io.Reader) (*Descriptor, error) {
	var hdr [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	ds := &Descriptor{NameHash: hdr[0], WeightHash: hdr[1], DelayHash: hdr[2]}
	for _, ps := range []*[]uint32{&ds.Extra, &ds.WeightParams, &ds.DelayParams} {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		*ps = make([]uint32, n)
		if err := binary.Read(r, binary.LittleEndian, *ps); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
