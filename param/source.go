// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

//go:generate stringer -type=Kinds

import (
	"errors"
	"fmt"
	"log"

	"github.com/emer/spinnconn/distrib"
	"github.com/goki/ki/kit"
)

var (
	// ErrUnsupportedParameterFormat is returned by Classify for values that
	// are not a scalar, distribution, array, expression or kernel.
	ErrUnsupportedParameterFormat = errors.New("param: unsupported parameter format")

	// ErrUnsupportedListParameter is returned when an array is given where
	// only scalars or distributions are allowed.
	ErrUnsupportedListParameter = errors.New("param: per-connection lists are not supported here")

	// ErrInconsistentCardinality is returned when an array does not have
	// one value per connection.
	ErrInconsistentCardinality = errors.New("param: array length does not match the number of connections")

	// ErrMissingSpatialContext is returned when an expression is resolved
	// without a space or neuron positions.
	ErrMissingSpatialContext = errors.New("param: expression parameter needs a space and neuron positions")

	// ErrMixedSignWeights is returned in safe mode when weights are both
	// positive and negative.
	ErrMixedSignWeights = errors.New("param: weights must be either all positive or all negative")
)

// Kinds are the shapes a weight or delay parameter can take.
type Kinds int32

const (
	// Scalar is one value for every connection
	Scalar Kinds = iota

	// Distribution draws an independent value per connection
	Distribution

	// Array gives an explicit value per connection, by connection index
	Array

	// Expression is a function of the distance between the pre and post neuron
	Expression

	// Kernel is a convolution kernel over the pre / post grid offset
	Kernel

	KindsN
)

var KiT_Kinds = kit.Enums.AddEnum(KindsN, kit.NotBitFlag, nil)

func (ev Kinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Kinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// Source is a classified weight or delay parameter.  Exactly one of the
// value fields is used, as given by Kind.  A Source is not modified after
// classification.
type Source struct {
	Kind   Kinds        `desc:"which value field is used"`
	Scalar float64      `desc:"value for the Scalar kind"`
	Dist   distrib.Dist `desc:"distribution for the Distribution kind"`
	Array  []float64    `desc:"per-connection values for the Array kind, by connection index"`
	Expr   *Expr        `desc:"distance expression for the Expression kind"`
	Kern   *ConvKernel  `desc:"convolution kernel for the Kernel kind"`
}

// NewScalar returns a Scalar source.
func NewScalar(v float64) Source {
	return Source{Kind: Scalar, Scalar: v}
}

// NewDist returns a Distribution source.
func NewDist(d distrib.Dist) Source {
	return Source{Kind: Distribution, Dist: d}
}

// NewArray returns an Array source holding a copy of vals.
func NewArray(vals []float64) Source {
	return Source{Kind: Array, Array: append([]float64(nil), vals...)}
}

// Classify converts a user-supplied weight or delay specification into a
// Source: numbers are scalars, distrib.Dist values are distributions,
// numeric slices are arrays, strings and distance functions are
// expressions, and a *ConvKernel is a kernel.
func Classify(v any) (Source, error) {
	switch x := v.(type) {
	case Source:
		return x, nil
	case *Source:
		return *x, nil
	case float64:
		return NewScalar(x), nil
	case float32:
		return NewScalar(float64(x)), nil
	case int:
		return NewScalar(float64(x)), nil
	case int32:
		return NewScalar(float64(x)), nil
	case int64:
		return NewScalar(float64(x)), nil
	case uint32:
		return NewScalar(float64(x)), nil
	case distrib.Dist:
		if err := x.Validate(); err != nil {
			return Source{}, err
		}
		return NewDist(x), nil
	case *distrib.Dist:
		return Classify(*x)
	case []float64:
		return NewArray(x), nil
	case []float32:
		vals := make([]float64, len(x))
		for i, f := range x {
			vals[i] = float64(f)
		}
		return Source{Kind: Array, Array: vals}, nil
	case []int:
		vals := make([]float64, len(x))
		for i, f := range x {
			vals[i] = float64(f)
		}
		return Source{Kind: Array, Array: vals}, nil
	case string:
		ex, err := CompileExpr(x)
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: Expression, Expr: ex}, nil
	case func(float64) float64:
		return Source{Kind: Expression, Expr: &Expr{Text: "func(d)", dist: x}}, nil
	case func([]float64) float64:
		return Source{Kind: Expression, Expr: &Expr{Text: "func(d[])", PerAxis: true, axes: x}}, nil
	case *ConvKernel:
		if err := x.Validate(); err != nil {
			return Source{}, err
		}
		return Source{Kind: Kernel, Kern: x}, nil
	}
	return Source{}, fmt.Errorf("%w: %T", ErrUnsupportedParameterFormat, v)
}

// MustClassify is Classify for literal values known to be valid; it logs
// and returns a zero scalar on error.
func MustClassify(v any) Source {
	src, err := Classify(v)
	if err != nil {
		log.Println(err)
		return NewScalar(0)
	}
	return src
}

// CheckCardinality returns ErrUnsupportedListParameter if src is an Array
// and lists are not allowed.
func CheckCardinality(src Source, allowLists bool) error {
	if src.Kind == Array && !allowLists {
		return ErrUnsupportedListParameter
	}
	return nil
}

// CheckLength returns ErrInconsistentCardinality if src is an Array whose
// length is not nTotal.
func CheckLength(src Source, nTotal int) error {
	if src.Kind == Array && len(src.Array) != nTotal {
		return fmt.Errorf("%w: %d values for %d connections", ErrInconsistentCardinality, len(src.Array), nTotal)
	}
	return nil
}

func (src Source) String() string {
	switch src.Kind {
	case Scalar:
		return fmt.Sprintf("%g", src.Scalar)
	case Distribution:
		return src.Dist.String()
	case Array:
		return fmt.Sprintf("array[%d]", len(src.Array))
	case Expression:
		return src.Expr.Text
	case Kernel:
		return src.Kern.String()
	}
	return src.Kind.String()
}
