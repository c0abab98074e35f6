// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package distrib

//go:generate stringer -type=Names -linecomment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/emer/etable/v2/minmax"
	"github.com/goki/ki/kit"
)

// ErrUnsupportedDistribution is returned for distribution names (or parameter
// lists) that have no closed-form statistics.
var ErrUnsupportedDistribution = errors.New("distrib: unsupported distribution")

// DefaultChance is the default probability that any one of n draws exceeds
// the probable maximum (or falls below the probable minimum).
const DefaultChance = 0.01

// Names are the random distributions known to the oracle, named as in PyNN.
type Names int32

const (
	// Uniform is uniform in [low, high)
	Uniform Names = iota // uniform

	// UniformInt is a discrete uniform over the integers low..high-1
	UniformInt // uniform_int

	// RandInt is the same as UniformInt, named as in scipy.stats
	RandInt // randint

	// Normal is a gaussian with mean mu and standard deviation sigma
	Normal // normal

	// NormalClipped is a normal that is redrawn until it falls in [low, high]
	NormalClipped // normal_clipped

	// NormalClippedToBoundary is a normal whose out-of-range values are set
	// to the nearest of low / high
	NormalClippedToBoundary // normal_clipped_to_boundary

	// Exponential has scale (mean) beta
	Exponential // exponential

	// LogNormal has log-space mean mu and standard deviation sigma
	LogNormal // lognormal

	// Gamma has shape k and scale theta
	Gamma // gamma

	// Poisson has rate lambda
	Poisson // poisson

	// Binomial is n trials with success probability p
	Binomial // binomial

	// VonMises is the circular normal with location mu and concentration kappa
	VonMises // vonmises

	NamesN
)

var KiT_Names = kit.Enums.AddEnum(NamesN, kit.NotBitFlag, nil)

func (ev Names) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Names) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// nParams is the number of parameters each distribution takes, in PyNN order
var nParams = [NamesN]int{
	Uniform:                 2, // low, high
	UniformInt:              2, // low, high
	RandInt:                 2, // low, high
	Normal:                  2, // mu, sigma
	NormalClipped:           4, // mu, sigma, low, high
	NormalClippedToBoundary: 4, // mu, sigma, low, high
	Exponential:             1, // beta
	LogNormal:               2, // mu, sigma
	Gamma:                   2, // k, theta
	Poisson:                 1, // lambda
	Binomial:                2, // n, p
	VonMises:                2, // mu, kappa
}

// ParseName returns the distribution with the given PyNN name.
func ParseName(name string) (Names, error) {
	nm := strings.ToLower(strings.TrimSpace(name))
	for i := Names(0); i < NamesN; i++ {
		if i.String() == nm {
			return i, nil
		}
	}
	return NamesN, fmt.Errorf("%w: %q", ErrUnsupportedDistribution, name)
}

// Dist is an abstract random distribution descriptor: a name plus its
// parameters in PyNN order.  It carries no random state.
type Dist struct {
	Name   Names     `desc:"which distribution"`
	Params []float64 `desc:"parameters of the distribution, in the order documented on Names"`
}

// New returns the named distribution, validating its parameter count.
func New(name string, params ...float64) (Dist, error) {
	nm, err := ParseName(name)
	if err != nil {
		return Dist{}, err
	}
	d := Dist{Name: nm, Params: append([]float64(nil), params...)}
	if err := d.Validate(); err != nil {
		return Dist{}, err
	}
	return d, nil
}

func NewUniform(low, high float64) Dist    { return Dist{Name: Uniform, Params: []float64{low, high}} }
func NewUniformInt(low, high float64) Dist { return Dist{Name: UniformInt, Params: []float64{low, high}} }
func NewNormal(mu, sigma float64) Dist     { return Dist{Name: Normal, Params: []float64{mu, sigma}} }
func NewExponential(beta float64) Dist     { return Dist{Name: Exponential, Params: []float64{beta}} }
func NewLogNormal(mu, sigma float64) Dist  { return Dist{Name: LogNormal, Params: []float64{mu, sigma}} }
func NewGamma(k, theta float64) Dist       { return Dist{Name: Gamma, Params: []float64{k, theta}} }
func NewPoisson(lambda float64) Dist       { return Dist{Name: Poisson, Params: []float64{lambda}} }
func NewBinomial(n, p float64) Dist        { return Dist{Name: Binomial, Params: []float64{n, p}} }
func NewVonMises(mu, kappa float64) Dist   { return Dist{Name: VonMises, Params: []float64{mu, kappa}} }
func NewNormalClipped(mu, sigma, low, high float64) Dist {
	return Dist{Name: NormalClipped, Params: []float64{mu, sigma, low, high}}
}
func NewNormalClippedToBoundary(mu, sigma, low, high float64) Dist {
	return Dist{Name: NormalClippedToBoundary, Params: []float64{mu, sigma, low, high}}
}

// Validate checks the name and the number and range of the parameters.
func (d Dist) Validate() error {
	if d.Name < 0 || d.Name >= NamesN {
		return fmt.Errorf("%w: name index %d", ErrUnsupportedDistribution, d.Name)
	}
	if len(d.Params) != nParams[d.Name] {
		return fmt.Errorf("%w: %v takes %d parameters, got %d", ErrUnsupportedDistribution, d.Name, nParams[d.Name], len(d.Params))
	}
	p := d.Params
	switch d.Name {
	case Uniform, UniformInt, RandInt:
		if !(p[0] < p[1]) {
			return fmt.Errorf("%w: %v needs low < high, got %v", ErrUnsupportedDistribution, d.Name, p)
		}
	case Normal, LogNormal:
		if p[1] <= 0 {
			return fmt.Errorf("%w: %v needs sigma > 0", ErrUnsupportedDistribution, d.Name)
		}
	case NormalClipped, NormalClippedToBoundary:
		if p[1] <= 0 || !(p[2] < p[3]) {
			return fmt.Errorf("%w: %v needs sigma > 0 and low < high", ErrUnsupportedDistribution, d.Name)
		}
	case Exponential:
		if p[0] <= 0 {
			return fmt.Errorf("%w: exponential needs beta > 0", ErrUnsupportedDistribution)
		}
	case Gamma:
		if p[0] <= 0 || p[1] <= 0 {
			return fmt.Errorf("%w: gamma needs k > 0 and theta > 0", ErrUnsupportedDistribution)
		}
	case Poisson:
		if p[0] <= 0 {
			return fmt.Errorf("%w: poisson needs lambda > 0", ErrUnsupportedDistribution)
		}
	case Binomial:
		if p[0] < 0 || p[0] != math.Trunc(p[0]) || p[1] < 0 || p[1] > 1 {
			return fmt.Errorf("%w: binomial needs integer n >= 0 and 0 <= p <= 1", ErrUnsupportedDistribution)
		}
	case VonMises:
		if p[1] < 0 {
			return fmt.Errorf("%w: vonmises needs kappa >= 0", ErrUnsupportedDistribution)
		}
	}
	return nil
}

// Bounds returns the hard bounds of the values the distribution can produce,
// with -Inf / +Inf for unbounded sides.
func (d Dist) Bounds() minmax.F64 {
	m, err := d.model()
	if err != nil {
		return minmax.F64{Min: math.Inf(-1), Max: math.Inf(1)}
	}
	lo, hi := m.support()
	return minmax.F64{Min: lo, Max: hi}
}

// IsDiscrete returns true for integer-valued distributions.
func (d Dist) IsDiscrete() bool {
	switch d.Name {
	case UniformInt, RandInt, Poisson, Binomial:
		return true
	}
	return false
}

func (d Dist) String() string {
	var b strings.Builder
	b.WriteString(d.Name.String())
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g", p)
	}
	b.WriteByte(')')
	return b.String()
}
