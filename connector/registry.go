// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"

	"github.com/emer/emergent/v2/prjn"
	"github.com/goki/kigen/ordmap"
)

// Options are the arguments of the connector factories; each rule reads
// the fields it needs.
type Options struct {
	N               int          `desc:"FixedNumberPre: pre neurons per post neuron"`
	P               float64      `desc:"FixedProbability: connection probability"`
	Prob            string       `desc:"DistanceDependentProbability: probability expression of d"`
	List            [][]float64  `desc:"FromList: connection rows"`
	Pat             prjn.Pattern `desc:"Pattern: connectivity pattern"`
	AllowSelf       bool         `desc:"allow self connections"`
	WithReplacement bool         `desc:"FixedNumberPre: choose with replacement"`
}

// Factory makes a connector from options.
type Factory func(opts Options) (Connector, error)

// Registry maps connector names to factories, in registration order.
var Registry = ordmap.New[string, Factory]()

func init() {
	Registry.Add("FixedNumberPreConnector", func(o Options) (Connector, error) {
		return NewFixedNumberPre(o.N, o.AllowSelf, o.WithReplacement), nil
	})
	Registry.Add("AllToAllConnector", func(o Options) (Connector, error) {
		return NewAllToAll(o.AllowSelf), nil
	})
	Registry.Add("OneToOneConnector", func(o Options) (Connector, error) {
		return NewOneToOne(), nil
	})
	Registry.Add("FixedProbabilityConnector", func(o Options) (Connector, error) {
		return NewFixedProbability(o.P, o.AllowSelf), nil
	})
	Registry.Add("DistanceDependentProbabilityConnector", func(o Options) (Connector, error) {
		return NewDistanceDependentProbability(o.Prob, o.AllowSelf)
	})
	Registry.Add("FromListConnector", func(o Options) (Connector, error) {
		return NewFromList(o.List, o.AllowSelf)
	})
	Registry.Add("PatternConnector", func(o Options) (Connector, error) {
		return NewPattern(o.Pat), nil
	})
}

// New makes the connector registered under name.
func New(name string, opts Options) (Connector, error) {
	fac, ok := Registry.ValByKey(name)
	if !ok {
		return nil, fmt.Errorf("connector: no connector named %q", name)
	}
	return fac(opts)
}

// Names returns the registered connector names.
func Names() []string {
	nms := make([]string, len(Registry.Order))
	for i, kv := range Registry.Order {
		nms[i] = kv.Key
	}
	return nms
}
