// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import "fmt"

// ClippedDelaysKey is the metric name of the delay clipping provenance.
const ClippedDelaysKey = "Times_synaptic_delays_got_clipped"

// ClipDelays raises every delay below min to min, returning how many
// were raised.
func ClipDelays(delays []float64, min float64) int {
	n := 0
	for i, d := range delays {
		if d < min {
			delays[i] = min
			n++
		}
	}
	return n
}

func (b *Base) NClippedDelays() int64 {
	return b.nClipped.Load()
}

// ProvName is the name of the connector in provenance reports.
func (b *Base) ProvName() string {
	return fmt.Sprintf("%s_%s_%s", b.Bnd.PreLabel, b.Bnd.PostLabel, b.Name())
}

func (b *Base) Provenance() []ProvenanceItem {
	n := b.nClipped.Load()
	return []ProvenanceItem{{
		KeyPath: []string{b.ProvName(), ClippedDelaysKey},
		Value:   n,
		Report:  n > 0,
		Message: fmt.Sprintf("%d delays of %s from %s to %s were below the %g ms minimum delay and were raised to it; use a smaller timestep or delays of at least one timestep to keep them",
			n, b.Name(), b.Bnd.PreLabel, b.Bnd.PostLabel, b.Bnd.MinDelay),
	}}
}
