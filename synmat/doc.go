// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synmat builds the synaptic matrices of a projection from a bound
connector.Connector, one block per (pre-slice, post-slice) pair.

A Builder generates the pairs sequentially or over a pool of goroutines,
optionally only the share of the pairs of this MPI process.  Since a
connector gives the same block for a pair however it is scheduled, the
result does not depend on NThreads.

Size gives the memory a pair needs on the device before anything is
generated, from the connector's bounds, with delays past one stage held
in delay extension stages.  Rows lays a generated block out in the
per-pre-neuron rows the device reads.
*/
package synmat
