// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spinnconn is the overall repository for generating the synaptic
connectivity of projections between neuron populations, for simulation on
neuromorphic hardware that receives its synapses as per-slice blocks.

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* distrib: named random distributions, and the statistics (probable
maximum, mean, variance, probability in a range) used to bound what a
distribution will produce.

* rng: the keyed random streams that make generation independent of
slicing and thread scheduling.

* space: neuron positions and the periodic or open spatial metric used by
distance dependent parameters.

* param: weight and delay sources (scalar, distribution, array, expression
of distance, convolution kernel) and their resolution for a set of connections.

* connector: the connection rules (FixedNumberPre, AllToAll, OneToOne,
FixedProbability, DistanceDependentProbability, FromList, Pattern), bound to
a projection and queried per (pre-slice, post-slice) pair.

* ondevice: the descriptors for generating connectivity on the device.

* synmat: builds all the blocks of a projection, sequentially or in
parallel, and sizes them for the device.

* synstore: keeps the results of builds, in memory or in SQLite.

* examples: runnable programs, examples/fixedpre being the place to start.
*/
package spinnconn
