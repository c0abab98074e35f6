// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package distrib is the statistical oracle for the random distributions that
connector weights and delays can be drawn from.

A Dist is just a name and its PyNN-ordered parameters.  The package-level
functions compute the mean, variance, CDF and inverse CDF of a Dist from
closed forms (gonum stat/distuv), and the probable extrema over n draws:

	MaxProbable(d, n, chance) = Quantile(d, 1 - chance/n)

which keeps the probability that any of n independent draws exceeds the
returned value below chance.  These bounds size hardware memory before any
synapse is generated, so they are used in preference to sampling.

Sampling itself takes an explicit golang.org/x/exp/rand.Source, so that the
caller controls the random stream (see package rng).
*/
package distrib
