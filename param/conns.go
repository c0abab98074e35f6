// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

// Conns lists the connections realized in one (pre-slice, post-slice)
// pair.  Each connection is identified by its global connection index,
// which is fixed by the connection rule independently of slicing: it keys
// the random stream of the connection and selects its entry in an Array.
type Conns struct {
	Index []uint64 `desc:"global connection index of each connection"`
	Pre   []int    `desc:"pre-synaptic neuron of each connection, population relative"`
	Post  []int    `desc:"post-synaptic neuron of each connection, population relative"`
}

// NewConns returns an empty list with room for n connections.
func NewConns(n int) *Conns {
	return &Conns{Index: make([]uint64, 0, n), Pre: make([]int, 0, n), Post: make([]int, 0, n)}
}

// Len is the number of connections, 0 for a nil list.
func (cn *Conns) Len() int {
	if cn == nil {
		return 0
	}
	return len(cn.Index)
}

// Add appends a connection.
func (cn *Conns) Add(index uint64, pre, post int) {
	cn.Index = append(cn.Index, index)
	cn.Pre = append(cn.Pre, pre)
	cn.Post = append(cn.Post, post)
}

// Ranges returns the connection indexes coalesced into runs of consecutive
// values, as half-open [start, end) pairs in list order.
func (cn *Conns) Ranges() [][2]uint64 {
	var rgs [][2]uint64
	for _, idx := range cn.Index {
		if n := len(rgs); n > 0 && rgs[n-1][1] == idx {
			rgs[n-1][1]++
			continue
		}
		rgs = append(rgs, [2]uint64{idx, idx + 1})
	}
	return rgs
}

// MaxPerPre returns the largest number of connections from any one pre
// neuron for which keep returns true, keep being given the position of
// the connection in the list.  A nil keep counts every connection.
func (cn *Conns) MaxPerPre(keep func(i int) bool) int {
	counts := make(map[int]int)
	mx := 0
	for i, pre := range cn.Pre {
		if keep != nil && !keep(i) {
			continue
		}
		counts[pre]++
		if c := counts[pre]; c > mx {
			mx = c
		}
	}
	return mx
}

// MaxPerPost is MaxPerPre over the post neurons.
func (cn *Conns) MaxPerPost() int {
	counts := make(map[int]int)
	mx := 0
	for _, post := range cn.Post {
		counts[post]++
		if c := counts[post]; c > mx {
			mx = c
		}
	}
	return mx
}
