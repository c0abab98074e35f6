// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/spinnconn/param"
)

// FromList connects the explicit (pre, post[, weight[, delay]]) rows of
// a list.  Row r is connection r, so weight and delay columns become the
// Array weights and delays of the connector.
type FromList struct {
	Base
	List [][]float64 `desc:"connection rows: pre, post and optionally weight and delay"`

	byPost [][]int // rows of each post neuron, by pre neuron
}

// NewFromList checks the rows and takes weights and delays from the third
// and fourth columns when present.
func NewFromList(rows [][]float64, allowSelf bool) (*FromList, error) {
	fl := &FromList{List: rows}
	fl.initBase(fl)
	fl.AllowSelf = allowSelf
	ncol := 0
	for r, row := range rows {
		if r == 0 {
			ncol = len(row)
		}
		if len(row) != ncol || ncol < 2 || ncol > 4 {
			return nil, fmt.Errorf("%w: row %d of the list has %d columns, want 2 to 4 like the first", param.ErrUnsupportedParameterFormat, r, len(row))
		}
		for c := 0; c < 2; c++ {
			if row[c] < 0 || row[c] != math.Trunc(row[c]) {
				return nil, fmt.Errorf("%w: row %d: neuron %v is not an index", param.ErrUnsupportedParameterFormat, r, row[c])
			}
		}
	}
	column := func(c int) []float64 {
		col := make([]float64, len(rows))
		for r, row := range rows {
			col[r] = row[c]
		}
		return col
	}
	var ws, ds any
	if ncol > 2 {
		ws = column(2)
	}
	if ncol > 3 {
		ds = column(3)
	}
	if err := fl.SetWeightsAndDelays(ws, ds); err != nil {
		return nil, err
	}
	return fl, nil
}

func (fl *FromList) String() string {
	return fmt.Sprintf("%s(n_connections=%d, allow_self=%v)", fl.Name(), len(fl.List), fl.AllowSelf)
}

func (fl *FromList) name() string      { return "FromListConnector" }
func (fl *FromList) allowsLists() bool { return true }
func (fl *FromList) onMachine() bool   { return false }
func (fl *FromList) nTotal() int       { return len(fl.List) }
func (fl *FromList) info() []uint32    { return nil }

func (fl *FromList) bind() error {
	fl.byPost = make([][]int, fl.Bnd.PostSize)
	for r, row := range fl.List {
		s, p := int(row[0]), int(row[1])
		if s >= fl.Bnd.PreSize || p >= fl.Bnd.PostSize {
			return fmt.Errorf("%w: list row %d connects %d -> %d in %s", ErrSizeMismatch, r, s, p, fl.Bnd.Label())
		}
		fl.byPost[p] = append(fl.byPost[p], r)
	}
	for _, rows := range fl.byPost {
		sort.SliceStable(rows, func(i, j int) bool {
			return fl.List[rows[i]][0] < fl.List[rows[j]][0]
		})
	}
	return nil
}

func (fl *FromList) conns(pre, post Slice) (*param.Conns, error) {
	self := fl.excludeSelf()
	cn := param.NewConns(0)
	for p := post.Lo; p <= post.Hi; p++ {
		for _, r := range fl.byPost[p] {
			s := int(fl.List[r][0])
			if !pre.Contains(s) || (self && s == p) {
				continue
			}
			cn.Add(uint64(r), s, p)
		}
	}
	return cn, nil
}
