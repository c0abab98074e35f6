// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connector

import (
	"fmt"

	"github.com/emer/spinnconn/param"
)

// AllToAll connects every pre neuron to every post neuron.  The connection
// from pre i to post j has index i*PostSize+j.
type AllToAll struct {
	Base
}

func NewAllToAll(allowSelf bool) *AllToAll {
	aa := &AllToAll{}
	aa.initBase(aa)
	aa.AllowSelf = allowSelf
	return aa
}

func (aa *AllToAll) name() string      { return "AllToAllConnector" }
func (aa *AllToAll) allowsLists() bool { return true }
func (aa *AllToAll) onMachine() bool   { return true }
func (aa *AllToAll) bind() error       { return nil }
func (aa *AllToAll) nTotal() int       { return aa.Bnd.PreSize * aa.Bnd.PostSize }
func (aa *AllToAll) info() []uint32    { return []uint32{boolWord(aa.AllowSelf)} }

func (aa *AllToAll) conns(pre, post Slice) (*param.Conns, error) {
	self := aa.excludeSelf()
	np := aa.Bnd.PostSize
	cn := param.NewConns(pre.N() * post.N())
	for p := post.Lo; p <= post.Hi; p++ {
		for s := pre.Lo; s <= pre.Hi; s++ {
			if self && s == p {
				continue
			}
			cn.Add(uint64(s*np+p), s, p)
		}
	}
	return cn, nil
}

// OneToOne connects pre neuron i to post neuron i, with index i.
type OneToOne struct {
	Base
}

func NewOneToOne() *OneToOne {
	oo := &OneToOne{}
	oo.initBase(oo)
	return oo
}

func (oo *OneToOne) name() string      { return "OneToOneConnector" }
func (oo *OneToOne) allowsLists() bool { return true }
func (oo *OneToOne) onMachine() bool   { return true }
func (oo *OneToOne) nTotal() int       { return oo.Bnd.PreSize }
func (oo *OneToOne) info() []uint32    { return nil }

func (oo *OneToOne) bind() error {
	if oo.Bnd.PreSize != oo.Bnd.PostSize {
		return fmt.Errorf("%w: one to one from %d to %d neurons", ErrSizeMismatch, oo.Bnd.PreSize, oo.Bnd.PostSize)
	}
	return nil
}

func (oo *OneToOne) conns(pre, post Slice) (*param.Conns, error) {
	ov, ok := pre.Overlap(post)
	if !ok || oo.excludeSelf() {
		return param.NewConns(0), nil
	}
	cn := param.NewConns(ov.N())
	for i := ov.Lo; i <= ov.Hi; i++ {
		cn.Add(uint64(i), i, i)
	}
	return cn, nil
}
