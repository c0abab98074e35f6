// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synstore

import (
	"context"
	"sync"

	"github.com/emer/spinnconn/connector"
	"github.com/emer/spinnconn/synmat"
)

// MemoryStore keeps everything in maps.  Blocks are copied in and out.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	blocks      map[string]map[string]connector.Block
	provenance  map[string][]connector.ProvenanceItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.blocks = make(map[string]map[string]connector.Block)
	s.provenance = make(map[string][]connector.ProvenanceItem)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return Run{}, false, ErrNotInitialized
	}
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveBlock(_ context.Context, runID string, pr synmat.Pair, blk connector.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	rb, ok := s.blocks[runID]
	if !ok {
		rb = make(map[string]connector.Block)
		s.blocks[runID] = rb
	}
	rb[pairKey(pr)] = append(connector.Block{}, blk...)
	return nil
}

func (s *MemoryStore) GetBlock(_ context.Context, runID string, pr synmat.Pair) (connector.Block, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	blk, ok := s.blocks[runID][pairKey(pr)]
	if !ok {
		return nil, false, nil
	}
	return append(connector.Block{}, blk...), true, nil
}

func (s *MemoryStore) SaveProvenance(_ context.Context, runID string, prov []connector.ProvenanceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.provenance[runID] = append([]connector.ProvenanceItem(nil), prov...)
	return nil
}

func (s *MemoryStore) GetProvenance(_ context.Context, runID string) ([]connector.ProvenanceItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	prov, ok := s.provenance[runID]
	return append([]connector.ProvenanceItem(nil), prov...), ok, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
