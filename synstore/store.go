// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package synstore keeps the generated synaptic blocks and provenance of
// builder runs, so they can be read back and compared after the fact.
package synstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emer/spinnconn/connector"
	"github.com/emer/spinnconn/synmat"
	"github.com/google/uuid"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("synstore: store is not initialized")

// Run describes one builder run of a projection.
type Run struct {
	ID        string    `desc:"unique id of the run"`
	Connector string    `desc:"name of the connector"`
	Label     string    `desc:"projection label"`
	NSyns     int       `desc:"total number of synapses stored"`
	Created   time.Time `desc:"when the run was saved"`
}

// Store persists runs, their blocks keyed by slice pair, and provenance.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveBlock(ctx context.Context, runID string, pr synmat.Pair, blk connector.Block) error
	GetBlock(ctx context.Context, runID string, pr synmat.Pair) (connector.Block, bool, error)
	SaveProvenance(ctx context.Context, runID string, prov []connector.ProvenanceItem) error
	GetProvenance(ctx context.Context, runID string) ([]connector.ProvenanceItem, bool, error)
	Close() error
}

// NewStore returns an uninitialized store of the given kind: "memory"
// (the default) or "sqlite" at path.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("synstore: unsupported store backend: %s", kind)
	}
}

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.New().String()
}

// SaveResult saves a builder result as a new run, returning the run.
func SaveResult(ctx context.Context, st Store, c connector.Connector, res *synmat.Result) (Run, error) {
	run := Run{
		ID:        NewRunID(),
		Connector: c.Name(),
		Label:     c.Binding().Label(),
		NSyns:     res.NSyns,
		Created:   time.Now().UTC(),
	}
	for _, pb := range res.Blocks {
		if err := st.SaveBlock(ctx, run.ID, pb.Pair, pb.Block); err != nil {
			return Run{}, fmt.Errorf("synstore: save block %v: %w", pb.Pair, err)
		}
	}
	if err := st.SaveProvenance(ctx, run.ID, res.Provenance); err != nil {
		return Run{}, err
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// LoadResult reads back the blocks of a run for the given pairs.
func LoadResult(ctx context.Context, st Store, runID string, prs []synmat.Pair) (*synmat.Result, error) {
	if _, ok, err := st.GetRun(ctx, runID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("synstore: no run %s", runID)
	}
	res := &synmat.Result{}
	for _, pr := range prs {
		blk, ok, err := st.GetBlock(ctx, runID, pr)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("synstore: run %s has no block for %v", runID, pr)
		}
		res.Blocks = append(res.Blocks, synmat.PairBlock{Pair: pr, Block: blk})
		res.NSyns += len(blk)
	}
	prov, _, err := st.GetProvenance(ctx, runID)
	if err != nil {
		return nil, err
	}
	res.Provenance = prov
	return res, nil
}
