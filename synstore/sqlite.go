// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emer/spinnconn/connector"
	"github.com/emer/spinnconn/synmat"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps runs in a SQLite database file, blocks as their
// binary synapse encoding and provenance as JSON.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("synstore: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, connector, label, nsyns, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			connector = excluded.connector,
			label = excluded.label,
			nsyns = excluded.nsyns,
			created = excluded.created
	`, run.ID, run.Connector, run.Label, run.NSyns, run.Created.UnixNano())
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}
	run := Run{ID: id}
	var created int64
	err = db.QueryRowContext(ctx, `SELECT connector, label, nsyns, created FROM runs WHERE id = ?`, id).
		Scan(&run.Connector, &run.Label, &run.NSyns, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	run.Created = time.Unix(0, created).UTC()
	return run, true, nil
}

func (s *SQLiteStore) SaveBlock(ctx context.Context, runID string, pr synmat.Pair, blk connector.Block) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := encodeBlock(blk)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO blocks (run_id, pair, nsyns, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, pair) DO UPDATE SET
			nsyns = excluded.nsyns,
			payload = excluded.payload
	`, runID, pairKey(pr), len(blk), payload)
	return err
}

func (s *SQLiteStore) GetBlock(ctx context.Context, runID string, pr synmat.Pair) (connector.Block, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM blocks WHERE run_id = ? AND pair = ?`, runID, pairKey(pr)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	blk, err := decodeBlock(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode block %s %v: %w", runID, pr, err)
	}
	return blk, true, nil
}

func (s *SQLiteStore) SaveProvenance(ctx context.Context, runID string, prov []connector.ProvenanceItem) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := encodeProvenance(prov)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO provenance (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, runID, payload)
	return err
}

func (s *SQLiteStore) GetProvenance(ctx context.Context, runID string) ([]connector.ProvenanceItem, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM provenance WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	prov, err := decodeProvenance(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode provenance %s: %w", runID, err)
	}
	return prov, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			connector TEXT NOT NULL,
			label TEXT NOT NULL,
			nsyns INTEGER NOT NULL,
			created INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS blocks (
			run_id TEXT NOT NULL,
			pair TEXT NOT NULL,
			nsyns INTEGER NOT NULL,
			payload BLOB,
			PRIMARY KEY (run_id, pair)
		);
		CREATE TABLE IF NOT EXISTS provenance (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
