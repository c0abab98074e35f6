// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synstore

import (
	"encoding/json"
	"fmt"

	"github.com/emer/spinnconn/connector"
	"github.com/emer/spinnconn/synmat"
)

func pairKey(pr synmat.Pair) string {
	return fmt.Sprintf("%d:%d/%d:%d", pr.Pre.Lo, pr.Pre.Hi, pr.Post.Lo, pr.Post.Hi)
}

func encodeProvenance(prov []connector.ProvenanceItem) ([]byte, error) {
	return json.Marshal(prov)
}

func decodeProvenance(data []byte) ([]connector.ProvenanceItem, error) {
	var prov []connector.ProvenanceItem
	if err := json.Unmarshal(data, &prov); err != nil {
		return nil, err
	}
	return prov, nil
}

func encodeBlock(blk connector.Block) ([]byte, error) {
	return blk.MarshalBinary()
}

func decodeBlock(data []byte) (connector.Block, error) {
	var blk connector.Block
	if err := blk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return blk, nil
}
