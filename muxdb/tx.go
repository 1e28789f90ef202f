// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/common"
)

// ErrNodeHashMismatch is returned when a stored trie node does not hash to the expected value.
var ErrNodeHashMismatch = errors.New("muxdb: trie node hash mismatch")

// Tx is a read-only transaction over a consistent snapshot of the DB.
type Tx struct {
	view
	cache *cache
}

// TrieNode loads the node of the trie owned by owner at path, and verifies it hashes to hash.
// The root node of a trie is addressed by the empty path.
// If the node is absent, the returned error satisfies IsNotFound.
func (tx *Tx) TrieNode(owner common.Bytes32, path []byte, hash common.Bytes32) ([]byte, error) {
	if blob := tx.cache.GetNodeBlob(hash); blob != nil {
		return blob, nil
	}

	var (
		blob []byte
		err  error
	)
	if len(path) == 0 {
		blob, err = trieRootBucket.NewGetter(tx.src).Get(owner[:])
	} else {
		blob, err = trieBucket(owner).NewGetter(tx.src).Get(path)
	}
	if err != nil {
		return nil, err
	}
	if got := common.Keccak256(blob); got != hash {
		return nil, errors.Wrapf(ErrNodeHashMismatch, "owner %v path %x: want %v, got %v", owner, path, hash, got)
	}
	tx.cache.AddNodeBlob(hash, blob)
	return blob, nil
}

// IsNotFound returns if the error indicates key not found.
func (tx *Tx) IsNotFound(err error) bool {
	return tx.src.IsNotFound(errors.Cause(err))
}

// Release releases the snapshot.
func (tx *Tx) Release() {
	if snap, ok := tx.src.(interface{ Release() }); ok {
		snap.Release()
	}
}
