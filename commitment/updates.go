// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package commitment computes state roots over an overlay, persists trie and hashed-state
// changes, and builds multiproofs against the persisted tries.
package commitment

import (
	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/log"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/trie"
)

var logger = log.WithContext("pkg", "commitment")

// StorageTrieUpdates is the node change set of one storage trie.
type StorageTrieUpdates struct {
	Wiped bool // all nodes persisted before the change set are deleted
	Root  common.Bytes32
	Nodes *trie.NodeSet
}

// TrieUpdates is the node change set of the account trie and the storage tries,
// produced by OverlayRoot.
type TrieUpdates struct {
	Root     common.Bytes32
	Accounts *trie.NodeSet
	Storages map[common.Bytes32]*StorageTrieUpdates
}

// Size returns the count of updated and removed nodes of all tries.
func (u *TrieUpdates) Size() (updated, removed int) {
	updated, removed = u.Accounts.Size()
	for _, st := range u.Storages {
		up, rm := st.Nodes.Size()
		updated += up
		removed += rm
	}
	return
}

// nodeReader reads nodes of the trie owned by owner.
type nodeReader struct {
	tx    *muxdb.Tx
	owner common.Bytes32
}

func (r *nodeReader) Node(path []byte, hash common.Bytes32) ([]byte, error) {
	return r.tx.TrieNode(r.owner, path, hash)
}

// TrieRoot returns the persisted root hash of the trie owned by owner.
// The zero owner denotes the account trie. An absent trie has the empty root.
func TrieRoot(tx *muxdb.Tx, owner common.Bytes32) (common.Bytes32, error) {
	blob, ok, err := tx.TrieRoots().SeekExact(owner[:])
	if err != nil {
		return common.Bytes32{}, err
	}
	if !ok {
		return common.EmptyRoot, nil
	}
	return common.Keccak256(blob), nil
}
