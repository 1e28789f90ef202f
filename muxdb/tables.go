// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/kv"
)

var (
	hashedAccountBucket = kv.Bucket([]byte{hashedAccountSpace})
	hashedStorageBucket = kv.Bucket([]byte{hashedStorageSpace})
	accountTrieBucket   = kv.Bucket([]byte{accountTrieSpace})
	storageTrieBucket   = kv.Bucket([]byte{storageTrieSpace})
	trieRootBucket      = kv.Bucket([]byte{trieRootSpace})
)

// trieBucket returns the node bucket of the trie owned by owner.
// The zero owner denotes the account trie.
func trieBucket(owner common.Bytes32) kv.Bucket {
	if owner.IsZero() {
		return accountTrieBucket
	}
	return storageTrieBucket.Append(owner[:])
}

// view is the table layout over an ordered kv reader.
type view struct {
	src kv.Reader
}

// HashedAccounts returns the cursor over hashed accounts, keyed by hashed address.
func (v view) HashedAccounts() *Cursor {
	return newCursor(hashedAccountBucket.NewReader(v.src))
}

// HashedStorages returns the dup-cursor over hashed storage slots,
// keyed by hashed address with hashed slot as subkey.
func (v view) HashedStorages() *DupCursor {
	return &DupCursor{newCursor(hashedStorageBucket.NewReader(v.src))}
}

// TrieNodes returns the cursor over non-root nodes of the trie owned by owner, keyed by path.
func (v view) TrieNodes(owner common.Bytes32) *Cursor {
	return newCursor(trieBucket(owner).NewReader(v.src))
}

// TrieRoots returns the cursor over trie root nodes, keyed by owner.
func (v view) TrieRoots() *Cursor {
	return newCursor(trieRootBucket.NewReader(v.src))
}

// mutView extends view with writes.
type mutView struct {
	view
	dst kv.Putter
}

// HashedAccounts returns the mutable cursor over hashed accounts.
func (v mutView) HashedAccounts() *CursorMut {
	return &CursorMut{v.view.HashedAccounts(), hashedAccountBucket.NewPutter(v.dst)}
}

// HashedStorages returns the mutable dup-cursor over hashed storage slots.
func (v mutView) HashedStorages() *DupCursorMut {
	return &DupCursorMut{
		CursorMut{v.view.HashedStorages().Cursor, hashedStorageBucket.NewPutter(v.dst)},
	}
}

// TrieNodes returns the mutable cursor over non-root nodes of the trie owned by owner.
func (v mutView) TrieNodes(owner common.Bytes32) *CursorMut {
	return &CursorMut{v.view.TrieNodes(owner), trieBucket(owner).NewPutter(v.dst)}
}

// TrieRoots returns the mutable cursor over trie root nodes.
func (v mutView) TrieRoots() *CursorMut {
	return &CursorMut{v.view.TrieRoots(), trieRootBucket.NewPutter(v.dst)}
}
