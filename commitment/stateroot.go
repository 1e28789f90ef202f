// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitment

import (
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/trie"
)

// OverlayRoot computes the state root resulting from applying the sorted overlay on top
// of the tries persisted in tx, along with the node changes it takes. Nothing is written.
//
// Storage tries are updated first, so that account leaves carry the new storage roots.
// An account with storage changes but no record, neither in the overlay nor persisted,
// gets no leaf.
func OverlayRoot(tx *muxdb.Tx, sorted *state.HashedPostStateSorted) (common.Bytes32, *TrieUpdates, error) {
	updates := &TrieUpdates{
		Storages: make(map[common.Bytes32]*StorageTrieUpdates, len(sorted.Storages)),
	}

	for _, st := range sorted.Storages {
		su, err := storageRoot(tx, &st)
		if err != nil {
			return common.Bytes32{}, nil, errors.Wrapf(err, "storage trie %v", st.Key)
		}
		updates.Storages[st.Key] = su
	}

	var zero common.Bytes32
	root, err := TrieRoot(tx, zero)
	if err != nil {
		return common.Bytes32{}, nil, errors.Wrap(err, "load state root")
	}
	accountTrie, err := trie.New(root, &nodeReader{tx, zero})
	if err != nil {
		return common.Bytes32{}, nil, errors.Wrap(err, "open account trie")
	}
	accounts := state.NewAccountCursor(tx.HashedAccounts())

	for _, key := range sorted.ChangedAccounts() {
		acc, ok := sorted.Account(key)
		if !ok {
			if acc, err = accounts.SeekExact(key); err != nil {
				return common.Bytes32{}, nil, errors.Wrapf(err, "load account %v", key)
			}
			if acc == nil {
				continue
			}
		}
		if acc == nil {
			if err := accountTrie.Delete(key[:]); err != nil {
				return common.Bytes32{}, nil, errors.Wrapf(err, "delete account %v", key)
			}
			continue
		}

		var sroot common.Bytes32
		if su, ok := updates.Storages[key]; ok {
			sroot = su.Root
		} else if sroot, err = TrieRoot(tx, key); err != nil {
			return common.Bytes32{}, nil, errors.Wrapf(err, "load storage root %v", key)
		}
		if err := accountTrie.Update(key[:], state.EncodeTrieAccount(acc, sroot)); err != nil {
			return common.Bytes32{}, nil, errors.Wrapf(err, "update account %v", key)
		}
	}

	updates.Root, updates.Accounts = accountTrie.Commit()
	return updates.Root, updates, nil
}

// storageRoot applies the slot changes of one account to its storage trie.
// A wiped trie starts empty.
func storageRoot(tx *muxdb.Tx, st *state.StorageEntry) (*StorageTrieUpdates, error) {
	root := common.EmptyRoot
	if !st.Wiped {
		var err error
		if root, err = TrieRoot(tx, st.Key); err != nil {
			return nil, err
		}
	}
	tr, err := trie.New(root, &nodeReader{tx, st.Key})
	if err != nil {
		return nil, err
	}
	for _, slot := range st.Slots {
		var val []byte
		if !slot.Value.IsZero() {
			val = state.EncodeTrieStorage(slot.Value)
		}
		// an empty value deletes
		if err := tr.Update(slot.Key[:], val); err != nil {
			return nil, err
		}
	}
	newRoot, nodes := tr.Commit()
	return &StorageTrieUpdates{
		Wiped: st.Wiped,
		Root:  newRoot,
		Nodes: nodes,
	}, nil
}
