// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitment

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/trie"
)

// nodeOp is one entry of the merged node change sequence. A nil blob removes.
type nodeOp struct {
	path string
	blob []byte
}

// mergeNodes merges removals and updates into one sequence ordered by path.
// A path both updated and removed is updated.
func mergeNodes(set *trie.NodeSet) []nodeOp {
	paths := set.Paths()
	ops := make([]nodeOp, 0, len(paths))
	for _, path := range paths {
		ops = append(ops, nodeOp{path, set.Updated[path]})
	}
	return ops
}

// writeNodes applies the node change set of the trie owned by owner, and returns
// the number of entries written. Root nodes go to the roots table and are not counted.
func writeNodes(tx *muxdb.TxMut, owner common.Bytes32, set *trie.NodeSet) (int, error) {
	var (
		nodes = tx.TrieNodes(owner)
		roots = tx.TrieRoots()
		n     int
	)
	for _, op := range mergeNodes(set) {
		switch {
		case op.blob == nil:
			n++
			var err error
			if op.path == "" {
				err = roots.Delete(owner[:])
			} else {
				err = nodes.Delete([]byte(op.path))
			}
			if err != nil {
				return n, err
			}
		case op.path == "":
			if err := roots.Upsert(owner[:], op.blob); err != nil {
				return n, err
			}
		default:
			n++
			if err := nodes.Upsert([]byte(op.path), op.blob); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// WriteTrieUpdates persists the node changes of the account trie and all storage tries,
// and returns the number of node entries written, deletions included.
//
// The nodes of a wiped storage trie are all deleted before its changes apply.
func WriteTrieUpdates(tx *muxdb.TxMut, updates *TrieUpdates) (int, error) {
	var zero common.Bytes32
	total, err := writeNodes(tx, zero, updates.Accounts)
	if err != nil {
		return total, errors.Wrap(err, "write account trie")
	}
	if updates.Root == common.EmptyRoot {
		if err := tx.TrieRoots().Delete(zero[:]); err != nil {
			return total, errors.Wrap(err, "delete state root")
		}
	}

	for _, owner := range sortedKeys(updates.Storages) {
		su := updates.Storages[owner]
		if su.Wiped {
			n, err := tx.TrieNodes(owner).DeletePrefix(nil)
			if err != nil {
				return total, errors.Wrapf(err, "wipe storage trie %v", owner)
			}
			if err := tx.TrieRoots().Delete(owner[:]); err != nil {
				return total, errors.Wrapf(err, "wipe storage trie %v", owner)
			}
			logger.Trace("storage trie wiped", "owner", owner, "nodes", n)
		}
		n, err := writeNodes(tx, owner, su.Nodes)
		total += n
		if err != nil {
			return total, errors.Wrapf(err, "write storage trie %v", owner)
		}
		if su.Root == common.EmptyRoot {
			if err := tx.TrieRoots().Delete(owner[:]); err != nil {
				return total, errors.Wrapf(err, "delete storage root %v", owner)
			}
		}
	}
	metricTrieEntries().Add(int64(total))
	return total, nil
}

// WriteHashedState persists the sorted account and storage changes.
//
// A tombstone deletes the stored account, if any. Storage of a wiped account is
// deleted before its slot changes apply, and zero slots are never stored.
func WriteHashedState(tx *muxdb.TxMut, sorted *state.HashedPostStateSorted) error {
	accounts := tx.HashedAccounts()
	for _, e := range sorted.Accounts {
		if e.Account != nil {
			if err := accounts.Upsert(e.Key[:], state.EncodeAccount(e.Account)); err != nil {
				return errors.Wrapf(err, "write account %v", e.Key)
			}
			continue
		}
		_, ok, err := accounts.SeekExact(e.Key[:])
		if err != nil {
			return errors.Wrapf(err, "seek account %v", e.Key)
		}
		if ok {
			if err := accounts.Delete(e.Key[:]); err != nil {
				return errors.Wrapf(err, "delete account %v", e.Key)
			}
		}
	}

	storages := tx.HashedStorages()
	for _, st := range sorted.Storages {
		if st.Wiped {
			if _, err := storages.DeleteDuplicates(st.Key[:]); err != nil {
				return errors.Wrapf(err, "wipe storage %v", st.Key)
			}
		}
		for _, slot := range st.Slots {
			sub, _, err := storages.SeekBySubKey(st.Key[:], slot.Key[:])
			if err != nil {
				return errors.Wrapf(err, "seek slot %v/%v", st.Key, slot.Key)
			}
			if bytes.Equal(sub, slot.Key[:]) {
				if err := storages.DeleteDup(st.Key[:], slot.Key[:]); err != nil {
					return errors.Wrapf(err, "delete slot %v/%v", st.Key, slot.Key)
				}
			}
			if !slot.Value.IsZero() {
				if err := storages.UpsertDup(st.Key[:], slot.Key[:], state.EncodeStorageValue(slot.Value)); err != nil {
					return errors.Wrapf(err, "write slot %v/%v", st.Key, slot.Key)
				}
			}
		}
	}
	return nil
}
