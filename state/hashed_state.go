// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"maps"
	"slices"

	"github.com/holiman/uint256"

	"github.com/vechain/benchtop/common"
)

// HashedStorage is the pending storage change set of one account.
// A zero value deletes the slot.
type HashedStorage struct {
	Wiped bool // all slots existing before the change set are deleted
	Slots map[common.Bytes32]*uint256.Int
}

// NewHashedStorage creates an empty storage change set.
func NewHashedStorage(wiped bool) *HashedStorage {
	return &HashedStorage{Wiped: wiped, Slots: make(map[common.Bytes32]*uint256.Int)}
}

// HashedPostState is the in-memory overlay of pending account and storage changes,
// keyed by hashed keys.
type HashedPostState struct {
	Accounts map[common.Bytes32]*Account // nil value is a tombstone
	Storages map[common.Bytes32]*HashedStorage
}

// NewHashedPostState creates an empty overlay.
func NewHashedPostState() *HashedPostState {
	return &HashedPostState{
		Accounts: make(map[common.Bytes32]*Account),
		Storages: make(map[common.Bytes32]*HashedStorage),
	}
}

// Account returns the pending account at key. The flag reports whether the overlay
// has a verdict for key, in which case a nil account means tombstone.
func (s *HashedPostState) Account(key common.Bytes32) (*Account, bool) {
	a, ok := s.Accounts[key]
	return a, ok
}

// SetAccount overwrites the pending account at key. A nil account is a tombstone.
func (s *HashedPostState) SetAccount(key common.Bytes32, a *Account) {
	s.Accounts[key] = a
}

func (s *HashedPostState) storage(account common.Bytes32) *HashedStorage {
	st := s.Storages[account]
	if st == nil {
		st = NewHashedStorage(false)
		s.Storages[account] = st
	}
	return st
}

// SetSlot records a pending slot value. A nil or zero value deletes the slot.
func (s *HashedPostState) SetSlot(account, slot common.Bytes32, value *uint256.Int) {
	if value == nil {
		value = new(uint256.Int)
	}
	s.storage(account).Slots[slot] = value
}

// Slot returns the pending value of a slot. The flag reports whether the overlay
// decides the slot, which is also the case for any slot of a wiped account.
func (s *HashedPostState) Slot(account, slot common.Bytes32) (*uint256.Int, bool) {
	st := s.Storages[account]
	if st == nil {
		return nil, false
	}
	if v, ok := st.Slots[slot]; ok {
		return v, true
	}
	if st.Wiped {
		return new(uint256.Int), true
	}
	return nil, false
}

// Wipe marks all storage of the account deleted, and drops its pending slots.
func (s *HashedPostState) Wipe(account common.Bytes32) {
	s.Storages[account] = NewHashedStorage(true)
}

// IsEmpty returns whether the overlay holds no change.
func (s *HashedPostState) IsEmpty() bool {
	return len(s.Accounts) == 0 && len(s.Storages) == 0
}

// AccountEntry is an account change in hashed order.
type AccountEntry struct {
	Key     common.Bytes32
	Account *Account // nil is a tombstone
}

// SlotEntry is a slot change in hashed order.
type SlotEntry struct {
	Key   common.Bytes32
	Value *uint256.Int // zero deletes
}

// StorageEntry is the storage change set of one account in hashed order.
type StorageEntry struct {
	Key   common.Bytes32
	Wiped bool
	Slots []SlotEntry
}

// HashedPostStateSorted is the overlay with accounts and slots ordered by hashed key.
type HashedPostStateSorted struct {
	Accounts []AccountEntry
	Storages []StorageEntry
}

func compareKeys(a, b common.Bytes32) int {
	return bytes.Compare(a[:], b[:])
}

// IntoSorted sorts the overlay by hashed keys.
func (s *HashedPostState) IntoSorted() *HashedPostStateSorted {
	sorted := &HashedPostStateSorted{
		Accounts: make([]AccountEntry, 0, len(s.Accounts)),
		Storages: make([]StorageEntry, 0, len(s.Storages)),
	}
	for _, key := range slices.SortedFunc(maps.Keys(s.Accounts), compareKeys) {
		sorted.Accounts = append(sorted.Accounts, AccountEntry{key, s.Accounts[key]})
	}
	for _, key := range slices.SortedFunc(maps.Keys(s.Storages), compareKeys) {
		st := s.Storages[key]
		entry := StorageEntry{Key: key, Wiped: st.Wiped, Slots: make([]SlotEntry, 0, len(st.Slots))}
		for _, slot := range slices.SortedFunc(maps.Keys(st.Slots), compareKeys) {
			entry.Slots = append(entry.Slots, SlotEntry{slot, st.Slots[slot]})
		}
		sorted.Storages = append(sorted.Storages, entry)
	}
	return sorted
}

// ChangedAccounts returns the union of keys of changed accounts and accounts with
// changed storage, in hashed order.
func (s *HashedPostStateSorted) ChangedAccounts() []common.Bytes32 {
	keys := make([]common.Bytes32, 0, len(s.Accounts)+len(s.Storages))
	for _, a := range s.Accounts {
		keys = append(keys, a.Key)
	}
	for _, st := range s.Storages {
		keys = append(keys, st.Key)
	}
	slices.SortFunc(keys, compareKeys)
	return slices.Compact(keys)
}

// Account looks up the change of the account at key.
func (s *HashedPostStateSorted) Account(key common.Bytes32) (*Account, bool) {
	i, ok := slices.BinarySearchFunc(s.Accounts, key, func(e AccountEntry, k common.Bytes32) int {
		return compareKeys(e.Key, k)
	})
	if !ok {
		return nil, false
	}
	return s.Accounts[i].Account, true
}
