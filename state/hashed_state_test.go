// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"slices"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/benchtop/common"
)

func TestHashedPostStateAccounts(t *testing.T) {
	s := NewHashedPostState()
	key := HashKey([]byte("a"))

	_, ok := s.Account(key)
	assert.False(t, ok)

	s.SetAccount(key, NewAccount([]byte{1}))
	s.SetAccount(key, NewAccount([]byte{2}))
	a, ok := s.Account(key)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), a.Balance.Uint64())

	s.SetAccount(key, nil)
	a, ok = s.Account(key)
	assert.True(t, ok)
	assert.Nil(t, a)
}

func TestHashedPostStateSlots(t *testing.T) {
	s := NewHashedPostState()
	acc := HashKey([]byte("a"))
	s1, s2 := HashSlot([]byte{1}), HashSlot([]byte{2})

	s.SetSlot(acc, s1, uint256.NewInt(5))
	s.SetSlot(acc, s2, nil)

	v, ok := s.Slot(acc, s1)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), v.Uint64())

	v, ok = s.Slot(acc, s2)
	assert.True(t, ok)
	assert.True(t, v.IsZero())

	// wipe drops pending slots, and decides every slot
	s.Wipe(acc)
	v, ok = s.Slot(acc, s1)
	assert.True(t, ok)
	assert.True(t, v.IsZero())

	s.SetSlot(acc, s1, uint256.NewInt(9))
	v, _ = s.Slot(acc, s1)
	assert.Equal(t, uint64(9), v.Uint64())
	assert.True(t, s.Storages[acc].Wiped)

	_, ok = s.Slot(HashKey([]byte("b")), s1)
	assert.False(t, ok)
}

func TestIntoSorted(t *testing.T) {
	s := NewHashedPostState()
	assert.True(t, s.IsEmpty())

	var keys []common.Bytes32
	for i := range 20 {
		k := HashKey([]byte{byte(i)})
		keys = append(keys, k)
		if i%2 == 0 {
			s.SetAccount(k, NewAccount([]byte{byte(i)}))
		}
		if i%3 == 0 {
			for j := range 5 {
				s.SetSlot(k, HashSlot([]byte{byte(j)}), uint256.NewInt(uint64(j)))
			}
		}
	}
	s.Wipe(keys[3])
	assert.False(t, s.IsEmpty())

	sorted := s.IntoSorted()
	assert.Len(t, sorted.Accounts, 10)
	assert.Len(t, sorted.Storages, 7)
	assert.True(t, slices.IsSortedFunc(sorted.Accounts, func(a, b AccountEntry) int {
		return bytes.Compare(a.Key[:], b.Key[:])
	}))
	for _, st := range sorted.Storages {
		assert.True(t, slices.IsSortedFunc(st.Slots, func(a, b SlotEntry) int {
			return bytes.Compare(a.Key[:], b.Key[:])
		}))
		if st.Key == keys[3] {
			assert.True(t, st.Wiped)
			assert.Empty(t, st.Slots)
		}
	}

	changed := sorted.ChangedAccounts()
	// accounts 0..19 that are even or a multiple of 3
	assert.Len(t, changed, 13)
	assert.True(t, slices.IsSortedFunc(changed, compareKeys))

	a, ok := sorted.Account(keys[4])
	assert.True(t, ok)
	assert.Equal(t, uint64(4), a.Balance.Uint64())
	_, ok = sorted.Account(keys[3])
	assert.False(t, ok)
}
