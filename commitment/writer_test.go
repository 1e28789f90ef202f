// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitment

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/trie"
)

func TestMergeNodes(t *testing.T) {
	set := trie.NewNodeSet()
	set.Updated["\x01"] = []byte{1}
	set.Updated[""] = []byte{0}
	set.Removed["\x01"] = struct{}{}
	set.Removed["\x02"] = struct{}{}
	set.Removed[""] = struct{}{}
	set.Removed["\x00\x05"] = struct{}{}

	assert.Equal(t, []nodeOp{
		{"", []byte{0}},
		{"\x00\x05", nil},
		{"\x01", []byte{1}},
		{"\x02", nil},
	}, mergeNodes(set))

	assert.Nil(t, mergeNodes(nil))
}

func TestWriteTrieUpdates(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()
	owner := common.Bytes32{0xaa}

	txm := db.NewTxMut()
	require.NoError(t, txm.TrieNodes(owner).Upsert([]byte{1}, []byte("old-1")))
	require.NoError(t, txm.TrieNodes(owner).Upsert([]byte{2}, []byte("old-2")))
	require.NoError(t, txm.TrieNodes(owner).Upsert([]byte{4}, []byte("old-4")))
	require.NoError(t, txm.Commit())

	set := trie.NewNodeSet()
	set.Updated[""] = []byte("root")
	set.Updated["\x01"] = []byte("new-1")
	set.Removed["\x01"] = struct{}{} // updated wins
	set.Removed["\x02"] = struct{}{}
	set.Removed["\x03"] = struct{}{} // absent, still counted

	txm = db.NewTxMut()
	n, err := WriteTrieUpdates(txm, &TrieUpdates{
		Root:     common.EmptyRoot,
		Storages: map[common.Bytes32]*StorageTrieUpdates{owner: {Root: common.Keccak256([]byte("root")), Nodes: set}},
	})
	require.NoError(t, err)
	require.NoError(t, txm.Commit())
	assert.Equal(t, 3, n)

	tx := db.NewTx()
	defer tx.Release()
	nodes := tx.TrieNodes(owner)

	v, ok, err := nodes.SeekExact([]byte{1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new-1"), v)

	_, ok, _ = nodes.SeekExact([]byte{2})
	assert.False(t, ok)
	_, ok, _ = nodes.SeekExact([]byte{4})
	assert.True(t, ok)
	// the root is not a node entry
	_, ok, _ = nodes.SeekExact([]byte{})
	assert.False(t, ok)

	root, err := TrieRoot(tx, owner)
	require.NoError(t, err)
	assert.Equal(t, common.Keccak256([]byte("root")), root)
}

func TestWriteTrieUpdatesWiped(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()
	owner, other := common.Bytes32{0xaa}, common.Bytes32{0xab}

	txm := db.NewTxMut()
	for i := range 10 {
		require.NoError(t, txm.TrieNodes(owner).Upsert([]byte{byte(i)}, []byte{byte(i)}))
	}
	require.NoError(t, txm.TrieNodes(other).Upsert([]byte{1}, []byte{1}))
	require.NoError(t, txm.TrieRoots().Upsert(owner[:], []byte("old-root")))
	require.NoError(t, txm.Commit())

	set := trie.NewNodeSet()
	set.Updated["\x03"] = []byte("new-3")

	txm = db.NewTxMut()
	_, err := WriteTrieUpdates(txm, &TrieUpdates{
		Root: common.EmptyRoot,
		Storages: map[common.Bytes32]*StorageTrieUpdates{
			owner: {Wiped: true, Root: common.Keccak256([]byte("x")), Nodes: set},
		},
	})
	require.NoError(t, err)
	require.NoError(t, txm.Commit())

	tx := db.NewTx()
	defer tx.Release()
	var keys []string
	require.NoError(t, tx.TrieNodes(owner).Walk(nil, func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	}))
	assert.Equal(t, []string{"\x03"}, keys)

	_, ok, _ := tx.TrieNodes(other).SeekExact([]byte{1})
	assert.True(t, ok, "other tries untouched")
	_, ok, _ = tx.TrieRoots().SeekExact(owner[:])
	assert.False(t, ok, "stale root deleted")
}

func readSlots(t *testing.T, db *muxdb.MuxDB, account common.Bytes32) map[common.Bytes32]uint64 {
	tx := db.NewTx()
	defer tx.Release()
	slots := make(map[common.Bytes32]uint64)
	require.NoError(t, state.NewStorageCursor(tx.HashedStorages()).Walk(account, func(slot common.Bytes32, v *uint256.Int) bool {
		slots[slot] = v.Uint64()
		return true
	}))
	return slots
}

func readAccount(t *testing.T, db *muxdb.MuxDB, key common.Bytes32) *state.Account {
	tx := db.NewTx()
	defer tx.Release()
	a, err := state.NewAccountCursor(tx.HashedAccounts()).SeekExact(key)
	require.NoError(t, err)
	return a
}

func writeHashed(t *testing.T, db *muxdb.MuxDB, post *state.HashedPostState) {
	txm := db.NewTxMut()
	require.NoError(t, WriteHashedState(txm, post.IntoSorted()))
	require.NoError(t, txm.Commit())
}

func TestWriteHashedStateAccounts(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()
	a, b := key(1), key(2)

	post := state.NewHashedPostState()
	post.SetAccount(a, state.NewAccount([]byte{100}))
	post.SetAccount(b, nil) // tombstone of nothing
	writeHashed(t, db, post)

	assert.Equal(t, uint64(100), readAccount(t, db, a).Balance.Uint64())
	assert.Nil(t, readAccount(t, db, b))

	post = state.NewHashedPostState()
	post.SetAccount(a, nil)
	writeHashed(t, db, post)
	assert.Nil(t, readAccount(t, db, a))
}

func TestWriteHashedStateZeroSlot(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()
	a := key(1)

	post := state.NewHashedPostState()
	post.SetSlot(a, slot(1), uint256.NewInt(5))
	post.SetSlot(a, slot(2), new(uint256.Int))
	writeHashed(t, db, post)
	assert.Equal(t, map[common.Bytes32]uint64{slot(1): 5}, readSlots(t, db, a))

	post = state.NewHashedPostState()
	post.SetSlot(a, slot(1), nil)
	writeHashed(t, db, post)
	assert.Empty(t, readSlots(t, db, a))
}

func TestWriteHashedStateWipe(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()
	a, b := key(1), key(2)

	post := state.NewHashedPostState()
	post.SetSlot(a, slot(1), uint256.NewInt(5))
	post.SetSlot(a, slot(2), uint256.NewInt(7))
	post.SetSlot(b, slot(1), uint256.NewInt(1))
	writeHashed(t, db, post)

	post = state.NewHashedPostState()
	post.Wipe(a)
	post.SetSlot(a, slot(1), uint256.NewInt(9))
	writeHashed(t, db, post)

	assert.Equal(t, map[common.Bytes32]uint64{slot(1): 9}, readSlots(t, db, a))
	assert.Equal(t, map[common.Bytes32]uint64{slot(1): 1}, readSlots(t, db, b))
}
