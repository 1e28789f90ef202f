// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/common"
)

func TestCursorSeek(t *testing.T) {
	db := NewMem()
	defer db.Close()

	tx := db.NewTxMut()
	c := tx.HashedAccounts()
	for _, k := range []byte{1, 3, 5} {
		require.NoError(t, c.Upsert([]byte{k}, []byte{k * 10}))
	}
	// other tables are not visible
	require.NoError(t, tx.TrieRoots().Upsert([]byte{2}, []byte{0xff}))
	require.NoError(t, tx.Commit())

	rtx := db.NewTx()
	defer rtx.Release()
	cur := rtx.HashedAccounts()
	defer cur.Close()

	k, v, err := cur.Seek([]byte{2})
	assert.NoError(t, err)
	assert.Equal(t, []byte{3}, k)
	assert.Equal(t, []byte{30}, v)

	k, _, err = cur.Next()
	assert.NoError(t, err)
	assert.Equal(t, []byte{5}, k)

	k, _, err = cur.Next()
	assert.NoError(t, err)
	assert.Nil(t, k)

	_, ok, err := cur.SeekExact([]byte{2})
	assert.NoError(t, err)
	assert.False(t, ok)

	k, _, err = cur.First()
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, k)
}

func TestDupCursor(t *testing.T) {
	db := NewMem()
	defer db.Close()

	addr1 := common.Bytes32{1}
	addr2 := common.Bytes32{2}

	tx := db.NewTxMut()
	c := tx.HashedStorages()
	require.NoError(t, c.UpsertDup(addr1[:], []byte{1}, []byte{11}))
	require.NoError(t, c.UpsertDup(addr1[:], []byte{3}, []byte{13}))
	require.NoError(t, c.UpsertDup(addr2[:], []byte{2}, []byte{22}))

	sub, val, err := c.SeekBySubKey(addr1[:], []byte{2})
	assert.NoError(t, err)
	assert.Equal(t, []byte{3}, sub)
	assert.Equal(t, []byte{13}, val)

	// beyond the last duplicate of addr1
	sub, _, err = c.SeekBySubKey(addr1[:], []byte{4})
	assert.NoError(t, err)
	assert.Nil(t, sub)

	n, err := c.DeleteDuplicates(addr1[:])
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.DeleteDup(addr2[:], []byte{2}))
	require.NoError(t, c.UpsertDup(addr2[:], []byte{4}, []byte{24}))
	require.NoError(t, tx.Commit())

	rtx := db.NewTx()
	defer rtx.Release()

	var subs [][]byte
	require.NoError(t, rtx.HashedStorages().WalkDup(addr2[:], func(subKey, _ []byte) bool {
		subs = append(subs, append([]byte(nil), subKey...))
		return true
	}))
	assert.Equal(t, [][]byte{{4}}, subs)

	require.NoError(t, rtx.HashedStorages().WalkDup(addr1[:], func(_, _ []byte) bool {
		t.Fatal("addr1 should have no duplicates")
		return false
	}))
}

func TestTrieNode(t *testing.T) {
	db := NewMem()
	defer db.Close()

	owner := common.Bytes32{9}
	root := []byte("root node")
	child := []byte("child node")

	tx := db.NewTxMut()
	require.NoError(t, tx.TrieRoots().Upsert(owner[:], root))
	require.NoError(t, tx.TrieNodes(owner).Upsert([]byte{1, 2}, child))
	require.NoError(t, tx.TrieNodes(common.Bytes32{}).Upsert([]byte{1, 2}, []byte("account node")))
	require.NoError(t, tx.Commit())

	rtx := db.NewTx()
	defer rtx.Release()

	blob, err := rtx.TrieNode(owner, nil, common.Keccak256(root))
	assert.NoError(t, err)
	assert.Equal(t, root, blob)

	blob, err = rtx.TrieNode(owner, []byte{1, 2}, common.Keccak256(child))
	assert.NoError(t, err)
	assert.Equal(t, child, blob)

	blob, err = rtx.TrieNode(common.Bytes32{}, []byte{1, 2}, common.Keccak256([]byte("account node")))
	assert.NoError(t, err)
	assert.Equal(t, []byte("account node"), blob)

	_, err = rtx.TrieNode(owner, []byte{1, 2}, common.Keccak256(root))
	assert.ErrorIs(t, err, ErrNodeHashMismatch)

	_, err = rtx.TrieNode(owner, []byte{3}, common.Bytes32{})
	assert.True(t, rtx.IsNotFound(err))
}

func TestCache(t *testing.T) {
	var nilCache *cache
	nilCache.AddNodeBlob(common.Bytes32{1}, []byte{1})
	assert.Nil(t, nilCache.GetNodeBlob(common.Bytes32{1}))

	c := newCache(1)
	assert.Nil(t, c.GetNodeBlob(common.Bytes32{1}))
	c.AddNodeBlob(common.Bytes32{1}, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, c.GetNodeBlob(common.Bytes32{1}))

	_, hit, miss := c.stats.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
}
