// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/kv"
)

func keys(t *testing.T, it kv.Iterator) (out []string) {
	defer it.Release()
	for it.Next() {
		out = append(out, string(it.Key())+"="+string(it.Value()))
	}
	require.NoError(t, it.Error())
	return
}

func TestTxMutReadYourWrites(t *testing.T) {
	db := NewMem()
	defer db.Close()

	// seed
	seed := db.NewTxMut()
	for _, k := range []string{"a", "c", "e"} {
		require.NoError(t, seed.Put([]byte(k), []byte("old-"+k)))
	}
	require.NoError(t, seed.Commit())

	tx := db.NewTxMut()
	defer tx.Rollback()

	require.NoError(t, tx.Put([]byte("b"), []byte("new-b")))
	require.NoError(t, tx.Put([]byte("c"), []byte("new-c")))
	require.NoError(t, tx.Delete([]byte("e")))
	require.NoError(t, tx.Delete([]byte("x")))

	v, err := tx.Get([]byte("c"))
	assert.NoError(t, err)
	assert.Equal(t, "new-c", string(v))

	_, err = tx.Get([]byte("e"))
	assert.True(t, tx.IsNotFound(err))

	has, err := tx.Has([]byte("a"))
	assert.NoError(t, err)
	assert.True(t, has)

	assert.Equal(t, []string{"a=old-a", "b=new-b", "c=new-c"}, keys(t, tx.Iterate(kv.Range{})))

	it := tx.Iterate(kv.Range{})
	assert.True(t, it.Seek([]byte("bb")))
	assert.Equal(t, "c", string(it.Key()))
	assert.False(t, it.Next())
	it.Release()

	// the db is untouched before commit
	rtx := db.NewTx()
	_, err = rtx.src.Get([]byte("b"))
	assert.True(t, rtx.IsNotFound(err))
	rtx.Release()
}

func TestTxMutCommitAndRollback(t *testing.T) {
	db := NewMem()
	defer db.Close()

	tx := db.NewTxMut()
	require.NoError(t, tx.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, tx.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, tx.Len())
	tx.Rollback()

	assert.ErrorIs(t, tx.Put([]byte("k3"), nil), ErrTxDone)
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)

	rtx := db.NewTx()
	assert.Nil(t, keys(t, rtx.src.Iterate(kv.Range{})))
	rtx.Release()

	tx = db.NewTxMut()
	require.NoError(t, tx.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, tx.Put([]byte("k2"), []byte("v2")))
	require.NoError(t, tx.Commit())

	tx = db.NewTxMut()
	require.NoError(t, tx.Delete([]byte("k1")))
	require.NoError(t, tx.Commit())
	tx.Rollback()

	rtx = db.NewTx()
	defer rtx.Release()
	assert.Equal(t, []string{"k2=v2"}, keys(t, rtx.src.Iterate(kv.Range{})))
}

func TestMergedIteratorTombstoneRuns(t *testing.T) {
	db := NewMem()
	defer db.Close()

	seed := db.NewTxMut()
	for _, k := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, seed.Put([]byte(k), []byte(k)))
	}
	require.NoError(t, seed.Commit())

	tx := db.NewTxMut()
	defer tx.Rollback()
	for _, k := range []string{"1", "2", "4", "5"} {
		require.NoError(t, tx.Delete([]byte(k)))
	}
	assert.Equal(t, []string{"3=3"}, keys(t, tx.Iterate(kv.Range{})))
	assert.Equal(t, []string{"3=3"}, keys(t, tx.Iterate(kv.Range{Start: []byte("2"), Limit: []byte("5")})))
}
