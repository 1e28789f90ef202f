// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
)

func TestAccountCursor(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()

	k1, k2 := common.Bytes32{1}, common.Bytes32{3}
	txm := db.NewTxMut()
	accounts := txm.HashedAccounts()
	require.NoError(t, accounts.Upsert(k1[:], EncodeAccount(NewAccount([]byte{10}))))
	require.NoError(t, accounts.Upsert(k2[:], EncodeAccount(NewAccount([]byte{30}))))
	require.NoError(t, txm.Commit())

	tx := db.NewTx()
	defer tx.Release()
	c := NewAccountCursor(tx.HashedAccounts())

	a, err := c.SeekExact(k1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), a.Balance.Uint64())

	a, err = c.SeekExact(common.Bytes32{2})
	require.NoError(t, err)
	assert.Nil(t, a)

	// successor seek
	k, a, err := c.Seek(common.Bytes32{2})
	require.NoError(t, err)
	assert.Equal(t, k2, k)
	assert.Equal(t, uint64(30), a.Balance.Uint64())

	_, a, err = c.Seek(common.Bytes32{4})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAccountCursorCorrupted(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()

	key := common.Bytes32{1}
	txm := db.NewTxMut()
	require.NoError(t, txm.HashedAccounts().Upsert(key[:], []byte{0x01, 0x02}))
	require.NoError(t, txm.Commit())

	tx := db.NewTx()
	defer tx.Release()
	_, err := NewAccountCursor(tx.HashedAccounts()).SeekExact(key)
	assert.True(t, errors.Is(err, ErrInvalidEncoding))
}

func TestStorageCursor(t *testing.T) {
	db := muxdb.NewMem()
	defer db.Close()

	acc, other := common.Bytes32{1}, common.Bytes32{2}
	txm := db.NewTxMut()
	storages := txm.HashedStorages()
	for i := 1; i <= 3; i++ {
		slot := common.Bytes32{byte(i)}
		require.NoError(t, storages.UpsertDup(acc[:], slot[:], EncodeStorageValue(uint256.NewInt(uint64(i)))))
	}
	require.NoError(t, storages.UpsertDup(other[:], common.Bytes32{}.Bytes(), []byte{0x09}))
	require.NoError(t, txm.Commit())

	tx := db.NewTx()
	defer tx.Release()
	c := NewStorageCursor(tx.HashedStorages())

	v, err := c.SeekExact(acc, common.Bytes32{2})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Uint64())

	v, err = c.SeekExact(acc, common.Bytes32{4})
	require.NoError(t, err)
	assert.Nil(t, v)

	var got []uint64
	require.NoError(t, c.Walk(acc, func(_ common.Bytes32, value *uint256.Int) bool {
		got = append(got, value.Uint64())
		return true
	}))
	assert.Equal(t, []uint64{1, 2, 3}, got)
}
