// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/common"
)

func TestNewAccount(t *testing.T) {
	a := NewAccount([]byte{0x01, 0x00})
	assert.Equal(t, uint64(1), a.Nonce)
	assert.Nil(t, a.CodeHash)
	assert.Equal(t, uint64(256), a.Balance.Uint64())

	assert.True(t, NewAccount(nil).Balance.IsZero())
}

func TestAccountValue(t *testing.T) {
	a := NewAccount([]byte{100})
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 100}, a.Value())

	// only the low 8 bytes are visible
	big := make([]byte, 16)
	big[0], big[15] = 0xff, 0x05
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 5}, NewAccount(big).Value())

	assert.Equal(t, make([]byte, 8), (&Account{}).Value())
}

func TestAccountCodec(t *testing.T) {
	codeHash := common.Keccak256([]byte("code"))
	tests := []*Account{
		{Nonce: 1, Balance: uint256.NewInt(100)},
		{Nonce: 7, Balance: uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffff"), CodeHash: &codeHash},
		{Nonce: 0, Balance: new(uint256.Int)},
	}
	for _, a := range tests {
		dec, err := DecodeAccount(EncodeAccount(a))
		require.NoError(t, err)
		assert.Equal(t, a, dec)
	}

	// nil balance encodes as zero
	dec, err := DecodeAccount(EncodeAccount(&Account{Nonce: 2}))
	require.NoError(t, err)
	assert.True(t, dec.Balance.IsZero())
}

func TestDecodeAccountInvalid(t *testing.T) {
	badHash, _ := rlp.EncodeToBytes([]any{uint64(1), uint256.NewInt(1), []byte{1, 2, 3}})
	for _, data := range [][]byte{
		nil,
		{0x01},
		{0xc0},
		badHash,
	} {
		_, err := DecodeAccount(data)
		assert.True(t, errors.Is(err, ErrInvalidEncoding), "%x", data)
	}
}

func TestTrieAccountCodec(t *testing.T) {
	root := common.Keccak256([]byte("root"))
	a := &Account{Nonce: 1, Balance: uint256.NewInt(50)}

	dec, decRoot, err := DecodeTrieAccount(EncodeTrieAccount(a, root))
	require.NoError(t, err)
	assert.Equal(t, a, dec)
	assert.Equal(t, root, decRoot)

	// the leaf always carries a code hash
	var raw struct {
		Nonce    uint64
		Balance  *uint256.Int
		Root     common.Bytes32
		CodeHash []byte
	}
	require.NoError(t, rlp.DecodeBytes(EncodeTrieAccount(a, common.EmptyRoot), &raw))
	assert.Equal(t, common.EmptyCodeHash.Bytes(), raw.CodeHash)

	codeHash := common.Keccak256([]byte("code"))
	a.CodeHash = &codeHash
	dec, _, err = DecodeTrieAccount(EncodeTrieAccount(a, root))
	require.NoError(t, err)
	assert.Equal(t, codeHash, *dec.CodeHash)

	_, _, err = DecodeTrieAccount([]byte{0x80})
	assert.True(t, errors.Is(err, ErrInvalidEncoding))
}

func TestStorageValueCodec(t *testing.T) {
	v := uint256.NewInt(0x1234)
	assert.Equal(t, []byte{0x12, 0x34}, EncodeStorageValue(v))

	dec, err := DecodeStorageValue([]byte{0x12, 0x34})
	require.NoError(t, err)
	assert.Equal(t, v, dec)

	for _, data := range [][]byte{nil, {0x00}, {0x00, 0x01}, make([]byte, 33)} {
		_, err := DecodeStorageValue(data)
		assert.True(t, errors.Is(err, ErrInvalidEncoding), "%x", data)
	}

	dec, err = DecodeTrieStorage(EncodeTrieStorage(v))
	require.NoError(t, err)
	assert.Equal(t, v, dec)
}

func TestHashKey(t *testing.T) {
	assert.Equal(t, common.Keccak256([]byte("alice")), HashKey([]byte("alice")))
	assert.NotEqual(t, HashKey([]byte("alice")), HashKey([]byte("bob")))
}
