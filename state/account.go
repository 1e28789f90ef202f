// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/common"
)

// ErrInvalidEncoding is returned when stored bytes can't be decoded into an account or a storage value.
var ErrInvalidEncoding = errors.New("state: invalid encoding")

// Account is the hashed-state representation of an account.
type Account struct {
	Nonce    uint64
	CodeHash *common.Bytes32 // nil for accounts without code
	Balance  *uint256.Int
}

// NewAccount builds the account a write with value produces.
// The value is the big-endian balance, only the last 32 bytes are significant.
func NewAccount(value []byte) *Account {
	return &Account{
		Nonce:   1,
		Balance: new(uint256.Int).SetBytes(value),
	}
}

// Value returns the low 8 bytes of the big-endian balance.
func (a *Account) Value() []byte {
	var buf [8]byte
	if a.Balance != nil {
		binary.BigEndian.PutUint64(buf[:], a.Balance.Uint64())
	}
	return buf[:]
}

func (a *Account) balance() *uint256.Int {
	if a.Balance == nil {
		return new(uint256.Int)
	}
	return a.Balance
}

func (a *Account) codeHash() common.Bytes32 {
	if a.CodeHash == nil {
		return common.EmptyCodeHash
	}
	return *a.CodeHash
}

// storedAccount is the RLP layout of an account in the hashed-state table.
type storedAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash []byte // empty if no code
}

// EncodeAccount encodes the account into its stored form.
func EncodeAccount(a *Account) []byte {
	sa := storedAccount{
		Nonce:   a.Nonce,
		Balance: a.balance(),
	}
	if a.CodeHash != nil {
		sa.CodeHash = a.CodeHash.Bytes()
	}
	data, err := rlp.EncodeToBytes(&sa)
	if err != nil {
		panic(err) // fixed layout, never fails
	}
	return data
}

// DecodeAccount decodes an account from its stored form.
func DecodeAccount(data []byte) (*Account, error) {
	var sa storedAccount
	if err := rlp.DecodeBytes(data, &sa); err != nil {
		return nil, errors.Wrapf(ErrInvalidEncoding, "account: %v", err)
	}
	a := &Account{Nonce: sa.Nonce, Balance: sa.Balance}
	switch len(sa.CodeHash) {
	case 0:
	case 32:
		h := common.BytesToBytes32(sa.CodeHash)
		a.CodeHash = &h
	default:
		return nil, errors.Wrapf(ErrInvalidEncoding, "account: code hash of %d bytes", len(sa.CodeHash))
	}
	return a, nil
}

// trieAccount is the Ethereum consensus representation of an account,
// stored as leaf of the account trie.
type trieAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Bytes32 // merkle root of the storage trie
	CodeHash []byte
}

// EncodeTrieAccount encodes the account trie leaf of a with the given storage root.
func EncodeTrieAccount(a *Account, storageRoot common.Bytes32) []byte {
	codeHash := a.codeHash()
	data, err := rlp.EncodeToBytes(&trieAccount{
		Nonce:    a.Nonce,
		Balance:  a.balance(),
		Root:     storageRoot,
		CodeHash: codeHash[:],
	})
	if err != nil {
		panic(err)
	}
	return data
}

// DecodeTrieAccount decodes an account trie leaf, and returns the account along
// with its storage root. A code hash of empty code decodes to nil.
func DecodeTrieAccount(data []byte) (*Account, common.Bytes32, error) {
	var ta trieAccount
	if err := rlp.DecodeBytes(data, &ta); err != nil {
		return nil, common.Bytes32{}, errors.Wrapf(ErrInvalidEncoding, "trie account: %v", err)
	}
	if len(ta.CodeHash) != 32 {
		return nil, common.Bytes32{}, errors.Wrapf(ErrInvalidEncoding, "trie account: code hash of %d bytes", len(ta.CodeHash))
	}
	a := &Account{Nonce: ta.Nonce, Balance: ta.Balance}
	if h := common.BytesToBytes32(ta.CodeHash); h != common.EmptyCodeHash {
		a.CodeHash = &h
	}
	return a, ta.Root, nil
}

// EncodeStorageValue encodes a non-zero storage value in minimal big-endian form.
func EncodeStorageValue(v *uint256.Int) []byte {
	return v.Bytes()
}

// DecodeStorageValue decodes a stored storage value. Zero is never stored.
func DecodeStorageValue(data []byte) (*uint256.Int, error) {
	if len(data) == 0 || len(data) > 32 || data[0] == 0 {
		return nil, errors.Wrapf(ErrInvalidEncoding, "storage value: %x", data)
	}
	return new(uint256.Int).SetBytes(data), nil
}

// EncodeTrieStorage encodes the storage trie leaf of a non-zero value.
func EncodeTrieStorage(v *uint256.Int) []byte {
	data, _ := rlp.EncodeToBytes(v.Bytes())
	return data
}

// DecodeTrieStorage decodes a storage trie leaf.
func DecodeTrieStorage(data []byte) (*uint256.Int, error) {
	_, content, _, err := rlp.Split(data)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidEncoding, "trie storage: %v", err)
	}
	return DecodeStorageValue(content)
}
