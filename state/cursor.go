// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/vechain/benchtop/common"
)

// AccountCursor reads persisted accounts ordered by hashed key.
type AccountCursor interface {
	// SeekExact returns the account at key, or nil if absent.
	SeekExact(key common.Bytes32) (*Account, error)
	// Seek returns the first account whose key is greater than or equal to key.
	// A nil account is returned when there is none.
	Seek(key common.Bytes32) (common.Bytes32, *Account, error)
}

// StorageCursor reads persisted storage slots ordered by hashed account and hashed slot.
type StorageCursor interface {
	// SeekExact returns the value of the slot, or nil if absent.
	SeekExact(account, slot common.Bytes32) (*uint256.Int, error)
	// Walk calls fn for each slot of the account in hashed order, until fn returns false.
	Walk(account common.Bytes32, fn func(slot common.Bytes32, value *uint256.Int) bool) error
}

// KVCursor is an ordered cursor over raw entries.
type KVCursor interface {
	SeekExact(key []byte) ([]byte, bool, error)
	Seek(key []byte) ([]byte, []byte, error)
}

// DupKVCursor is an ordered cursor over raw entries with duplicated keys.
type DupKVCursor interface {
	SeekBySubKey(key, subKey []byte) ([]byte, []byte, error)
	WalkDup(key []byte, fn func(subKey, val []byte) bool) error
}

type accountCursor struct {
	c KVCursor
}

// NewAccountCursor creates an account cursor decoding entries of c.
func NewAccountCursor(c KVCursor) AccountCursor {
	return &accountCursor{c}
}

func (ac *accountCursor) SeekExact(key common.Bytes32) (*Account, error) {
	data, ok, err := ac.c.SeekExact(key[:])
	if err != nil || !ok {
		return nil, err
	}
	metricAccountCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "account"})
	return DecodeAccount(data)
}

func (ac *accountCursor) Seek(key common.Bytes32) (common.Bytes32, *Account, error) {
	k, data, err := ac.c.Seek(key[:])
	if err != nil || k == nil {
		return common.Bytes32{}, nil, err
	}
	metricAccountCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "account"})
	a, err := DecodeAccount(data)
	if err != nil {
		return common.Bytes32{}, nil, err
	}
	return common.BytesToBytes32(k), a, nil
}

type storageCursor struct {
	c DupKVCursor
}

// NewStorageCursor creates a storage cursor decoding entries of c.
func NewStorageCursor(c DupKVCursor) StorageCursor {
	return &storageCursor{c}
}

func (sc *storageCursor) SeekExact(account, slot common.Bytes32) (*uint256.Int, error) {
	sub, data, err := sc.c.SeekBySubKey(account[:], slot[:])
	if err != nil || sub == nil || common.BytesToBytes32(sub) != slot {
		return nil, err
	}
	metricAccountCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "storage"})
	return DecodeStorageValue(data)
}

func (sc *storageCursor) Walk(account common.Bytes32, fn func(slot common.Bytes32, value *uint256.Int) bool) error {
	var decodeErr error
	if err := sc.c.WalkDup(account[:], func(sub, data []byte) bool {
		v, err := DecodeStorageValue(data)
		if err != nil {
			decodeErr = err
			return false
		}
		return fn(common.BytesToBytes32(sub), v)
	}); err != nil {
		return err
	}
	return decodeErr
}
