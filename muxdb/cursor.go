// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/benchtop/kv"
)

// Cursor is an ordered read cursor over one table.
// Returned keys and values are copies and remain valid after the cursor moves.
type Cursor struct {
	src kv.Reader
	it  kv.Iterator
}

func newCursor(src kv.Reader) *Cursor {
	return &Cursor{src: src}
}

func (c *Cursor) iter() kv.Iterator {
	if c.it == nil {
		c.it = c.src.Iterate(kv.Range{})
	}
	return c.it
}

func (c *Cursor) current(ok bool) ([]byte, []byte, error) {
	if !ok {
		return nil, nil, c.it.Error()
	}
	return bytes.Clone(c.it.Key()), bytes.Clone(c.it.Value()), nil
}

// SeekExact returns the value stored under exactly key.
func (c *Cursor) SeekExact(key []byte) ([]byte, bool, error) {
	val, err := c.src.Get(key)
	if err != nil {
		if c.src.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Seek moves to the first entry whose key is greater than or equal to key.
// A nil key is returned when no such entry exists.
func (c *Cursor) Seek(key []byte) ([]byte, []byte, error) {
	return c.current(c.iter().Seek(key))
}

// First moves to the first entry.
func (c *Cursor) First() ([]byte, []byte, error) {
	return c.current(c.iter().First())
}

// Next moves to the next entry. On a fresh cursor it behaves like First.
func (c *Cursor) Next() ([]byte, []byte, error) {
	if c.it == nil {
		return c.First()
	}
	return c.current(c.it.Next())
}

// Walk calls fn for entries with the given prefix in key order, until fn returns false.
func (c *Cursor) Walk(prefix []byte, fn func(key, val []byte) bool) error {
	it := c.src.Iterate(kv.Range(*util.BytesPrefix(prefix)))
	defer it.Release()

	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}

// Close releases the underlying iterator. The cursor can still be used afterwards.
func (c *Cursor) Close() {
	if c.it != nil {
		c.it.Release()
		c.it = nil
	}
}

// CursorMut is a cursor which also writes into its table.
type CursorMut struct {
	*Cursor
	dst kv.Putter
}

// Upsert inserts or replaces the value of key.
func (c *CursorMut) Upsert(key, val []byte) error {
	// positions are not stable across writes
	c.Close()
	return c.dst.Put(key, val)
}

// Delete removes key. Deleting an absent key is not an error.
func (c *CursorMut) Delete(key []byte) error {
	c.Close()
	return c.dst.Delete(key)
}

// DeletePrefix removes every entry with the given prefix, and returns the count removed.
func (c *CursorMut) DeletePrefix(prefix []byte) (int, error) {
	var keys [][]byte
	if err := c.Walk(prefix, func(key, _ []byte) bool {
		keys = append(keys, bytes.Clone(key))
		return true
	}); err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := c.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// DupCursor reads a table whose keys are the concatenation of a fixed-length key and a subkey,
// so that one key holds many ordered duplicates.
type DupCursor struct {
	*Cursor
}

// SeekBySubKey returns the first duplicate of key whose subkey is greater than or equal to subKey.
// A nil subkey is returned when there is none.
func (c *DupCursor) SeekBySubKey(key, subKey []byte) ([]byte, []byte, error) {
	k, v, err := c.Seek(append(bytes.Clone(key), subKey...))
	if err != nil || k == nil || !bytes.HasPrefix(k, key) {
		return nil, nil, err
	}
	return k[len(key):], v, nil
}

// WalkDup calls fn for each duplicate of key in subkey order, until fn returns false.
func (c *DupCursor) WalkDup(key []byte, fn func(subKey, val []byte) bool) error {
	return c.Walk(key, func(k, v []byte) bool {
		return fn(k[len(key):], v)
	})
}

// DupCursorMut is a DupCursor which also writes.
type DupCursorMut struct {
	CursorMut
}

// SeekBySubKey returns the first duplicate of key whose subkey is greater than or equal to subKey.
func (c *DupCursorMut) SeekBySubKey(key, subKey []byte) ([]byte, []byte, error) {
	return (&DupCursor{c.Cursor}).SeekBySubKey(key, subKey)
}

// UpsertDup inserts or replaces the duplicate of key at subKey.
func (c *DupCursorMut) UpsertDup(key, subKey, val []byte) error {
	return c.Upsert(append(bytes.Clone(key), subKey...), val)
}

// DeleteDup removes the duplicate of key at subKey.
func (c *DupCursorMut) DeleteDup(key, subKey []byte) error {
	return c.Delete(append(bytes.Clone(key), subKey...))
}

// DeleteDuplicates removes all duplicates of key.
func (c *DupCursorMut) DeleteDuplicates(key []byte) (int, error) {
	return c.DeletePrefix(key)
}
