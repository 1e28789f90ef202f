// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/benchtop/kv"
	"github.com/vechain/benchtop/muxdb/internal/engine"
)

// value tags of buffered writes
const (
	tagDeleted = byte(0)
	tagValue   = byte(1)
)

// ErrTxDone is returned when a finished write transaction is used.
var ErrTxDone = errors.New("muxdb: transaction already committed or rolled back")

// TxMut is a write transaction. Writes are buffered in memory over a snapshot,
// and reads observe them. Commit applies all buffered writes atomically.
type TxMut struct {
	mutView
	engine engine.Engine
	snap   kv.Snapshot
	mem    *memdb.DB
	done   bool
}

func newTxMut(e engine.Engine) *TxMut {
	tx := &TxMut{
		engine: e,
		snap:   e.Snapshot(),
		mem:    memdb.New(comparer.DefaultComparer, 0),
	}
	tx.mutView = mutView{view{tx}, tx}
	return tx
}

// Get returns the value of key, buffered writes first.
func (tx *TxMut) Get(key []byte) ([]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	if v, err := tx.mem.Get(key); err == nil {
		if v[0] == tagDeleted {
			return nil, leveldb.ErrNotFound
		}
		return bytes.Clone(v[1:]), nil
	}
	return tx.snap.Get(key)
}

// Has returns if key exists.
func (tx *TxMut) Has(key []byte) (bool, error) {
	_, err := tx.Get(key)
	if err != nil {
		if tx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsNotFound returns if the error indicates key not found.
func (tx *TxMut) IsNotFound(err error) bool {
	return tx.snap.IsNotFound(errors.Cause(err))
}

// Put buffers a write of key.
func (tx *TxMut) Put(key, val []byte) error {
	if tx.done {
		return ErrTxDone
	}
	buf := make([]byte, 1+len(val))
	buf[0] = tagValue
	copy(buf[1:], val)
	return tx.mem.Put(key, buf)
}

// Delete buffers a deletion of key.
func (tx *TxMut) Delete(key []byte) error {
	if tx.done {
		return ErrTxDone
	}
	return tx.mem.Put(key, []byte{tagDeleted})
}

// Iterate iterates the merged view of buffered writes and the snapshot.
func (tx *TxMut) Iterate(r kv.Range) kv.Iterator {
	return newMergedIterator(
		tx.mem.NewIterator((*util.Range)(&r)),
		tx.snap.Iterate(r),
	)
}

// Len returns the count of buffered writes.
func (tx *TxMut) Len() int {
	return tx.mem.Len()
}

// Commit writes all buffered writes into the DB in a single atomic batch.
func (tx *TxMut) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	defer tx.finish()

	bulk := tx.engine.Bulk()
	it := tx.mem.NewIterator(nil)
	defer it.Release()

	for it.Next() {
		var err error
		if v := it.Value(); v[0] == tagDeleted {
			err = bulk.Delete(it.Key())
		} else {
			err = bulk.Put(it.Key(), v[1:])
		}
		if err != nil {
			return errors.Wrap(err, "commit")
		}
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "commit")
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit")
	}
	metricTxCommitSize().Observe(int64(tx.mem.Size()))
	return nil
}

// Rollback discards all buffered writes. It's safe to call after Commit.
func (tx *TxMut) Rollback() {
	if !tx.done {
		tx.finish()
	}
}

func (tx *TxMut) finish() {
	tx.done = true
	tx.snap.Release()
	tx.mem.Reset()
}

// mergedIterator iterates buffered writes over base entries.
// Buffered deletions hide base entries with the same key.
type mergedIterator struct {
	overlay iterator.Iterator
	base    kv.Iterator

	oValid, bValid bool
	started        bool
	key, value     []byte
}

func newMergedIterator(overlay iterator.Iterator, base kv.Iterator) *mergedIterator {
	return &mergedIterator{overlay: overlay, base: base}
}

func (it *mergedIterator) First() bool {
	it.started = true
	it.oValid = it.overlay.First()
	it.bValid = it.base.First()
	return it.settle()
}

func (it *mergedIterator) Seek(key []byte) bool {
	it.started = true
	it.oValid = it.overlay.Seek(key)
	it.bValid = it.base.Seek(key)
	return it.settle()
}

func (it *mergedIterator) Next() bool {
	if !it.started {
		return it.First()
	}
	if it.key == nil {
		return false
	}
	if it.oValid && bytes.Equal(it.overlay.Key(), it.key) {
		it.oValid = it.overlay.Next()
	}
	if it.bValid && bytes.Equal(it.base.Key(), it.key) {
		it.bValid = it.base.Next()
	}
	return it.settle()
}

// settle positions the iterator at the smallest visible key of the two sources.
func (it *mergedIterator) settle() bool {
	for {
		switch {
		case !it.oValid && !it.bValid:
			it.key, it.value = nil, nil
			return false
		case it.oValid && (!it.bValid || bytes.Compare(it.overlay.Key(), it.base.Key()) <= 0):
			k, v := it.overlay.Key(), it.overlay.Value()
			if v[0] == tagDeleted {
				if it.bValid && bytes.Equal(it.base.Key(), k) {
					it.bValid = it.base.Next()
				}
				it.oValid = it.overlay.Next()
				continue
			}
			it.key, it.value = bytes.Clone(k), bytes.Clone(v[1:])
			return true
		default:
			it.key, it.value = bytes.Clone(it.base.Key()), bytes.Clone(it.base.Value())
			return true
		}
	}
}

func (it *mergedIterator) Key() []byte   { return it.key }
func (it *mergedIterator) Value() []byte { return it.value }

func (it *mergedIterator) Error() error {
	if err := it.overlay.Error(); err != nil {
		return err
	}
	return it.base.Error()
}

func (it *mergedIterator) Release() {
	it.overlay.Release()
	it.base.Release()
}
