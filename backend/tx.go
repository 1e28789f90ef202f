// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package backend

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/vechain/benchtop/commitment"
	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/timer"
)

// Transaction is the read/write surface a workload operates on.
type Transaction interface {
	// Read returns the value of the account at key. The value is the low 8 bytes
	// of the big-endian balance.
	Read(key []byte) ([]byte, bool)
	// NoteRead records key as read, so that the commit proves it.
	NoteRead(key, value []byte)
	// Write sets the balance of the account at key. A nil value deletes the account.
	Write(key, value []byte)
}

// StorageTransaction extends Transaction with account storage access.
// The transactions passed to workloads by DB.Execute implement it.
type StorageTransaction interface {
	Transaction
	// ReadStorage returns the 32-byte big-endian value of a slot.
	ReadStorage(key, slot []byte) ([]byte, bool)
	// NoteStorageRead records a slot as read, so that the commit proves it.
	NoteStorageRead(key, slot []byte)
	// WriteStorage sets the big-endian value of a slot. An empty or zero value deletes the slot.
	WriteStorage(key, slot, value []byte)
	// WipeStorage deletes all storage of the account, including pending slot writes.
	WipeStorage(key []byte)
}

// Workload performs one step of operations against a transaction.
type Workload interface {
	RunStep(tx Transaction)
}

// WorkloadFunc is a func that implements Workload.
type WorkloadFunc func(tx Transaction)

// RunStep calls f(tx).
func (f WorkloadFunc) RunStep(tx Transaction) { f(tx) }

// readTx buffers writes in an overlay over a snapshot of the store.
// Store failures can't surface through the Transaction methods, so the first
// one is kept and fails the commit.
type readTx struct {
	timer    *timer.Timer
	overlay  *state.HashedPostState
	accounts state.AccountCursor
	storages state.StorageCursor
	reads    mapset.Set[common.Bytes32]
	slots    map[common.Bytes32]mapset.Set[common.Bytes32]
	closers  []interface{ Close() }

	nread, nwrite int
	err           error
}

func newReadTx(t *timer.Timer, snap *muxdb.Tx) *readTx {
	var (
		accounts = snap.HashedAccounts()
		storages = snap.HashedStorages()
	)
	return &readTx{
		timer:    t,
		overlay:  state.NewHashedPostState(),
		accounts: state.NewAccountCursor(accounts),
		storages: state.NewStorageCursor(storages),
		reads:    mapset.NewThreadUnsafeSet[common.Bytes32](),
		slots:    make(map[common.Bytes32]mapset.Set[common.Bytes32]),
		closers:  []interface{ Close() }{accounts, storages},
	}
}

func (tx *readTx) close() {
	for _, c := range tx.closers {
		c.Close()
	}
}

func (tx *readTx) fail(err error) {
	if tx.err == nil {
		tx.err = err
	}
}

func (tx *readTx) Read(key []byte) ([]byte, bool) {
	defer tx.timer.RecordSpan(SpanRead).End()
	tx.nread++

	hashed := state.HashKey(key)
	if acc, ok := tx.overlay.Account(hashed); ok {
		metricAccountReads().AddWithLabel(1, map[string]string{"source": "overlay"})
		if acc == nil {
			return nil, false
		}
		return acc.Value(), true
	}

	k, acc, err := tx.accounts.Seek(hashed)
	if err != nil {
		tx.fail(err)
		return nil, false
	}
	if acc == nil || k != hashed {
		metricAccountReads().AddWithLabel(1, map[string]string{"source": "miss"})
		return nil, false
	}
	metricAccountReads().AddWithLabel(1, map[string]string{"source": "store"})
	return acc.Value(), true
}

func (tx *readTx) NoteRead(key, _ []byte) {
	tx.reads.Add(state.HashKey(key))
}

func (tx *readTx) Write(key, value []byte) {
	tx.nwrite++
	hashed := state.HashKey(key)
	if value == nil {
		tx.overlay.SetAccount(hashed, nil)
		return
	}
	tx.overlay.SetAccount(hashed, state.NewAccount(value))
}

func (tx *readTx) ReadStorage(key, slot []byte) ([]byte, bool) {
	defer tx.timer.RecordSpan(SpanRead).End()
	tx.nread++

	account, hslot := state.HashKey(key), state.HashSlot(slot)
	v, ok := tx.overlay.Slot(account, hslot)
	if !ok {
		var err error
		if v, err = tx.storages.SeekExact(account, hslot); err != nil {
			tx.fail(err)
			return nil, false
		}
	}
	if v == nil || v.IsZero() {
		return nil, false
	}
	b := v.Bytes32()
	return b[:], true
}

func (tx *readTx) NoteStorageRead(key, slot []byte) {
	account := state.HashKey(key)
	tx.reads.Add(account)
	set := tx.slots[account]
	if set == nil {
		set = mapset.NewThreadUnsafeSet[common.Bytes32]()
		tx.slots[account] = set
	}
	set.Add(state.HashSlot(slot))
}

func (tx *readTx) WriteStorage(key, slot, value []byte) {
	tx.nwrite++
	tx.overlay.SetSlot(state.HashKey(key), state.HashSlot(slot), new(uint256.Int).SetBytes(value))
}

func (tx *readTx) WipeStorage(key []byte) {
	tx.nwrite++
	tx.overlay.Wipe(state.HashKey(key))
}

// targets returns the proof targets of everything read.
func (tx *readTx) targets() commitment.Targets {
	targets := make(commitment.Targets, tx.reads.Cardinality())
	tx.reads.Each(func(key common.Bytes32) bool {
		if slots := tx.slots[key]; slots != nil {
			targets[key] = slots
		} else {
			targets[key] = mapset.NewThreadUnsafeSet[common.Bytes32]()
		}
		return false
	})
	return targets
}
