// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package backend runs workloads against the overlay/persistent state and commits them.
//
// A workload step operates on a transaction whose writes are buffered in an overlay.
// DB.Execute then computes the new state root, persists the changed trie nodes and the
// hashed state in one atomic write, and proves every key the step read.
package backend

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/benchtop/commitment"
	"github.com/vechain/benchtop/log"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
)

var logger = log.WithContext("pkg", "backend")

// Options optional parameters for DB.
type Options struct {
	// Reset removes the database directory before opening.
	Reset bool          `yaml:"reset"`
	DB    muxdb.Options `yaml:"db"`
}

// DB is the state database workloads are executed against.
type DB struct {
	lock sync.Mutex
	db   *muxdb.MuxDB

	// commit stages, replaced in tests to inject failures
	writeTrie  func(tx *muxdb.TxMut, updates *commitment.TrieUpdates) (int, error)
	writeState func(tx *muxdb.TxMut, sorted *state.HashedPostStateSorted) error
	commit     func(tx *muxdb.TxMut) error
	prove      func(tx *muxdb.Tx, targets commitment.Targets) (*commitment.MultiProof, error)
}

func newDB(db *muxdb.MuxDB) *DB {
	return &DB{
		db:         db,
		writeTrie:  commitment.WriteTrieUpdates,
		writeState: commitment.WriteHashedState,
		commit:     (*muxdb.TxMut).Commit,
		prove:      commitment.Multiproof,
	}
}

// Open opens or creates the DB at path.
func Open(path string, opts *Options) (*DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Reset {
		logger.Info("resetting database", "path", path)
		if err := os.RemoveAll(path); err != nil {
			return nil, errors.Wrap(err, "reset database")
		}
	}
	db, err := muxdb.Open(path, &opts.DB)
	if err != nil {
		return nil, err
	}
	return newDB(db), nil
}

// NewMem creates a memory-backed DB.
func NewMem() *DB {
	return newDB(muxdb.NewMem())
}

// Close closes the DB.
func (d *DB) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.db.Close()
}

// MuxDB returns the underlying storage.
func (d *DB) MuxDB() *muxdb.MuxDB {
	return d.db
}
