// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb implements the storage layer of the state-commit pipeline.
// It lays hashed state, trie nodes and named kv-stores out in separate key spaces of one leveldb,
// and exposes them through snapshot transactions, write transactions and table cursors.
package muxdb

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/benchtop/kv"
	"github.com/vechain/benchtop/log"
	"github.com/vechain/benchtop/muxdb/internal/engine"
)

const (
	hashedAccountSpace = byte(0) // the key space for hashed accounts.
	hashedStorageSpace = byte(1) // the key space for hashed storage slots.
	accountTrieSpace   = byte(2) // the key space for account trie nodes.
	storageTrieSpace   = byte(3) // the key space for storage trie nodes.
	trieRootSpace      = byte(4) // the key space for trie root nodes.
	namedStoreSpace    = byte(5) // the key space for named store.
)

const (
	propStoreName = "muxdb.props"
	configKey     = "config"

	// SchemaVersion is the version of the persistent layout.
	SchemaVersion = 1
)

// ErrSchemaMismatch is returned by Open if the database was written with another layout.
var ErrSchemaMismatch = errors.New("muxdb: schema version mismatch")

var logger = log.WithContext("pkg", "muxdb")

// Options optional parameters for MuxDB.
type Options struct {
	// TrieNodeCacheSizeMB is the size of the cache for trie node blobs.
	TrieNodeCacheSizeMB int `yaml:"trie-node-cache-mb"`
	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int `yaml:"open-files-cache"`
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int `yaml:"read-cache-mb"`
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int `yaml:"write-buffer-mb"`
	// SyncWrite makes transaction commits fsync before returning.
	SyncWrite bool `yaml:"sync-write"`
}

// MuxDB is the database to store hashed state and its merkle-patricia tries.
type MuxDB struct {
	ldb    *leveldb.DB
	engine engine.Engine
	cache  *cache
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	// prepare leveldb options
	ldbOpts := opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.ReadCacheMB * opt.MiB,
		WriteBuffer:            options.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		BlockSize:              1024 * 32, // balance performance of point reads and compression ratio.
		CompactionTableSize:    4 * opt.MiB,
	}

	// open leveldb
	ldb, err := leveldb.OpenFile(path, &ldbOpts)
	if _, corrupted := err.(*dberrors.ErrCorrupted); corrupted {
		logger.Warn("database corrupted, try to recover", "path", path)
		ldb, err = leveldb.RecoverFile(path, &ldbOpts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}

	db := &MuxDB{
		ldb:    ldb,
		engine: engine.NewLevelEngine(ldb, options.SyncWrite),
		cache:  newCache(options.TrieNodeCacheSizeMB),
	}
	if err := db.checkSchema(); err != nil {
		ldb.Close()
		return nil, err
	}
	return db, nil
}

// NewMem creates a memory-backed DB.
func NewMem() *MuxDB {
	storage := storage.NewMemStorage()
	ldb, _ := leveldb.Open(storage, nil)

	return &MuxDB{
		ldb:    ldb,
		engine: engine.NewLevelEngine(ldb, false),
		cache:  newCache(0),
	}
}

// Close closes the DB.
func (db *MuxDB) Close() error {
	return db.engine.Close()
}

// NewTx creates a read-only transaction over the current snapshot of the DB.
// The returned transaction must be released.
func (db *MuxDB) NewTx() *Tx {
	return &Tx{
		view:  view{db.engine.Snapshot()},
		cache: db.cache,
	}
}

// NewTxMut creates a write transaction. Writes are buffered and only reach the DB
// on Commit; reads observe the transaction's own writes.
func (db *MuxDB) NewTxMut() *TxMut {
	return newTxMut(db.engine)
}

// NewStore creates named kv-store.
func (db *MuxDB) NewStore(name string) kv.Store {
	return kv.Bucket(string(namedStoreSpace) + name).NewStore(db.engine)
}

// IsNotFound returns if the error indicates key not found.
func (db *MuxDB) IsNotFound(err error) bool {
	return db.engine.IsNotFound(err)
}

func (db *MuxDB) checkSchema() error {
	cfg := config{SchemaVersion: SchemaVersion}
	if err := cfg.LoadOrSave(db.NewStore(propStoreName)); err != nil {
		return errors.Wrap(err, "load props")
	}
	if cfg.SchemaVersion != SchemaVersion {
		return errors.Wrap(ErrSchemaMismatch, fmt.Sprintf("want %d, got %d", SchemaVersion, cfg.SchemaVersion))
	}
	return nil
}

type config struct {
	SchemaVersion uint32
}

func (c *config) LoadOrSave(store kv.Store) error {
	// try to load
	data, err := store.Get([]byte(configKey))
	if err == nil {
		// and decode
		return json.Unmarshal(data, c)
	}

	if !store.IsNotFound(err) {
		return err
	}
	// not found
	// encode and save
	data, err = json.Marshal(c)
	if err != nil {
		return err
	}
	return store.Put([]byte(configKey), data)
}
