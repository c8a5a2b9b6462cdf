// Package storage provides the concrete LevelDB-backed implementation of
// the core's abstract snapshot/restore persistence contract.
package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Database wraps a LevelDB handle with the small surface the persister
// needs.
type Database struct {
	db *leveldb.DB
}

// OpenDatabase opens or creates a LevelDB database at path with Snappy
// compression enabled.
func OpenDatabase(path string) (*Database, error) {
	opts := &opt.Options{
		Compression: opt.SnappyCompression,
	}
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Database{db: db}, nil
}

// Close closes the database.
func (db *Database) Close() error {
	return db.db.Close()
}

// Get retrieves the value for key, returning (nil, nil) if absent.
func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return value, err
}

// Put stores a key-value pair.
func (db *Database) Put(key, value []byte) error {
	return db.db.Put(key, value, nil)
}

// Batch represents an atomic batch of writes.
type Batch struct {
	batch *leveldb.Batch
	db    *Database
}

// NewBatch creates a new batch of atomic writes against db.
func (db *Database) NewBatch() *Batch {
	return &Batch{batch: new(leveldb.Batch), db: db}
}

// Put queues a put operation in the batch.
func (b *Batch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

// Write commits the batch atomically.
func (b *Batch) Write() error {
	return b.db.db.Write(b.batch, nil)
}
