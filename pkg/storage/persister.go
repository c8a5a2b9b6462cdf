package storage

import (
	"encoding/json"
	"fmt"

	"github.com/pouria-shahmiri/acctchain/pkg/core"
)

// Key under which the single opaque snapshot blob is stored. The core
// does not care about the byte layout; this collaborator chooses a
// straightforward JSON encoding of core.Snapshot.
const snapshotKey = "core/snapshot"

// LevelDBPersister implements core.Persister backed by a LevelDB
// database, accessed through the Database wrapper.
type LevelDBPersister struct {
	db *Database
}

// NewLevelDBPersister opens (or creates) a LevelDB database at path and
// returns a Persister backed by it. Callers own the returned value's
// Close.
func NewLevelDBPersister(path string) (*LevelDBPersister, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return &LevelDBPersister{db: db}, nil
}

// Close closes the underlying database.
func (p *LevelDBPersister) Close() error {
	return p.db.Close()
}

// Save implements core.Persister by JSON-encoding the snapshot and
// writing it as a single batch entry, so a save is atomic with respect
// to a concurrent reader opening the same database.
func (p *LevelDBPersister) Save(snap core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	batch := p.db.NewBatch()
	batch.Put([]byte(snapshotKey), data)
	return batch.Write()
}

// Load implements core.Persister. found is false if no snapshot has
// ever been saved to this database.
func (p *LevelDBPersister) Load() (core.Snapshot, bool, error) {
	data, err := p.db.Get([]byte(snapshotKey))
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	if data == nil {
		return core.Snapshot{}, false, nil
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}
