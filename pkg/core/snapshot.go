package core

import (
	"github.com/pouria-shahmiri/acctchain/pkg/chain"
	"github.com/pouria-shahmiri/acctchain/pkg/mempool"
)

// Snapshot is the opaque restorable representation named in §6: the full
// block sequence, the pending mempool, and the current difficulty
// window. The concrete encoding is chosen by whatever Persister is
// plugged in; Core only requires that Restore(Snapshot()) produce an
// instance indistinguishable from the original under every query.
type Snapshot struct {
	Chain   chain.Snapshot
	Mempool []mempool.PendingEntry
}

// Persister is the abstract persistence hook a concrete storage
// collaborator implements (see pkg/storage for a LevelDB-backed one).
// Core never depends on a storage format directly.
type Persister interface {
	Save(Snapshot) error
	Load() (Snapshot, bool, error)
}

// Snapshot captures the full restorable state of this Core instance.
func (c *Core) Snapshot() Snapshot {
	return Snapshot{
		Chain:   c.chain.Snapshot(),
		Mempool: c.pool.SnapshotEntries(),
	}
}

// Restore replaces this Core's chain and mempool contents wholesale
// from s. It must only be called before any concurrent command is in
// flight; Core provides no internal coordination against a concurrent
// Restore.
func (c *Core) Restore(s Snapshot) {
	c.chain.Restore(s.Chain)
	c.pool.RestoreEntries(s.Mempool)
}

// SaveTo persists the current snapshot via p.
func (c *Core) SaveTo(p Persister) error {
	return p.Save(c.Snapshot())
}

// LoadFrom restores state from p if a prior snapshot exists. ok is
// false if none was found, in which case Core is left at its fresh
// genesis state.
func (c *Core) LoadFrom(p Persister) (ok bool, err error) {
	snap, found, err := p.Load()
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	c.Restore(snap)
	return true, nil
}
