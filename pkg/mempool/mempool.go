// Package mempool holds submitted, not-yet-mined transactions in fee
// priority order and enforces the core's admission and eviction policy.
package mempool

import (
	"sort"
	"sync"

	"github.com/pouria-shahmiri/acctchain/pkg/corerr"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// entry pairs a transaction with the fee it pays, computed once on
// submission so ordering never has to re-derive it.
type entry struct {
	tx  types.Transaction
	fee types.Amount
}

// Mempool manages the pool of pending transactions awaiting inclusion in
// a block. It is safe for concurrent use; its lock is independent of the
// chain-write lock, acquired and released only for the duration of a
// single mempool operation.
type Mempool struct {
	mu       sync.Mutex
	entries  map[string]*entry // content hash -> entry
	capacity int
}

// New creates an empty mempool bounded to capacity entries. capacity <= 0
// means unbounded.
func New(capacity int) *Mempool {
	return &Mempool{
		entries:  make(map[string]*entry),
		capacity: capacity,
	}
}

// BalanceSnapshot resolves an address's spendable balance as of a point
// in time, used by Submit to perform the insufficient-balance-snapshot
// check described alongside C5. It does not need to be linearized with
// concurrent chain-writes; the definitive check happens again when the
// transaction is actually applied to a block.
type BalanceSnapshot func(types.Address) types.Amount

// Submit admits tx paying fee into the pool, after the caller has
// already run tx.Validate. It is rejected with:
//   - DuplicateHash (Consistency) if the content hash is already present.
//   - InsufficientBalance (Consistency) if tx is non-coinbase and
//     balanceOf(sender) is less than tx.Amount, per the State snapshot
//     at submission time.
//   - Full (Consistency) if the pool is at capacity and fee does not
//     strictly exceed the pool's current lowest fee.
//
// At capacity, admitting tx evicts the current lowest-fee entry.
func (m *Mempool) Submit(tx types.Transaction, fee types.Amount, balanceOf BalanceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := tx.ContentHash()
	if _, exists := m.entries[hash]; exists {
		return corerr.Consistencyf("mempool.Submit", "duplicate hash %s", hash)
	}

	if !tx.IsCoinbase() && balanceOf != nil {
		if balanceOf(tx.Sender).Less(tx.Amount) {
			return corerr.Consistencyf("mempool.Submit", "insufficient balance for %s", tx.Sender)
		}
	}

	if m.capacity > 0 && len(m.entries) >= m.capacity {
		lowestHash, lowestFee, ok := m.lowestFeeLocked()
		if !ok || fee.Less(lowestFee) || fee == lowestFee {
			return corerr.Consistencyf("mempool.Submit", "mempool full")
		}
		delete(m.entries, lowestHash)
	}

	m.entries[hash] = &entry{tx: tx, fee: fee}
	return nil
}

// lowestFeeLocked returns the content hash and fee of the lowest-fee
// entry, breaking ties by the total order (earlier timestamp, then
// lexicographically smaller hash, wins — i.e. is NOT evicted, so among
// equal fees the latest timestamp, then the largest hash, is returned).
func (m *Mempool) lowestFeeLocked() (string, types.Amount, bool) {
	var (
		bestHash string
		bestFee  types.Amount
		bestTx   types.Transaction
		found    bool
	)
	for hash, e := range m.entries {
		if !found || e.fee.Less(bestFee) || (e.fee == bestFee && less(bestTx, bestHash, e.tx, hash)) {
			bestHash, bestFee, bestTx, found = hash, e.fee, e.tx, true
		}
	}
	return bestHash, bestFee, found
}

// Remove drops the entry identified by hash, if present.
func (m *Mempool) Remove(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, hash)
}

// RemoveMany drops the entries identified by hashes, if present. Used
// after a block is mined to clear transactions that made it in.
func (m *Mempool) RemoveMany(hashes []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hashes {
		delete(m.entries, h)
	}
}

// Resubmit reinserts tx unconditionally, bypassing duplicate/balance/
// capacity checks. It is used by the Mining Engine to return drained
// transactions that are still valid after a failed block append,
// preserving their original priority ordering.
func (m *Mempool) Resubmit(tx types.Transaction, fee types.Amount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tx.ContentHash()] = &entry{tx: tx, fee: fee}
}

// Contains reports whether a transaction with the given content hash is
// currently pending.
func (m *Mempool) Contains(hash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[hash]
	return ok
}

// Size returns the number of pending transactions.
func (m *Mempool) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// DrainForBlock returns up to limit pending transactions in fee-priority
// order (fee descending, timestamp ascending, content hash ascending)
// and removes them from the pool. limit <= 0 means unbounded. Draining
// is atomic: a transaction returned here is guaranteed gone from the
// pool, so a caller that fails to include it in a block must explicitly
// resubmit it rather than assume it is still pending.
func (m *Mempool) DrainForBlock(limit int) []types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := m.orderedLocked()
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]types.Transaction, len(ordered))
	for i, e := range ordered {
		out[i] = e.tx
		delete(m.entries, e.tx.ContentHash())
	}
	return out
}

// Snapshot returns the pending transactions in fee-priority order
// without removing them.
func (m *Mempool) Snapshot() []types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := m.orderedLocked()
	out := make([]types.Transaction, len(ordered))
	for i, e := range ordered {
		out[i] = e.tx
	}
	return out
}

// PendingEntry pairs a pending transaction with the fee it was admitted
// with, for persistence.
type PendingEntry struct {
	Tx  types.Transaction
	Fee types.Amount
}

// SnapshotEntries returns every pending transaction with its fee, in
// fee-priority order, without removing them. Used to persist the pool.
func (m *Mempool) SnapshotEntries() []PendingEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := m.orderedLocked()
	out := make([]PendingEntry, len(ordered))
	for i, e := range ordered {
		out[i] = PendingEntry{Tx: e.tx, Fee: e.fee}
	}
	return out
}

// RestoreEntries replaces the pool's contents wholesale from entries,
// bypassing admission checks. Used when reconstructing from a persisted
// snapshot.
func (m *Mempool) RestoreEntries(entries []PendingEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*entry, len(entries))
	for _, pe := range entries {
		m.entries[pe.Tx.ContentHash()] = &entry{tx: pe.Tx, fee: pe.Fee}
	}
}

func (m *Mempool) orderedLocked() []*entry {
	ordered := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return entryLess(ordered[i], ordered[j])
	})
	return ordered
}

// entryLess implements the pool's total order: higher fee first, then
// earlier timestamp, then lexicographically smaller content hash.
func entryLess(a, b *entry) bool {
	if a.fee != b.fee {
		return b.fee.Less(a.fee)
	}
	return less(a.tx, a.tx.ContentHash(), b.tx, b.tx.ContentHash())
}

// less breaks a fee tie: earlier timestamp first, then lexicographically
// smaller content hash.
func less(a types.Transaction, aHash string, b types.Transaction, bHash string) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return aHash < bHash
}
