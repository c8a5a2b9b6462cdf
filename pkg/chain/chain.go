// Package chain owns the append-only block sequence together with the
// State and DifficultyController it is committed alongside: the three
// form a single consistency domain guarded by one exclusive lock so a
// reader never observes a block whose state effects or difficulty
// update have not yet landed.
package chain

import (
	"fmt"
	"sync"

	"github.com/pouria-shahmiri/acctchain/pkg/corerr"
	"github.com/pouria-shahmiri/acctchain/pkg/difficulty"
	"github.com/pouria-shahmiri/acctchain/pkg/hashutil"
	"github.com/pouria-shahmiri/acctchain/pkg/state"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// Chain is the append-only, validated sequence of blocks. Its exported
// methods are the only entry point that may mutate State or
// DifficultyController; callers never reach into those directly during a
// write.
type Chain struct {
	// mu is the "chain-write" lock spanning Chain + State + Difficulty.
	// Writers take it exclusively for the full validate/apply/commit/
	// retarget sequence; readers take it for a consistent snapshot.
	mu sync.RWMutex

	blocks     []*types.Block
	state      *state.State
	difficulty *difficulty.Controller
}

// New creates a chain seeded with a fixed genesis block: index 0, the
// GenesisPreviousHash sentinel "0", no transactions, exempt from
// difficulty and state application.
func New(genesisTimestamp int64, st *state.State, dc *difficulty.Controller) *Chain {
	genesis := types.NewBlock(0, types.GenesisPreviousHash, genesisTimestamp, 0)
	genesis.RecomputeHash()

	return &Chain{
		blocks:     []*types.Block{genesis},
		state:      st,
		difficulty: dc,
	}
}

// Genesis returns the fixed genesis block.
func (c *Chain) Genesis() *types.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[0]
}

// Latest returns the current tail block.
func (c *Chain) Latest() *types.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// Height returns the index of the tail block.
func (c *Chain) Height() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1].Header.Index
}

// Difficulty returns the current difficulty. Exposed as a convenience
// for the Mining Engine, which must read it atomically with respect to
// Append per §5.
func (c *Chain) Difficulty() int {
	return c.difficulty.Current()
}

// Balance returns address's current balance, a read-only view into the
// state owned by this chain-write domain.
func (c *Chain) Balance(address types.Address) types.Amount {
	return c.state.Get(address).Balance
}

// StakeOf returns address's current stake.
func (c *Chain) StakeOf(address types.Address) types.Amount {
	return c.state.Get(address).Stake
}

// Status summarizes the chain-write domain for the Core API's
// get_status query.
type Status struct {
	Height        uint64
	Difficulty    int
	LastBlockHash string
	StakedTotal   types.Amount
}

// Status returns a consistent snapshot of height, difficulty, the tail
// block's hash, and the aggregate staked amount, all read under the
// same lock acquisition.
func (c *Chain) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tail := c.blocks[len(c.blocks)-1]
	return Status{
		Height:        tail.Header.Index,
		Difficulty:    c.difficulty.Current(),
		LastBlockHash: tail.Header.Hash,
		StakedTotal:   c.state.TotalStake(),
	}
}

// Stake moves amount from address's balance into its stake under the
// chain-write lock, so it cannot interleave with a concurrent Append.
func (c *Chain) Stake(address types.Address, amount types.Amount) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stake(address, amount)
}

// Unstake moves amount from address's stake back into its balance under
// the chain-write lock.
func (c *Chain) Unstake(address types.Address, amount types.Amount) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Unstake(address, amount)
}

// GetByIndex returns the block at index i, or a NotFound Validation
// error if i is out of range.
func (c *Chain) GetByIndex(i uint64) (*types.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i >= uint64(len(c.blocks)) {
		return nil, corerr.Validationf("chain.GetByIndex", "no block at index %d", i)
	}
	return c.blocks[i], nil
}

// Append validates block against the current tail and difficulty, then
// applies it to State, and only on both successes commits it to the
// sequence and records its interval with the difficulty controller. The
// whole sequence runs under the chain-write lock so no reader can
// observe the new block before its state effects have landed, nor a
// difficulty that has been retargeted for a block not yet visible.
func (c *Chain) Append(block *types.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.blocks[len(c.blocks)-1]
	difficultyNow := c.difficulty.Current()
	if err := blockValid(block, prev, difficultyNow); err != nil {
		return err
	}

	if err := c.state.ApplyBlock(block); err != nil {
		return fmt.Errorf("state rejected block %d: %w", block.Header.Index, err)
	}

	c.blocks = append(c.blocks, block)
	c.difficulty.RecordBlockTime(block.Header.Timestamp - prev.Header.Timestamp)
	return nil
}

// blockValid implements the §4.3 validation predicate: index and
// previous-hash linkage, header-hash and merkle-root recomputation, and
// (for non-genesis blocks) difficulty satisfaction plus a coinbase-first
// transaction layout.
func blockValid(block, prev *types.Block, difficultyNow int) error {
	if block.Header.Index != prev.Header.Index+1 {
		return corerr.Consistencyf("chain.Append", "bad index: expected %d, got %d", prev.Header.Index+1, block.Header.Index)
	}
	if block.Header.PreviousHash != prev.Header.Hash {
		return corerr.Consistencyf("chain.Append", "bad previous hash: expected %s, got %s", prev.Header.Hash, block.Header.PreviousHash)
	}

	hashes := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.ContentHash()
	}
	wantMerkleRoot := hashutil.MerkleRoot(hashes)
	if wantMerkleRoot != block.Header.MerkleRoot {
		return corerr.Consistencyf("chain.Append", "merkle root mismatch")
	}
	if types.HashBlockHeader(block.Header) != block.Header.Hash {
		return corerr.Consistencyf("chain.Append", "hash mismatch")
	}

	if block.Header.Index == 0 {
		if len(block.Transactions) != 0 {
			return corerr.Consistencyf("chain.Append", "genesis must have no transactions")
		}
		return nil
	}

	if !types.SatisfiesDifficulty(block.Header.Hash, difficultyNow) {
		return corerr.Consistencyf("chain.Append", "hash %s does not satisfy difficulty %d", block.Header.Hash, difficultyNow)
	}
	if len(block.Transactions) == 0 || !block.Transactions[0].IsCoinbase() {
		return corerr.Consistencyf("chain.Append", "first transaction must be a coinbase")
	}
	for i := 1; i < len(block.Transactions); i++ {
		if block.Transactions[i].IsCoinbase() {
			return corerr.Consistencyf("chain.Append", "coinbase transaction at non-zero position %d", i)
		}
	}
	return nil
}

// Snapshot is the opaque restorable representation of the chain-write
// consistency domain: the full block sequence, the account state, and
// the difficulty controller's internal window. The concrete encoding
// used to persist it is an external collaborator concern (see
// pkg/storage); Snapshot/Restore only need to round-trip through it.
type Snapshot struct {
	Blocks     []*types.Block
	Accounts   map[types.Address]state.Account
	Difficulty difficulty.Snapshot
}

// Snapshot captures the chain-write domain under its lock.
func (c *Chain) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]*types.Block, len(c.blocks))
	copy(blocks, c.blocks)
	return Snapshot{
		Blocks:     blocks,
		Accounts:   c.state.Snapshot(),
		Difficulty: c.difficulty.Snapshot(),
	}
}

// Restore replaces the chain-write domain's state wholesale from s.
// restore(snapshot()) must yield an instance indistinguishable under
// every query.
func (c *Chain) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	blocks := make([]*types.Block, len(s.Blocks))
	copy(blocks, s.Blocks)
	c.blocks = blocks
	c.state.Restore(s.Accounts)
	c.difficulty.Restore(s.Difficulty)
}
