// Package core exposes the single facade external callers use: a
// thread-safe command/query surface over the chain, mempool, and
// mining engine, implementing the linearizability contract of §4.9.
package core

import (
	"context"

	"github.com/pouria-shahmiri/acctchain/pkg/chain"
	"github.com/pouria-shahmiri/acctchain/pkg/config"
	"github.com/pouria-shahmiri/acctchain/pkg/corerr"
	"github.com/pouria-shahmiri/acctchain/pkg/difficulty"
	"github.com/pouria-shahmiri/acctchain/pkg/mempool"
	"github.com/pouria-shahmiri/acctchain/pkg/mining"
	"github.com/pouria-shahmiri/acctchain/pkg/monitoring"
	"github.com/pouria-shahmiri/acctchain/pkg/state"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// Core wires together the Chain (owning State and the Difficulty
// Controller), the Mempool, and the Mining Engine behind one API. Every
// exported method here is safe to call from multiple goroutines; the
// linearizability guarantee of each individual command/query comes from
// the locks owned by Chain and Mempool themselves — Core adds no lock
// of its own and must not, since that would let a command observe a
// torn state across the two.
type Core struct {
	cfg      *config.CoreConfig
	chain    *chain.Chain
	pool     *mempool.Mempool
	engine   *mining.Engine
	verifier types.Verifier
	log      *monitoring.Logger
	now      func() int64
}

// New builds a Core from cfg, backed by verifier for signature checks
// and now for timestamping (injected so tests can supply a deterministic
// clock).
func New(cfg *config.CoreConfig, verifier types.Verifier, now func() int64, log *monitoring.Logger) *Core {
	st := state.New(verifier)
	dc := difficulty.New(cfg.InitialDifficulty, cfg.MinDifficulty, cfg.MaxDifficulty, cfg.TargetBlockTimeMs, cfg.DifficultyWindow)
	ch := chain.New(now(), st, dc)
	pool := mempool.New(cfg.MempoolCapacity)

	feePerTx, err := types.ParseAmount(cfg.FeePerTx, cfg.NumericPrecision)
	if err != nil {
		feePerTx = 0
	}

	blockReward := types.Amount(cfg.BlockRewardBase)
	for i := 0; i < cfg.NumericPrecision; i++ {
		blockReward *= 10
	}

	engine := mining.New(ch, pool, mining.Config{
		MaxTransactionsPerBlock: cfg.MaxTransactionsPerBlock,
		FeePerTx:                feePerTx,
		BlockRewardBase:         blockReward,
		HalvingInterval:         cfg.HalvingInterval,
		MaxNonce:                cfg.MaxNonce,
		Precision:               cfg.NumericPrecision,
		Now:                     now,
	})

	return &Core{
		cfg:      cfg,
		chain:    ch,
		pool:     pool,
		engine:   engine,
		verifier: verifier,
		log:      log,
		now:      now,
	}
}

// SubmitTransaction validates tx per §4.2 and, if it passes, delegates
// admission to the mempool.
func (c *Core) SubmitTransaction(tx types.Transaction) (string, error) {
	if err := tx.Validate(c.verifier, -1); err != nil {
		return "", corerr.New(corerr.Validation, "core.SubmitTransaction", err)
	}

	fee, _ := types.ParseAmount(c.cfg.FeePerTx, c.cfg.NumericPrecision)
	if err := c.pool.Submit(tx, fee, c.chain.Balance); err != nil {
		return "", err
	}
	if c.log != nil {
		c.log.WithField("content_hash", tx.ContentHash()).Info("transaction admitted")
	}
	return tx.ContentHash(), nil
}

// MineOnce performs a single synchronous mining round, independent of
// whether a background mining loop is active.
func (c *Core) MineOnce(ctx context.Context, coinbaseRecipient types.Address) (*types.Block, error) {
	return c.engine.MineOnce(ctx, coinbaseRecipient)
}

// StartMining begins a background mining loop paying coinbaseRecipient.
func (c *Core) StartMining(coinbaseRecipient types.Address) error {
	return c.engine.Start(coinbaseRecipient)
}

// StopMining halts the background mining loop, if running.
func (c *Core) StopMining() error {
	return c.engine.Stop()
}

// Stake moves amount from address's balance into its stake.
func (c *Core) Stake(address types.Address, amount types.Amount) error {
	return c.chain.Stake(address, amount)
}

// Unstake moves amount from address's stake back into its balance.
func (c *Core) Unstake(address types.Address, amount types.Amount) error {
	return c.chain.Unstake(address, amount)
}

// GetBalance returns address's current balance and stake.
func (c *Core) GetBalance(address types.Address) (types.Amount, types.Amount) {
	return c.chain.Balance(address), c.chain.StakeOf(address)
}

// GetChainHeight returns the current chain height.
func (c *Core) GetChainHeight() uint64 {
	return c.chain.Height()
}

// GetLatestBlock returns the current tail block.
func (c *Core) GetLatestBlock() *types.Block {
	return c.chain.Latest()
}

// GetBlockByIndex returns the block at index i, or NotFound.
func (c *Core) GetBlockByIndex(i uint64) (*types.Block, error) {
	return c.chain.GetByIndex(i)
}

// Status is the get_status query's result.
type Status struct {
	Height        uint64
	MempoolSize   int
	Difficulty    int
	LastBlockHash string
	StakedTotal   types.Amount
}

// GetStatus returns a consistent snapshot of height, mempool size,
// difficulty, the tail block's hash, and the aggregate staked amount.
// Height/difficulty/hash/StakedTotal are read together under the
// chain's own lock; mempool size is read separately, which is
// acceptable because it is advisory-only (the spec does not require
// mempool size to be linearized with chain state).
func (c *Core) GetStatus() Status {
	s := c.chain.Status()
	return Status{
		Height:        s.Height,
		MempoolSize:   c.pool.Size(),
		Difficulty:    s.Difficulty,
		LastBlockHash: s.LastBlockHash,
		StakedTotal:   s.StakedTotal,
	}
}
