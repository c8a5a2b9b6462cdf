// Package mining runs the proof-of-work mining loop: compose a candidate
// block from the mempool and a coinbase reward, search for a satisfying
// nonce, and append it to the chain.
package mining

import (
	"context"
	"sync"
	"time"

	"github.com/pouria-shahmiri/acctchain/pkg/chain"
	"github.com/pouria-shahmiri/acctchain/pkg/corerr"
	"github.com/pouria-shahmiri/acctchain/pkg/mempool"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// BlockReward computes block_reward(height): base halved every
// halvingInterval blocks, integer-truncated. Past 64 halvings the
// reward is zero regardless of base, matching the point at which a
// right-shift of a 64-bit value is already zero for any realistic base.
func BlockReward(height uint64, base types.Amount, halvingInterval uint64) types.Amount {
	if halvingInterval == 0 {
		return base
	}
	halvings := height / halvingInterval
	if halvings >= 64 {
		return 0
	}
	return types.Amount(int64(base) >> halvings)
}

// State machine states for Engine.
const (
	Idle = iota
	MiningState
)

// Engine owns the mining loop. One Engine mines for one coinbase
// recipient at a time; Start/Stop toggle a background goroutine, and
// MineOnce runs a single round synchronously regardless of that
// goroutine's state.
type Engine struct {
	chain   *chain.Chain
	pool    *mempool.Mempool
	cfg     Config

	mu      sync.Mutex
	state   int
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Config bundles the mining-policy knobs of §4.8.
type Config struct {
	MaxTransactionsPerBlock int
	FeePerTx                types.Amount
	BlockRewardBase         types.Amount
	HalvingInterval         uint64
	MaxNonce                uint64
	Precision               int
	Now                     func() int64
}

// New creates an Engine bound to chain c and mempool p.
func New(c *chain.Chain, p *mempool.Mempool, cfg Config) *Engine {
	return &Engine{chain: c, pool: p, cfg: cfg, state: Idle}
}

// MineOnce performs exactly one round for coinbaseRecipient and returns
// the appended block, or an error: NonceExhausted (Transient) if the
// nonce ceiling was reached, or a wrapped StateRejected (Consistency)
// if Chain.Append rejected the candidate.
func (e *Engine) MineOnce(ctx context.Context, coinbaseRecipient types.Address) (*types.Block, error) {
	prev := e.chain.Latest()
	difficultyNow := e.chain.Difficulty()

	limit := e.cfg.MaxTransactionsPerBlock - 1
	if limit < 0 {
		limit = 0
	}
	drained := e.pool.DrainForBlock(limit)

	// A drained set can contain two transfers from the same sender that
	// are each individually affordable against the live balance but
	// together overspend it (§8 Scenario S3). Filter against a running
	// scratch balance before assembly so the candidate block only ever
	// carries the subset State.ApplyBlock will actually accept; the
	// loser of a same-sender conflict is dropped here and never
	// reinserted into the mempool.
	included, _ := e.filterAffordable(drained)

	totalFees := e.cfg.FeePerTx * types.Amount(len(included))
	now := e.cfg.Now()
	reward := BlockReward(prev.Header.Index+1, e.cfg.BlockRewardBase, e.cfg.HalvingInterval)
	coinbase := types.NewTransaction(types.Coinbase, coinbaseRecipient, reward+totalFees, now, e.cfg.Precision)

	candidate := types.NewBlock(prev.Header.Index+1, prev.Header.Hash, now, e.cfg.MaxTransactionsPerBlock)
	candidate.AddTransaction(coinbase)
	for _, tx := range included {
		candidate.AddTransaction(tx)
	}

	if err := candidate.Mine(ctx, difficultyNow, e.cfg.MaxNonce); err != nil {
		e.returnDrained(included)
		return nil, corerr.New(corerr.Transient, "mining.MineOnce", err)
	}

	if err := e.chain.Append(candidate); err != nil {
		if corerr.Is(err, corerr.Consistency) {
			e.returnStillValid(included)
		} else {
			e.returnDrained(included)
		}
		return nil, err
	}

	return candidate, nil
}

// returnDrained resubmits every drained transaction unconditionally,
// preserving the original priority order (they are reinserted from
// lowest index to highest, so re-sorting by the pool's total order
// recovers the same relative order for equal fees/timestamps).
func (e *Engine) returnDrained(drained []types.Transaction) {
	for _, tx := range drained {
		e.pool.Resubmit(tx, e.cfg.FeePerTx)
	}
}

// returnStillValid resubmits only the drained transactions that remain
// individually valid — i.e. whose sender can still afford them under
// the state as it stands after the failed append. Transactions from a
// sender now lacking funds are dropped, matching the requirement that a
// rejected block not resurrect already-invalid transfers.
func (e *Engine) returnStillValid(drained []types.Transaction) {
	included, _ := e.filterAffordable(drained)
	for _, tx := range included {
		e.pool.Resubmit(tx, e.cfg.FeePerTx)
	}
}

// filterAffordable partitions txs, in priority order, into the subset
// whose senders can afford them against a running scratch balance
// seeded from live chain state, and the subset that cannot. Spent
// balance is tracked across the loop so two transactions from the same
// sender are never both admitted against a balance that can only cover
// one of them — the earlier one (by the mempool's priority order) wins.
func (e *Engine) filterAffordable(txs []types.Transaction) (included, dropped []types.Transaction) {
	spent := make(map[types.Address]types.Amount)
	for _, tx := range txs {
		if tx.IsCoinbase() {
			included = append(included, tx)
			continue
		}
		available := e.chain.Balance(tx.Sender).Sub(spent[tx.Sender])
		if available.Less(tx.Amount) {
			dropped = append(dropped, tx)
			continue
		}
		spent[tx.Sender] = spent[tx.Sender].Add(tx.Amount)
		included = append(included, tx)
	}
	return included, dropped
}

// Start begins a background mining loop for coinbaseRecipient. It is a
// no-op returning AlreadyRunning if the engine is already mining.
func (e *Engine) Start(coinbaseRecipient types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == MiningState {
		return corerr.Validationf("mining.Start", "already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.stopped = make(chan struct{})
	e.state = MiningState

	go e.loop(ctx, coinbaseRecipient)
	return nil
}

// Stop requests the background loop to exit and waits for it to do so.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != MiningState {
		e.mu.Unlock()
		return corerr.Validationf("mining.Stop", "not running")
	}
	cancel := e.cancel
	stopped := e.stopped
	e.mu.Unlock()

	cancel()
	<-stopped

	e.mu.Lock()
	e.state = Idle
	e.mu.Unlock()
	return nil
}

// Running reports whether a background mining loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == MiningState
}

func (e *Engine) loop(ctx context.Context, coinbaseRecipient types.Address) {
	defer close(e.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, err := e.MineOnce(ctx, coinbaseRecipient)
		if err != nil && corerr.Is(err, corerr.Transient) {
			// Nonce ceiling reached; retry next round with a fresh
			// timestamp rather than looping tightly on the same one.
			time.Sleep(time.Millisecond)
		}
	}
}
