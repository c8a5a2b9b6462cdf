// Package state holds the account model: a mapping from address to
// balance and stake, derived entirely from the chain by folding
// ApplyBlock over every block in order.
package state

import (
	"sync"

	"github.com/pouria-shahmiri/acctchain/pkg/corerr"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// Account is a snapshot of one address's balance and stake. Both fields
// are always non-negative.
type Account struct {
	Balance types.Amount
	Stake   types.Amount
}

// State is the applier module that owns the account map. It is safe for
// concurrent use, but callers that need apply-then-read atomicity (the
// chain-write consistency domain) must hold their own outer lock; State's
// own lock only protects the map itself from torn reads.
type State struct {
	mu       sync.RWMutex
	accounts map[types.Address]*Account
	verifier types.Verifier
}

// New creates an empty state backed by verifier for non-coinbase
// transaction signature checks.
func New(verifier types.Verifier) *State {
	return &State{
		accounts: make(map[types.Address]*Account),
		verifier: verifier,
	}
}

// Get returns a copy of address's account, defaulting to the zero
// account if it has never been credited.
func (s *State) Get(address types.Address) Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(address)
}

func (s *State) getLocked(address types.Address) Account {
	if acc, ok := s.accounts[address]; ok {
		return *acc
	}
	return Account{}
}

// ApplyBlock validates every transaction against current balances and,
// only if all of them are individually admissible, commits every
// transfer atomically. No partial effect becomes visible to a
// concurrent reader: validation runs entirely against a scratch copy of
// the touched accounts before any account in the live map is mutated.
func (s *State) ApplyBlock(block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scratch := make(map[types.Address]*Account)
	touch := func(addr types.Address) *Account {
		if acc, ok := scratch[addr]; ok {
			return acc
		}
		live := s.getLocked(addr)
		acc := &live
		scratch[addr] = acc
		return acc
	}

	// A single pass both validates and tentatively applies each transfer
	// against scratch, so a later transaction in the same block sees the
	// balance as reduced by an earlier one from the same sender — two
	// transactions that individually look affordable against the live
	// balance but together overspend it are caught here.
	for i, tx := range block.Transactions {
		if err := tx.Validate(s.verifier, i); err != nil {
			return corerr.New(corerr.Consistency, "state.ApplyBlock", err)
		}
		if !tx.IsCoinbase() {
			sender := touch(tx.Sender)
			if sender.Balance.Less(tx.Amount) {
				return corerr.Consistencyf("state.ApplyBlock", "insufficient balance: %s has %s, needs %s",
					tx.Sender, sender.Balance, tx.Amount)
			}
			sender.Balance = sender.Balance.Sub(tx.Amount)
		}
		touch(tx.Recipient).Balance = touch(tx.Recipient).Balance.Add(tx.Amount)
	}

	for addr, acc := range scratch {
		s.accounts[addr] = acc
	}
	return nil
}

// Stake moves amount from address's balance into its stake. Both
// resulting fields must remain non-negative.
func (s *State) Stake(address types.Address, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getLocked(address)
	if amount.Negative() || acc.Balance.Less(amount) {
		return corerr.Consistencyf("state.Stake", "insufficient balance: %s has %s, needs %s", address, acc.Balance, amount)
	}
	acc.Balance = acc.Balance.Sub(amount)
	acc.Stake = acc.Stake.Add(amount)
	s.accounts[address] = &acc
	return nil
}

// Unstake moves amount from address's stake back into its balance.
func (s *State) Unstake(address types.Address, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getLocked(address)
	if amount.Negative() || acc.Stake.Less(amount) {
		return corerr.Consistencyf("state.Unstake", "insufficient stake: %s has %s, needs %s", address, acc.Stake, amount)
	}
	acc.Stake = acc.Stake.Sub(amount)
	acc.Balance = acc.Balance.Add(amount)
	s.accounts[address] = &acc
	return nil
}

// TotalStake returns the sum of every address's stake, for the Core
// API's get_status aggregate.
func (s *State) TotalStake() types.Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total types.Amount
	for _, acc := range s.accounts {
		total = total.Add(acc.Stake)
	}
	return total
}

// Snapshot returns a deep copy of every account ever credited or
// debited, including ones whose balance and stake are now zero, for
// persistence and for equality checks in tests.
func (s *State) Snapshot() map[types.Address]Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[types.Address]Account, len(s.accounts))
	for addr, acc := range s.accounts {
		out[addr] = *acc
	}
	return out
}

// Restore replaces the account map wholesale. Used when reconstructing
// state from a persisted snapshot.
func (s *State) Restore(accounts map[types.Address]Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[types.Address]*Account, len(accounts))
	for addr, acc := range accounts {
		a := acc
		s.accounts[addr] = &a
	}
}
