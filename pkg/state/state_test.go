package state

import (
	"testing"

	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

type alwaysVerifier struct{}

func (alwaysVerifier) Verify(contentHash string, sender types.Address, signature []byte) bool {
	return true
}

func coinbaseBlock(recipient types.Address, amount types.Amount) *types.Block {
	b := types.NewBlock(1, "prev", 1000, 0)
	b.AddTransaction(types.NewTransaction(types.Coinbase, recipient, amount, 1000, 2))
	b.RecomputeHash()
	return b
}

func TestApplyBlockCreditsRecipient(t *testing.T) {
	s := New(alwaysVerifier{})
	if err := s.ApplyBlock(coinbaseBlock("miner_A", 100)); err != nil {
		t.Fatalf("apply coinbase block: %v", err)
	}
	if got := s.Get("miner_A").Balance; got != 100 {
		t.Fatalf("expected balance 100, got %d", got)
	}
}

func TestApplyBlockDebitsNonCoinbaseSender(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 100))

	b := types.NewBlock(2, "prev2", 1001, 0)
	b.AddTransaction(types.NewTransaction(types.Coinbase, "miner_A", 10, 1001, 2))
	b.AddTransaction(types.NewTransaction("alice", "bob", 40, 1001, 2))
	b.RecomputeHash()

	if err := s.ApplyBlock(b); err != nil {
		t.Fatalf("apply transfer block: %v", err)
	}
	if got := s.Get("alice").Balance; got != 60 {
		t.Fatalf("expected alice balance 60, got %d", got)
	}
	if got := s.Get("bob").Balance; got != 40 {
		t.Fatalf("expected bob balance 40, got %d", got)
	}
}

func TestApplyBlockRejectsInsufficientBalanceAtomically(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 10))

	b := types.NewBlock(2, "prev2", 1001, 0)
	b.AddTransaction(types.NewTransaction(types.Coinbase, "miner_A", 10, 1001, 2))
	b.AddTransaction(types.NewTransaction("alice", "bob", 9999, 1001, 2))
	b.RecomputeHash()

	if err := s.ApplyBlock(b); err == nil {
		t.Fatalf("expected rejection for insufficient balance")
	}
	if got := s.Get("bob").Balance; got != 0 {
		t.Fatalf("rejected block must not have partially credited bob, got %d", got)
	}
	if got := s.Get("miner_A").Balance; got != 0 {
		t.Fatalf("rejected block must not have credited the coinbase recipient either, got %d", got)
	}
}

func TestApplyBlockRejectsDoubleSpendWithinSameBlock(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 100))

	b := types.NewBlock(2, "prev2", 1001, 0)
	b.AddTransaction(types.NewTransaction(types.Coinbase, "miner_A", 10, 1001, 2))
	b.AddTransaction(types.NewTransaction("alice", "bob", 70, 1001, 2))
	b.AddTransaction(types.NewTransaction("alice", "carol", 70, 1002, 2))
	b.RecomputeHash()

	if err := s.ApplyBlock(b); err == nil {
		t.Fatalf("expected second spend from the same block to be rejected")
	}
}

func TestStakeAndUnstake(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 100))

	if err := s.Stake("alice", 30); err != nil {
		t.Fatalf("stake: %v", err)
	}
	acc := s.Get("alice")
	if acc.Balance != 70 || acc.Stake != 30 {
		t.Fatalf("expected balance=70 stake=30, got balance=%d stake=%d", acc.Balance, acc.Stake)
	}

	if err := s.Unstake("alice", 10); err != nil {
		t.Fatalf("unstake: %v", err)
	}
	acc = s.Get("alice")
	if acc.Balance != 80 || acc.Stake != 20 {
		t.Fatalf("expected balance=80 stake=20, got balance=%d stake=%d", acc.Balance, acc.Stake)
	}
}

func TestStakeRejectsInsufficientBalance(t *testing.T) {
	s := New(alwaysVerifier{})
	if err := s.Stake("alice", 10); err == nil {
		t.Fatalf("expected stake to fail with zero balance")
	}
}

func TestUnstakeRejectsInsufficientStake(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 100))
	if err := s.Unstake("alice", 10); err == nil {
		t.Fatalf("expected unstake to fail with zero stake")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New(alwaysVerifier{})
	s.ApplyBlock(coinbaseBlock("alice", 100))
	s.Stake("alice", 20)

	snap := s.Snapshot()

	s2 := New(alwaysVerifier{})
	s2.Restore(snap)

	if s2.Get("alice") != s.Get("alice") {
		t.Fatalf("restored state should match original")
	}
}
