package mempool

import (
	"fmt"
	"testing"

	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

func rich(types.Address) types.Amount { return 1_000_000 }

func TestSubmitRejectsDuplicateHash(t *testing.T) {
	m := New(10)
	tx := types.NewTransaction("alice", "bob", 10, 1000, 2)
	if err := m.Submit(tx, 1, rich); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := m.Submit(tx, 1, rich); err == nil {
		t.Fatalf("expected duplicate hash to be rejected")
	}
}

func TestSubmitRejectsInsufficientBalance(t *testing.T) {
	m := New(10)
	tx := types.NewTransaction("alice", "bob", 10, 1000, 2)
	poor := func(types.Address) types.Amount { return 0 }
	if err := m.Submit(tx, 1, poor); err == nil {
		t.Fatalf("expected insufficient balance to be rejected")
	}
}

func TestSubmitCoinbaseSkipsBalanceCheck(t *testing.T) {
	m := New(10)
	tx := types.NewTransaction(types.Coinbase, "miner", 100, 1000, 2)
	poor := func(types.Address) types.Amount { return 0 }
	if err := m.Submit(tx, 0, poor); err != nil {
		t.Fatalf("coinbase should not require a balance check: %v", err)
	}
}

func TestSubmitEvictsLowestFeeAtCapacity(t *testing.T) {
	m := New(2)
	low := types.NewTransaction("alice", "bob", 1, 1000, 2)
	high := types.NewTransaction("alice", "carol", 1, 1001, 2)
	if err := m.Submit(low, 1, rich); err != nil {
		t.Fatalf("submit low: %v", err)
	}
	if err := m.Submit(high, 5, rich); err != nil {
		t.Fatalf("submit high: %v", err)
	}

	newer := types.NewTransaction("alice", "dave", 1, 1002, 2)
	if err := m.Submit(newer, 10, rich); err != nil {
		t.Fatalf("expected strictly-greater fee to evict the lowest: %v", err)
	}
	if m.Contains(low.ContentHash()) {
		t.Fatalf("expected lowest-fee entry to have been evicted")
	}
	if !m.Contains(high.ContentHash()) || !m.Contains(newer.ContentHash()) {
		t.Fatalf("expected the two higher-fee entries to remain")
	}
}

func TestSubmitRejectsEqualFeeAtCapacity(t *testing.T) {
	m := New(1)
	first := types.NewTransaction("alice", "bob", 1, 1000, 2)
	second := types.NewTransaction("alice", "carol", 1, 1001, 2)
	if err := m.Submit(first, 5, rich); err != nil {
		t.Fatalf("submit first: %v", err)
	}
	if err := m.Submit(second, 5, rich); err == nil {
		t.Fatalf("expected equal fee to be rejected as full")
	}
}

func TestDrainForBlockOrdersByFeeThenTimestampThenHash(t *testing.T) {
	m := New(10)
	txLowFeeEarly := types.NewTransaction("alice", "bob", 1, 1000, 2)
	txHighFee := types.NewTransaction("alice", "carol", 1, 1001, 2)
	txLowFeeLate := types.NewTransaction("alice", "dave", 1, 1002, 2)

	m.Submit(txLowFeeEarly, 1, rich)
	m.Submit(txHighFee, 5, rich)
	m.Submit(txLowFeeLate, 1, rich)

	ordered := m.DrainForBlock(0)
	if len(ordered) != 3 {
		t.Fatalf("expected 3 drained transactions, got %d", len(ordered))
	}
	if ordered[0].ContentHash() != txHighFee.ContentHash() {
		t.Fatalf("expected highest-fee transaction first")
	}
	if ordered[1].ContentHash() != txLowFeeEarly.ContentHash() {
		t.Fatalf("expected earlier timestamp to break a fee tie")
	}
	if m.Size() != 0 {
		t.Fatalf("expected mempool to be empty after draining")
	}
}

func TestDrainForBlockRespectsLimit(t *testing.T) {
	m := New(10)
	for i := 0; i < 5; i++ {
		tx := types.NewTransaction("alice", types.Address(fmt.Sprintf("recipient-%d", i)), 1, int64(1000+i), 2)
		m.Submit(tx, 1, rich)
	}
	if got := m.DrainForBlock(2); len(got) != 2 {
		t.Fatalf("expected limit to cap drained count, got %d", len(got))
	}
	if m.Size() != 3 {
		t.Fatalf("expected 3 remaining after draining 2 of 5, got %d", m.Size())
	}
}

func TestSnapshotDoesNotRemove(t *testing.T) {
	m := New(10)
	m.Submit(types.NewTransaction("alice", "bob", 1, 1000, 2), 1, rich)
	if len(m.Snapshot()) != 1 {
		t.Fatalf("expected snapshot to show 1 entry")
	}
	if m.Size() != 1 {
		t.Fatalf("snapshot must not remove entries")
	}
}

func TestResubmitBypassesChecks(t *testing.T) {
	m := New(10)
	tx := types.NewTransaction("alice", "bob", 1, 1000, 2)
	m.Resubmit(tx, 1)
	if !m.Contains(tx.ContentHash()) {
		t.Fatalf("expected resubmitted transaction to be present")
	}
}
