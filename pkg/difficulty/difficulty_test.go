package difficulty

import "testing"

func TestCurrentStartsAtInitial(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	if c.Current() != 2 {
		t.Fatalf("expected initial difficulty 2, got %d", c.Current())
	}
}

func TestNoAdjustmentBeforeTwoSamples(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	c.RecordBlockTime(1)
	if c.Current() != 2 {
		t.Fatalf("expected no adjustment from a single sample, got %d", c.Current())
	}
}

func TestStepsUpWhenFastConsistently(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	for i := 0; i < 5; i++ {
		c.RecordBlockTime(200) // far below 0.8 * target
	}
	if c.Current() != 3 {
		t.Fatalf("expected difficulty to step up once to 3, got %d", c.Current())
	}
}

func TestStepsDownWhenSlowConsistently(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	for i := 0; i < 5; i++ {
		c.RecordBlockTime(5000) // far above 1.2 * target
	}
	if c.Current() != 1 {
		t.Fatalf("expected difficulty to step down once to 1, got %d", c.Current())
	}
}

func TestClampsAtMax(t *testing.T) {
	c := New(5, 1, 6, 1000, 2)
	for i := 0; i < 10; i++ {
		c.RecordBlockTime(1)
	}
	if c.Current() != 6 {
		t.Fatalf("expected difficulty to clamp at max 6, got %d", c.Current())
	}
}

func TestClampsAtMin(t *testing.T) {
	c := New(2, 1, 6, 1000, 2)
	for i := 0; i < 10; i++ {
		c.RecordBlockTime(100000)
	}
	if c.Current() != 1 {
		t.Fatalf("expected difficulty to clamp at min 1, got %d", c.Current())
	}
}

func TestNoAdjustmentWithinHysteresisBand(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	c.RecordBlockTime(1000)
	c.RecordBlockTime(1000)
	if c.Current() != 2 {
		t.Fatalf("expected no adjustment at exactly the target interval, got %d", c.Current())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := New(2, 1, 6, 1000, 4)
	c.RecordBlockTime(200)
	c.RecordBlockTime(200)
	snap := c.Snapshot()

	c2 := New(2, 1, 6, 1000, 4)
	c2.Restore(snap)
	if c2.Current() != c.Current() {
		t.Fatalf("restored difficulty %d does not match original %d", c2.Current(), c.Current())
	}
}
