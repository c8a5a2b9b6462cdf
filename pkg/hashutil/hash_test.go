package hashutil

import "testing"

func TestSha256HexLength(t *testing.T) {
	h := Sha256Hex([]byte("hello"))
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d: %s", len(h), h)
	}
}

func TestSha256HexDeterministic(t *testing.T) {
	a := Sha256Hex([]byte("same input"))
	b := Sha256Hex([]byte("same input"))
	if a != b {
		t.Fatalf("expected deterministic hash, got %s != %s", a, b)
	}
}

func TestMerkleRootEmpty(t *testing.T) {
	got := MerkleRoot(nil)
	want := Sha256Hex(nil)
	if got != want {
		t.Fatalf("empty merkle root = %s, want %s", got, want)
	}
}

func TestMerkleRootSingle(t *testing.T) {
	h := Sha256Hex([]byte("tx1"))
	if got := MerkleRoot([]string{h}); got != h {
		t.Fatalf("single-leaf merkle root = %s, want leaf itself %s", got, h)
	}
}

func TestMerkleRootOddDuplicatesLast(t *testing.T) {
	h1 := Sha256Hex([]byte("tx1"))
	h2 := Sha256Hex([]byte("tx2"))
	h3 := Sha256Hex([]byte("tx3"))

	threeLeaf := MerkleRoot([]string{h1, h2, h3})
	fourLeaf := MerkleRoot([]string{h1, h2, h3, h3})
	if threeLeaf != fourLeaf {
		t.Fatalf("odd-length merkle root should duplicate the last leaf: %s != %s", threeLeaf, fourLeaf)
	}
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	h1 := Sha256Hex([]byte("tx1"))
	h2 := Sha256Hex([]byte("tx2"))
	if MerkleRoot([]string{h1, h2}) == MerkleRoot([]string{h2, h1}) {
		t.Fatalf("merkle root should depend on leaf order")
	}
}
