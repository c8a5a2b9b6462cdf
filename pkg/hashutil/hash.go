// Package hashutil provides the hashing primitives shared across the chain:
// a single SHA-256 digest and the Merkle root over an ordered list of them.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex returns the lowercase hex encoding of SHA-256(data).
//
// The reference source double-hashes (Bitcoin-style) to defend against
// length-extension attacks on the inner digest. This core never feeds a
// hash back into itself as signed input, so single hashing is sufficient
// and is what the spec requires.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MerkleRoot computes the Merkle root over an ordered list of 64-char hex
// hashes. An empty list hashes to Sha256Hex(nil). Odd levels duplicate the
// last element before pairing. Pairs are concatenated in byte form (not
// hex) before hashing, matching the canonical block-header contract.
func MerkleRoot(hashes []string) string {
	if len(hashes) == 0 {
		return Sha256Hex(nil)
	}

	level := make([][]byte, len(hashes))
	for i, h := range hashes {
		b, err := hex.DecodeString(h)
		if err != nil {
			// Malformed input hashes are a programmer error: every hash that
			// reaches here was produced by Sha256Hex.
			panic("hashutil: MerkleRoot given non-hex hash: " + h)
		}
		level[i] = b
	}

	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			var right []byte
			if i+1 < len(level) {
				right = level[i+1]
			} else {
				right = level[i]
			}
			combined := make([]byte, 0, len(left)+len(right))
			combined = append(combined, left...)
			combined = append(combined, right...)
			sum := sha256.Sum256(combined)
			next = append(next, sum[:])
		}
		level = next
	}

	return hex.EncodeToString(level[0])
}
