// Package keys provides the secp256k1 signing capability the core injects
// into Transaction.Sign/Verify. The core itself never imports a curve
// implementation directly; it only sees the types.Signer/types.Verifier
// interfaces.
package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKey wraps a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GeneratePrivateKey generates a new random private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// NewPrivateKeyFromBytes creates a private key from a 32-byte scalar.
func NewPrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(data))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(data)}, nil
}

// Bytes returns the 32-byte scalar.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// PublicKey derives the corresponding public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Sign signs a 32-byte digest and returns a DER-encoded signature.
func (pk *PrivateKey) Sign(digest []byte) (*Signature, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return &Signature{sig: ecdsa.Sign(pk.key, digest)}, nil
}

// String returns the hex encoding of the scalar. For debugging only —
// never log or expose this in production.
func (pk *PrivateKey) String() string {
	return hex.EncodeToString(pk.Bytes())
}
