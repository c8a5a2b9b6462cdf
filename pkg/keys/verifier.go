package keys

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// KeySigner implements types.Signer over a single secp256k1 private key.
type KeySigner struct {
	Key *PrivateKey
}

// Sign decodes the hex content hash back to its 32 raw bytes and signs
// that digest directly — the content hash already IS a SHA-256 digest, so
// there is no need to hash it again before signing.
func (s KeySigner) Sign(contentHash string) ([]byte, error) {
	digest, err := hex.DecodeString(contentHash)
	if err != nil {
		return nil, fmt.Errorf("decode content hash: %w", err)
	}
	sig, err := s.Key.Sign(digest)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// Registry implements types.Verifier by looking up the sender's public
// key and checking a real ECDSA signature. This is the production
// verifier: every sender that wants its transactions admitted must
// register its public key first.
type Registry struct {
	mu   sync.RWMutex
	keys map[types.Address]*PublicKey
}

// NewRegistry creates an empty key registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[types.Address]*PublicKey)}
}

// Register associates addr with pub. Subsequent transactions from addr
// verify against this key.
func (r *Registry) Register(addr types.Address, pub *PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[addr] = pub
}

// Verify implements types.Verifier.
func (r *Registry) Verify(contentHash string, sender types.Address, signature []byte) bool {
	r.mu.RLock()
	pub, ok := r.keys[sender]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	digest, err := hex.DecodeString(contentHash)
	if err != nil {
		return false
	}
	sig, err := ParseSignature(signature)
	if err != nil {
		return false
	}
	return pub.Verify(digest, sig)
}

// PermissiveVerifier accepts any non-empty signature. It exists for test
// mode only — production deployments must use Registry (or an equivalent
// real verifier).
type PermissiveVerifier struct{}

// Verify implements types.Verifier.
func (PermissiveVerifier) Verify(_ string, _ types.Address, signature []byte) bool {
	return len(signature) > 0
}

// PermissiveSigner produces a fixed, non-empty, non-cryptographic
// signature. Paired with PermissiveVerifier for test-mode transactions
// that exercise the mempool/chain without real keypairs.
type PermissiveSigner struct{}

// Sign implements types.Signer.
func (PermissiveSigner) Sign(_ string) ([]byte, error) {
	return []byte{0x01}, nil
}
