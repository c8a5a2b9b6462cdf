package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature is a DER-encoded ECDSA signature.
type Signature struct {
	sig *ecdsa.Signature
}

// Serialize returns the DER encoding.
func (s *Signature) Serialize() []byte {
	return s.sig.Serialize()
}

func (s *Signature) String() string {
	return hex.EncodeToString(s.Serialize())
}

// ParseSignature parses a DER-encoded signature.
func ParseSignature(data []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(data)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	return &Signature{sig: sig}, nil
}
