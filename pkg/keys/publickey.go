package keys

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"

	"github.com/pouria-shahmiri/acctchain/pkg/encoding"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

// AddressVersion is the version byte prefixed before base58check-encoding
// an account address derived from a public key.
const AddressVersion byte = 0x00

// PublicKey wraps a secp256k1 verification key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Bytes returns the compressed (33-byte) or uncompressed (65-byte) form.
func (pub *PublicKey) Bytes(compressed bool) []byte {
	if compressed {
		return pub.key.SerializeCompressed()
	}
	return pub.key.SerializeUncompressed()
}

// Hash160 returns RIPEMD160(SHA256(pubkey)), the basis of an address.
func (pub *PublicKey) Hash160() []byte {
	sha := sha256.Sum256(pub.Bytes(true))
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}

// Address renders a canonical, printable account address for this key.
// The core itself treats types.Address as an opaque string; this is the
// production way to mint one from a real keypair instead of an arbitrary
// literal like "alice".
func (pub *PublicKey) Address() types.Address {
	return types.Address(encoding.EncodeBase58Check(AddressVersion, pub.Hash160()))
}

// String returns the hex encoding of the compressed public key.
func (pub *PublicKey) String() string {
	return fmt.Sprintf("%x", pub.Bytes(true))
}

// Verify checks sig against a 32-byte digest.
func (pub *PublicKey) Verify(digest []byte, sig *Signature) bool {
	if len(digest) != 32 {
		return false
	}
	return sig.sig.Verify(digest, pub.key)
}
