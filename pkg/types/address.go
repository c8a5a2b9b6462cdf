package types

// Address is an opaque, non-empty, canonically printable account
// identifier. Equality is byte-equality on the underlying string.
type Address string

// Coinbase is the reserved sentinel sender for block-reward transactions.
// It is never a valid sender outside position 0 of a non-genesis block.
// Transaction.Validate does not reject it as a recipient.
const Coinbase Address = "COINBASE"

// Empty reports whether the address carries no identifying bytes.
func (a Address) Empty() bool {
	return len(a) == 0
}

func (a Address) String() string {
	return string(a)
}
