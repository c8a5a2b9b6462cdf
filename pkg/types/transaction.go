package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pouria-shahmiri/acctchain/pkg/hashutil"
)

// Signer produces a signature over a transaction's content hash. Production
// deployments back this with a real private key; tests may supply a
// trivial signer.
type Signer interface {
	Sign(contentHash string) ([]byte, error)
}

// Verifier checks a transaction's signature against its content hash.
// Injected so the core never embeds a specific signature scheme — test
// mode can supply a permissive "non-empty signature" verifier, production
// supplies a real one (see pkg/keys).
type Verifier interface {
	Verify(contentHash string, sender Address, signature []byte) bool
}

// Transaction is an immutable value transfer. Two transactions with the
// same sender, recipient, amount, and timestamp are, by construction,
// identical (their content hash is a pure function of those four fields).
type Transaction struct {
	Sender      Address
	Recipient   Address
	Amount      Amount
	Timestamp   int64
	Signature   []byte
	contentHash string
}

// NewTransaction builds a Transaction and computes its content hash under
// the given fractional precision. The content hash is fixed for the life
// of the value; it does not change if the caller later mutates Signature.
func NewTransaction(sender, recipient Address, amount Amount, timestamp int64, precision int) Transaction {
	tx := Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: timestamp,
	}
	tx.contentHash = hashutil.Sha256Hex([]byte(CanonicalTransactionJSON(sender, recipient, amount, timestamp, precision)))
	return tx
}

// ContentHash returns the transaction's stable identifier.
func (t Transaction) ContentHash() string {
	return t.contentHash
}

// transactionWire is the JSON wire form of a Transaction, carrying the
// content hash explicitly so a round trip through persistence does not
// need to re-derive it (which would require the precision the
// transaction was originally hashed under).
type transactionWire struct {
	Sender      Address `json:"sender"`
	Recipient   Address `json:"recipient"`
	Amount      Amount  `json:"amount"`
	Timestamp   int64   `json:"timestamp"`
	Signature   []byte  `json:"signature"`
	ContentHash string  `json:"content_hash"`
}

// MarshalJSON implements json.Marshaler.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionWire{
		Sender:      t.Sender,
		Recipient:   t.Recipient,
		Amount:      t.Amount,
		Timestamp:   t.Timestamp,
		Signature:   t.Signature,
		ContentHash: t.contentHash,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Sender = w.Sender
	t.Recipient = w.Recipient
	t.Amount = w.Amount
	t.Timestamp = w.Timestamp
	t.Signature = w.Signature
	t.contentHash = w.ContentHash
	return nil
}

// Sign asks signer for a signature over the content hash and stores it.
func (t *Transaction) Sign(signer Signer) error {
	sig, err := signer.Sign(t.contentHash)
	if err != nil {
		return fmt.Errorf("sign transaction %s: %w", t.contentHash, err)
	}
	t.Signature = sig
	return nil
}

// Verify reports whether the transaction's signature is valid under
// verifier. Coinbase transactions are not passed through a verifier by
// callers (see Validate); this method itself has no opinion on sender.
func (t Transaction) Verify(verifier Verifier) bool {
	return verifier.Verify(t.contentHash, t.Sender, t.Signature)
}

// IsCoinbase reports whether this transaction is a reward issuance.
func (t Transaction) IsCoinbase() bool {
	return t.Sender == Coinbase
}

// Validate checks the structural rules of §4.2 that do not require chain
// context (balance sufficiency is checked by the caller). position is the
// transaction's 0-based index within its containing block, used to require
// a coinbase at position 0; pass -1 for a mempool-admission check (outside
// any block), which rejects any coinbase.
func (t Transaction) Validate(verifier Verifier, position int) error {
	if t.Recipient.Empty() {
		return fmt.Errorf("recipient must not be empty")
	}
	if t.Amount.Negative() {
		return fmt.Errorf("amount must not be negative")
	}

	if t.IsCoinbase() {
		if position != 0 {
			return fmt.Errorf("coinbase transaction must be at block position 0, got %d", position)
		}
		return nil
	}

	if t.Sender.Empty() {
		return fmt.Errorf("sender must not be empty")
	}
	if !t.Verify(verifier) {
		return fmt.Errorf("signature verification failed for %s", t.contentHash)
	}
	return nil
}

// FormatAmount renders a as a decimal string with the given number of
// fractional digits, e.g. FormatAmount(40000, 3) == "40.000" when minor
// units are thousandths. precision <= 0 renders a bare integer.
func FormatAmount(a Amount, precision int) string {
	if precision <= 0 {
		return strconv.FormatInt(int64(a), 10)
	}

	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}

	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}

	whole := v / scale
	frac := v % scale
	fracStr := strconv.FormatInt(frac, 10)
	for len(fracStr) < precision {
		fracStr = "0" + fracStr
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%s", sign, whole, fracStr)
}

// ParseAmount parses a decimal string produced by FormatAmount (or a bare
// integer when precision <= 0) back into minor units.
func ParseAmount(s string, precision int) (Amount, error) {
	if precision <= 0 {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return Amount(v), nil
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > precision {
		return 0, fmt.Errorf("invalid amount %q: too many fractional digits", s)
	}
	for len(frac) < precision {
		frac += "0"
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	fracVal := int64(0)
	if frac != "" {
		fracVal, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}

	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}

	v := wholeVal*scale + fracVal
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// CanonicalTransactionJSON renders the hashed, interop form of a
// transaction's identifying fields: a UTF-8 JSON object with keys in
// lexicographic order (amount, recipient, sender, timestamp), the amount
// as a decimal string to avoid floating-point ambiguity.
func CanonicalTransactionJSON(sender, recipient Address, amount Amount, timestamp int64, precision int) string {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(`"amount":"`)
	b.WriteString(FormatAmount(amount, precision))
	b.WriteString(`","recipient":"`)
	b.WriteString(string(recipient))
	b.WriteString(`","sender":"`)
	b.WriteString(string(sender))
	b.WriteString(`","timestamp":`)
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('}')
	return b.String()
}
