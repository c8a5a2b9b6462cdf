package types

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pouria-shahmiri/acctchain/pkg/hashutil"
)

// GenesisPreviousHash is the sentinel previous-hash recorded on the
// genesis block. It is fixed at "0"; no configuration key overrides it.
const GenesisPreviousHash = "0"

// BlockHeader is the hashed metadata of a block.
type BlockHeader struct {
	Index        uint64
	PreviousHash string
	Timestamp    int64
	MerkleRoot   string
	Nonce        uint64
	Hash         string
}

// Block is a header plus its ordered transaction list. Position 0 is the
// coinbase whenever Header.Index > 0.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction

	maxTransactions int
	finalized       bool
}

// NewBlock creates an empty candidate block extending prevHash at index.
// maxTransactions bounds AddTransaction (0 means unbounded).
func NewBlock(index uint64, previousHash string, timestamp int64, maxTransactions int) *Block {
	return &Block{
		Header: BlockHeader{
			Index:        index,
			PreviousHash: previousHash,
			Timestamp:    timestamp,
		},
		maxTransactions: maxTransactions,
	}
}

// AddTransaction admits tx to the block if the position limit has not been
// reached and the block has not yet been mined. Returns false otherwise.
func (b *Block) AddTransaction(tx Transaction) bool {
	if b.finalized {
		return false
	}
	if b.maxTransactions > 0 && len(b.Transactions) >= b.maxTransactions {
		return false
	}
	b.Transactions = append(b.Transactions, tx)
	return true
}

// RecomputeHash recomputes the Merkle root over the transaction content
// hashes and then the header hash. Callers must call this after mutating
// Transactions and before relying on Header.Hash.
func (b *Block) RecomputeHash() {
	hashes := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.ContentHash()
	}
	b.Header.MerkleRoot = hashutil.MerkleRoot(hashes)
	b.Header.Hash = HashBlockHeader(b.Header)
}

// HashBlockHeader computes the header hash per the canonical byte
// contract: the ASCII concatenation of index, previous-hash, timestamp,
// merkle-root, nonce, with no separators, fed to SHA-256. The reference
// source's header hash omits the merkle root in some code paths; this
// core always includes it so the transaction list is tamper-evident.
func HashBlockHeader(h BlockHeader) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(h.Index, 10))
	b.WriteString(h.PreviousHash)
	b.WriteString(strconv.FormatInt(h.Timestamp, 10))
	b.WriteString(h.MerkleRoot)
	b.WriteString(strconv.FormatUint(h.Nonce, 10))
	return hashutil.Sha256Hex([]byte(b.String()))
}

// SatisfiesDifficulty reports whether hash has at least difficulty
// leading hex zero characters. Genesis is exempt from this check by
// convention of the caller (chain.Chain never calls it for index 0).
func SatisfiesDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// ErrNonceExhausted is returned by Mine when maxNonce is reached without
// finding a satisfying hash.
var ErrNonceExhausted = fmt.Errorf("nonce space exhausted before difficulty was satisfied")

// Mine searches for a nonce making the block's hash satisfy difficulty.
// It recomputes the Merkle root once (it does not change across the
// search) and then hashes the header once per nonce. The search is
// cancelled promptly via ctx; cancellation is checked once per iteration,
// so it costs at most one extra hash beyond the cancellation point.
func (b *Block) Mine(ctx context.Context, difficulty int, maxNonce uint64) error {
	hashes := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.ContentHash()
	}
	b.Header.MerkleRoot = hashutil.MerkleRoot(hashes)

	for nonce := uint64(0); nonce <= maxNonce; nonce++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b.Header.Nonce = nonce
		hash := HashBlockHeader(b.Header)
		if SatisfiesDifficulty(hash, difficulty) {
			b.Header.Hash = hash
			b.finalized = true
			return nil
		}
	}
	return ErrNonceExhausted
}
