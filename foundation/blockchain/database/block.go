package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// progressCadence is the number of attempts between mining progress events.
const progressCadence = 10_000

// Set of errors returned when a mining search can't produce a block.
var (
	ErrNonceSpaceExhausted = errors.New("nonce space exhausted")
	ErrDifficultyTooHigh   = fmt.Errorf("difficulty exceeds %d bits", digest.MaxDifficulty)
)

// =============================================================================

// Block represents a single entry in the chain. A block is immutable once it
// has been mined, copies are passed by value.
type Block struct {
	ID           uint64 `json:"id"`
	Data         string `json:"data"`
	Hash         string `json:"hash"`         // Hex digest over id, previousHash, data, timestamp, nonce.
	PreviousHash string `json:"previousHash"` // Hash of the predecessor, a sentinel for genesis.
	Timestamp    int64  `json:"timestamp"`    // Unix seconds recorded at mining time.
	Nonce        uint64 `json:"nonce"`        // Value identified to solve the hash solution.
}

// ComputeHash recomputes the canonical hash of the block from its fields.
func (b Block) ComputeHash() string {
	return digest.Hex(digest.Sum(b.ID, b.PreviousHash, b.Data, b.Timestamp, b.Nonce))
}

// IsGenesis reports whether this is the first block of a chain.
func (b Block) IsGenesis() bool {
	return b.ID == 0
}

// =============================================================================

// Solution is the result of a successful mining search.
type Solution struct {
	Nonce    uint64
	Hash     string
	Attempts uint64
}

// Mine performs an exhaustive sequential search starting at nonce 0 for the
// smallest nonce whose canonical hash has difficulty leading zero bits. The
// search blocks until a nonce is found or the context is cancelled.
//
// The data must be valid UTF-8. The canonical encoding replaces invalid
// bytes, so two different payloads would otherwise share one hash.
func Mine(ctx context.Context, difficulty uint, id uint64, timestamp int64, previousHash string, data string, ev func(v string, args ...any)) (Solution, error) {
	if !utf8.ValidString(data) {
		return Solution{}, ErrInvalidPayload
	}

	if difficulty > digest.MaxDifficulty {
		return Solution{}, fmt.Errorf("%w: got %d", ErrDifficultyTooHigh, difficulty)
	}

	ev("database: Mine: MINING: started: blk[%d]: difficulty[%d]", id, difficulty)
	defer ev("database: Mine: MINING: completed: blk[%d]", id)

	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		attempts++
		if attempts%progressCadence == 0 {
			ev("database: Mine: MINING: blk[%d]: attempts[%d]", id, attempts)
		}

		// Did we get told to stop looking.
		if err := ctx.Err(); err != nil {
			ev("database: Mine: MINING: CANCELLED: blk[%d]: attempts[%d]", id, attempts)
			return Solution{}, err
		}

		sum := digest.Sum(id, previousHash, data, timestamp, nonce)
		if digest.Solved(difficulty, sum[:]) {
			hash := digest.Hex(sum)
			ev("database: Mine: MINING: SOLVED: blk[%d]: nonce[%d]: hash[%s]: attempts[%d]", id, nonce, hash, attempts)

			return Solution{Nonce: nonce, Hash: hash, Attempts: attempts}, nil
		}

		if nonce == math.MaxUint64 {
			return Solution{}, ErrNonceSpaceExhausted
		}
	}
}

// POW constructs the block that follows prevBlock and performs the work to
// find a nonce that solves the cryptographic POW puzzle.
func POW(ctx context.Context, difficulty uint, prevBlock Block, data string, ev func(v string, args ...any)) (Block, Solution, error) {
	nb := Block{
		ID:           prevBlock.ID + 1,
		Data:         data,
		PreviousHash: prevBlock.Hash,
		Timestamp:    time.Now().UTC().Unix(),
	}

	sol, err := Mine(ctx, difficulty, nb.ID, nb.Timestamp, nb.PreviousHash, nb.Data, ev)
	if err != nil {
		return Block{}, Solution{}, err
	}

	nb.Nonce = sol.Nonce
	nb.Hash = sol.Hash

	return nb, sol, nil
}

// =============================================================================

// ValidateBlock checks the candidate can follow the predecessor. The checks
// run in a fixed order and the first failure is returned. It must never be
// called with the genesis block as the candidate.
func ValidateBlock(difficulty uint, predecessor Block, candidate Block) error {
	if candidate.PreviousHash != predecessor.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrPreviousHashMismatch, candidate.PreviousHash, predecessor.Hash)
	}

	if !digest.SolvedHex(difficulty, candidate.Hash) {
		return fmt.Errorf("%w: hash %s, difficulty %d", ErrDifficultyNotMet, candidate.Hash, difficulty)
	}

	if nextID := predecessor.ID + 1; candidate.ID != nextID {
		return fmt.Errorf("%w: got %d, exp %d", ErrNonSequentialID, candidate.ID, nextID)
	}

	if !utf8.ValidString(candidate.Data) {
		return fmt.Errorf("%w: blk[%d]", ErrInvalidPayload, candidate.ID)
	}

	if hash := candidate.ComputeHash(); hash != candidate.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, candidate.Hash, hash)
	}

	return nil
}
