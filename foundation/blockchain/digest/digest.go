// Package digest provides the canonical hashing and proof of work
// predicate used by every block in the chain.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/bits"
)

// Size is the number of bytes in a block digest.
const Size = sha256.Size

// MaxDifficulty is the largest difficulty a digest can satisfy.
const MaxDifficulty uint = Size * 8

// ZeroHash represents a hash code of zeros. It is used as the previous hash
// of the genesis block since genesis has no predecessor.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// preimage is the canonical structure hashed for a block. The order of the
// fields defines the order of the keys in the serialized JSON and must never
// change, otherwise every existing hash becomes invalid.
type preimage struct {
	ID           uint64 `json:"id"`
	PreviousHash string `json:"previousHash"`
	Data         string `json:"data"`
	Timestamp    int64  `json:"timestamp"`
	Nonce        uint64 `json:"nonce"`
}

// Preimage returns the exact bytes that are hashed for the specified fields.
func Preimage(id uint64, previousHash string, data string, timestamp int64, nonce uint64) []byte {
	pre := preimage{
		ID:           id,
		PreviousHash: previousHash,
		Data:         data,
		Timestamp:    timestamp,
		Nonce:        nonce,
	}

	// Payloads are hashed as written, so HTML characters are not escaped.
	// A struct of strings and integers can't fail to encode.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(pre)

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// Sum returns the canonical SHA-256 digest for the specified fields.
func Sum(id uint64, previousHash string, data string, timestamp int64, nonce uint64) [Size]byte {
	return sha256.Sum256(Preimage(id, previousHash, data, timestamp, nonce))
}

// Hex returns the lowercase, unprefixed hex encoding of a digest.
func Hex(sum [Size]byte) string {
	return hex.EncodeToString(sum[:])
}

// =============================================================================

// LeadingZeroBits returns the number of leading zero bits in b when read as
// a big-endian bit string. Every byte counts as exactly 8 bits, so a byte
// value of 3 contributes 6 zero bits before the first one.
func LeadingZeroBits(b []byte) int {
	var n int
	for _, v := range b {
		if v != 0 {
			return n + bits.LeadingZeros8(v)
		}
		n += 8
	}

	return n
}

// Solved reports whether the digest has at least difficulty leading zero bits.
func Solved(difficulty uint, sum []byte) bool {
	if difficulty > uint(len(sum))*8 {
		return false
	}

	return uint(LeadingZeroBits(sum)) >= difficulty
}

// SolvedHex decodes the hex encoded digest and checks it with Solved. A hash
// that doesn't decode into exactly Size bytes is never solved.
func SolvedHex(difficulty uint, hash string) bool {
	sum, err := hex.DecodeString(hash)
	if err != nil || len(sum) != Size {
		return false
	}

	return Solved(difficulty, sum)
}
