package database

import (
	"errors"
	"fmt"
)

// Set of errors that identify which block validation check failed.
var (
	ErrPreviousHashMismatch = errors.New("previous hash doesn't match the predecessor's hash")
	ErrDifficultyNotMet     = errors.New("block hash doesn't satisfy the difficulty")
	ErrNonSequentialID      = errors.New("block id is not the next id")
	ErrHashMismatch         = errors.New("block hash doesn't match its recomputed hash")
	ErrEmptyChain           = errors.New("chain has no blocks")
	ErrInvalidPayload       = errors.New("block data is not valid utf-8")
)

// ErrBothChainsInvalid is wrapped by a ConsensusError when neither the local
// nor the remote chain is valid.
var ErrBothChainsInvalid = errors.New("both local and remote chains are invalid")

// =============================================================================

// ChainError identifies the first block of a chain that failed validation.
type ChainError struct {
	Index int
	ID    uint64
	Err   error
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	return fmt.Sprintf("chain invalid at index %d, blk[%d]: %s", ce.Index, ce.ID, ce.Err)
}

// Unwrap provides access to the underlying validation error.
func (ce *ChainError) Unwrap() error {
	return ce.Err
}

// =============================================================================

// ConsensusError is a fatal error raised when no safe chain exists. The
// caller decides the recovery policy.
type ConsensusError struct {
	LocalErr  error
	RemoteErr error
}

// Error implements the error interface.
func (ce *ConsensusError) Error() string {
	return fmt.Sprintf("%s: local: %s: remote: %s", ErrBothChainsInvalid, ce.LocalErr, ce.RemoteErr)
}

// Unwrap allows errors.Is to match ErrBothChainsInvalid.
func (ce *ConsensusError) Unwrap() error {
	return ErrBothChainsInvalid
}

// =============================================================================

// Reason returns a stable label for the validation check that produced
// the error. It is used for metrics and diagnostics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrPreviousHashMismatch):
		return "previous_hash_mismatch"
	case errors.Is(err, ErrDifficultyNotMet):
		return "difficulty_not_met"
	case errors.Is(err, ErrNonSequentialID):
		return "non_sequential_id"
	case errors.Is(err, ErrHashMismatch):
		return "hash_mismatch"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrEmptyChain):
		return "empty_chain"
	case errors.Is(err, ErrBothChainsInvalid):
		return "both_chains_invalid"
	default:
		return "other"
	}
}
