package state

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
)

// SubmitData adds a payload to the mempool and signals the worker that
// there is something to mine. A payload that isn't valid UTF-8 could never
// be mined and is refused.
func (s *State) SubmitData(data string) (mempool.Entry, error) {
	if !utf8.ValidString(data) {
		return mempool.Entry{}, database.ErrInvalidPayload
	}

	entry := s.mempool.Upsert(data)
	s.evHandler("state: SubmitData: payload queued: seq[%d]: pending[%d]", entry.Seq, s.mempool.Count())

	s.Worker.SignalStartMining()

	return entry, nil
}

// MineNewBlock mines the oldest pending payload on top of the current tip.
// The payload stays in the mempool unless the block is appended.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	if !s.IsMiningAllowed() {
		return database.Block{}, ErrMiningHalted
	}

	entry, ok := s.mempool.Oldest()
	if !ok {
		return database.Block{}, ErrNoPayloads
	}

	block, err := s.mine(ctx, entry.Data)
	if err != nil {
		return database.Block{}, err
	}

	s.mempool.Delete(entry)

	return block, nil
}

// MineData mines the specified payload directly, bypassing the mempool.
func (s *State) MineData(ctx context.Context, data string) (database.Block, error) {
	if !s.IsMiningAllowed() {
		return database.Block{}, ErrMiningHalted
	}

	return s.mine(ctx, data)
}

// ProcessProposedBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local chain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%d]: hash[%s]", block.ID, block.Hash)
	defer s.evHandler("state: ProcessProposedBlock: completed: blk[%d]", block.ID)

	s.mu.Lock()
	err := s.appendBlock(block)
	s.mu.Unlock()

	if err != nil {
		s.reject(fmt.Sprintf("blk[%d]", block.ID), err)
		return err
	}

	s.evHandler("viewer: state: blk[%d] ACCEPTED from peer: hash[%s]", block.ID, block.Hash)
	s.metrics.BlockAccepted()

	// The tip moved so any running mining operation is now stale.
	s.Worker.SignalCancelMining()
	s.Worker.SignalStartMining()

	return nil
}

// =============================================================================

// mine performs the proof of work on the current tip outside the lock and
// then appends the block if the tip hasn't moved in the meantime.
func (s *State) mine(ctx context.Context, data string) (database.Block, error) {
	tip := s.RetrieveLatestBlock()

	s.evHandler("state: mine: MINING: perform POW: blk[%d]", tip.ID+1)

	block, sol, err := database.POW(ctx, s.genesis.Difficulty, tip, data, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if err := ctx.Err(); err != nil {
		s.metrics.HashAttempts(sol.Attempts)
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendBlock(block); err != nil {
		s.metrics.HashAttempts(sol.Attempts)
		s.reject(fmt.Sprintf("mined blk[%d]", block.ID), err)
		return database.Block{}, fmt.Errorf("mined on a stale tip: %w", err)
	}

	s.evHandler("viewer: state: blk[%d] MINED: nonce[%d]: hash[%s]: attempts[%d]", block.ID, block.Nonce, block.Hash, sol.Attempts)
	s.metrics.BlockMined(sol.Attempts)

	s.Worker.SignalShareBlock(block)

	return block, nil
}
