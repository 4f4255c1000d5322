package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// ResolveFork runs the fork-choice rule between the local chain and a
// remote candidate. When the remote chain wins it replaces the local chain
// in memory and in storage. Payloads of local blocks that aren't part of the
// adopted chain go back into the mempool.
//
// A ConsensusError is returned when neither chain is valid. Mining is halted
// and the local chain is left untouched, recovery is up to the operator.
func (s *State) ResolveFork(remote []database.Block) (database.Resolution, error) {
	s.evHandler("state: ResolveFork: started: remote-length[%d]", len(remote))
	defer s.evHandler("state: ResolveFork: completed")

	res, err := s.resolveFork(remote)
	if err != nil {
		var cerr *database.ConsensusError
		if errors.As(err, &cerr) {
			s.Worker.SignalCancelMining()
		}
		return res, err
	}

	// Anything being mined now sits on a tip that no longer exists.
	if res.Choice == database.AdoptRemote {
		s.Worker.SignalCancelMining()
		s.Worker.SignalStartMining()
	}

	return res, nil
}

// resolveFork performs the fork choice and chain replacement under the
// write lock. Worker signals are left to the caller since the worker reads
// state back.
func (s *State) resolveFork(remote []database.Block) (database.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := s.chain

	res, err := s.chooseChain(local, remote)
	if err != nil {
		s.allowMining = false

		s.evHandler("viewer: state: ResolveFork: CONSENSUS FAILURE: %s", err)
		s.metrics.ForkChoice("both_invalid")
		return res, err
	}

	s.metrics.ForkChoice(res.Choice.String())

	if res.RemoteErr != nil {
		s.reject("remote chain", res.RemoteErr)
	}

	if res.Choice == database.KeepLocal {
		s.evHandler("state: ResolveFork: keep local: local-length[%d]: remote-length[%d]", len(local), len(remote))
		return res, nil
	}

	// Replace the chain on disk first so memory never runs ahead of storage.
	adopted := append([]database.Block(nil), res.Chain...)
	if err := database.WriteChain(s.storage, adopted); err != nil {
		if rerr := database.WriteChain(s.storage, local); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restoring local chain: %w", rerr))
		}
		return database.Resolution{}, fmt.Errorf("adopting remote chain: %w", err)
	}

	s.requeueOrphans(local, adopted)

	s.chain = adopted
	s.metrics.ChainLength(len(adopted))
	s.evHandler("viewer: state: ResolveFork: ADOPTED remote chain: length[%d]: latest[%s]", len(adopted), adopted[len(adopted)-1].Hash)

	res.Chain = adopted
	return res, nil
}

// chooseChain applies the genesis anchor check before the fork-choice rule.
// A remote chain built on a different genesis is treated as invalid.
func (s *State) chooseChain(local []database.Block, remote []database.Block) (database.Resolution, error) {
	if len(remote) == 0 || remote[0] == genesis.Block() {
		return database.ChooseChain(s.genesis.Difficulty, local, remote)
	}

	if err := database.ValidateChain(s.genesis.Difficulty, local); err != nil {
		cerr := database.ConsensusError{LocalErr: err, RemoteErr: ErrForeignGenesis}
		return database.Resolution{LocalErr: err, RemoteErr: ErrForeignGenesis}, &cerr
	}

	return database.Resolution{Chain: local, Choice: database.KeepLocal, RemoteErr: ErrForeignGenesis}, nil
}

// requeueOrphans puts the payloads of local blocks that are not part of the
// adopted chain back into the mempool.
func (s *State) requeueOrphans(local []database.Block, adopted []database.Block) {
	kept := make(map[string]struct{}, len(adopted))
	for _, block := range adopted {
		kept[block.Hash] = struct{}{}
	}

	for _, block := range local {
		if block.IsGenesis() {
			continue
		}
		if _, exists := kept[block.Hash]; exists {
			continue
		}
		entry := s.mempool.Upsert(block.Data)
		s.evHandler("state: ResolveFork: orphaned blk[%d]: payload requeued: seq[%d]", block.ID, entry.Seq)
	}
}
