// Package state is the core API for the blockchain node. It owns the local
// chain and serializes every append and replacement of it.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// Set of error variables for the node state.
var (
	ErrGenesisMismatch = errors.New("stored genesis block doesn't match the genesis fixture")
	ErrForeignGenesis  = errors.New("chain starts from a different genesis block")
	ErrNoPayloads      = errors.New("no payloads in mempool")
	ErrMiningHalted    = errors.New("mining halted after a consensus failure")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and block sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalShareBlock(block database.Block)
	SignalSync()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress string
	Host         string
	Genesis      genesis.Genesis
	Storage      database.Storage
	KnownPeers   *peer.PeerSet
	Metrics      *metrics.Metrics
	EvHandler    EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	minerAddress string
	host         string
	evHandler    EventHandler
	allowMining  bool

	genesis    genesis.Genesis
	chain      []database.Block
	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	storage    database.Storage
	metrics    *metrics.Metrics

	Worker Worker
}

// New constructs the node state. The chain is loaded from storage, seeded
// with the genesis block when storage is empty, and validated.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Load all existing blocks from storage into memory for processing.
	chain, err := database.ReadChain(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	// A new node starts with only the genesis block.
	gen := genesis.Block()
	if len(chain) == 0 {
		ev("state: New: seeding storage with genesis: hash[%s]", gen.Hash)
		if err := cfg.Storage.Write(gen); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}
		chain = []database.Block{gen}
	}

	if chain[0] != gen {
		return nil, ErrGenesisMismatch
	}

	if err := database.ValidateChain(cfg.Genesis.Difficulty, chain); err != nil {
		return nil, fmt.Errorf("stored chain: %w", err)
	}

	ev("state: New: chain loaded: length[%d]: latest[%s]", len(chain), chain[len(chain)-1].Hash)

	state := State{
		minerAddress: cfg.MinerAddress,
		host:         cfg.Host,
		evHandler:    ev,
		allowMining:  true,

		genesis:    cfg.Genesis,
		chain:      chain,
		knownPeers: knownPeers,
		mempool:    mempool.New(),
		storage:    cfg.Storage,
		metrics:    cfg.Metrics,

		// The worker.Run call replaces this with the real worker.
		Worker: noWorker{},
	}

	state.metrics.ChainLength(len(chain))

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the database is properly closed.
	return s.storage.Close()
}

// =============================================================================

// appendBlock validates the block against the current tip and, when it
// passes, persists and appends it. The caller must hold the write lock.
func (s *State) appendBlock(block database.Block) error {
	tip := s.chain[len(s.chain)-1]

	if err := database.ValidateBlock(s.genesis.Difficulty, tip, block); err != nil {
		return err
	}

	if err := s.storage.Write(block); err != nil {
		return fmt.Errorf("write blk[%d]: %w", block.ID, err)
	}

	s.chain = append(s.chain, block)
	s.metrics.ChainLength(len(s.chain))

	return nil
}

// reject emits the rejection signal for a block or chain that failed.
func (s *State) reject(what string, err error) {
	reason := database.Reason(err)
	s.evHandler("viewer: state: %s REJECTED: reason[%s]: %s", what, reason, err)
	s.metrics.Rejected(reason)
}

// =============================================================================

// noWorker is used until a worker registers itself with the state.
type noWorker struct{}

func (noWorker) Shutdown()                       {}
func (noWorker) SignalStartMining()              {}
func (noWorker) SignalCancelMining()             {}
func (noWorker) SignalShareBlock(database.Block) {}
func (noWorker) SignalSync()                     {}
