package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// RetrieveChain returns a copy of the local chain starting with genesis.
func (s *State) RetrieveChain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Block(nil), s.chain...)
}

// RetrieveLatestBlock returns the tip of the local chain.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[len(s.chain)-1]
}

// RetrieveGenesis returns the chain settings fixed at initialization.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveMempool returns the payloads waiting to be mined.
func (s *State) RetrieveMempool() []mempool.Entry {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the number of payloads waiting to be mined.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// RetrieveKnownPeers retrieves a copy of the known peer list excluding
// this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer and reports if the
// peer wasn't already known.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer from
// the known peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// RetrieveHost returns the host this node is reachable on by peers.
func (s *State) RetrieveHost() string {
	return s.host
}

// Difficulty returns the number of leading zero bits a block hash needs.
func (s *State) Difficulty() uint {
	return s.genesis.Difficulty
}

// MinerAddress returns the account address of this node's miner.
func (s *State) MinerAddress() string {
	return s.minerAddress
}

// IsMiningAllowed reports if mining is allowed. Mining is turned off after
// a consensus failure.
func (s *State) IsMiningAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.allowMining
}

// Status returns the information peers use to decide if they should sync.
func (s *State) Status() peer.PeerStatus {
	s.mu.RLock()
	tip := s.chain[len(s.chain)-1]
	length := len(s.chain)
	s.mu.RUnlock()

	return peer.PeerStatus{
		LatestBlockHash: tip.Hash,
		LatestBlockID:   tip.ID,
		ChainLength:     length,
		MinerAddress:    s.minerAddress,
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
