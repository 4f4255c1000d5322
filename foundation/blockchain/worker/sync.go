package worker

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// Sync updates the peer list and pulls the chain of any peer that reports
// a longer chain than ours, handing it to the fork-choice rule.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// If this peer has a longer chain, let the fork-choice rule decide.
		if peerStatus.ChainLength > len(w.state.RetrieveChain()) {
			w.syncChain(pr, peerStatus.ChainLength)
		}
	}

	// Let the known peers know this node is available to chat.
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(pr); err != nil {
			w.evHandler("worker: sync: addPeer: %s: ERROR: %s", pr.Host, err)
		}
	}
}

// syncChain retrieves the chain of the specified peer and resolves it
// against the local chain.
func (w *Worker) syncChain(pr peer.Peer, length int) {
	w.evHandler("worker: sync: retrievePeerChain: %s: length[%d]", pr.Host, length)

	remote, err := w.state.NetRequestPeerChain(pr)
	if err != nil {
		w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
		return
	}

	res, err := w.state.ResolveFork(remote)
	if err != nil {
		w.evHandler("worker: sync: resolveFork: %s: ERROR: %s", pr.Host, err)
		return
	}

	w.evHandler("worker: sync: resolveFork: %s: choice[%s]", pr.Host, res.Choice)
}
