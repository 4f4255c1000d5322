package worker

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// shareBlockOperations handles pushing newly mined blocks to peers.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation proposes the mined block to the known peers.
// Peers that fail to accept it are logged, that's it.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started: blk[%d]", block.ID)
	defer w.evHandler("worker: runShareBlockOperation: completed: blk[%d]", block.ID)

	if err := w.state.NetSendBlockToPeers(block); err != nil {
		w.evHandler("worker: runShareBlockOperation: WARNING: %s", err)
	}
}
