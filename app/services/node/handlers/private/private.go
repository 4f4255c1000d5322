// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitPeer is called by a node so they can be added to the known peer list.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if pr.Host == "" {
		return errs.NewTrusted(errors.New("peer host is required"), http.StatusBadRequest)
	}

	if h.State.AddKnownPeer(pr) {
		h.Log.Infow("adding peer", "traceid", v.TraceID, "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Status(), http.StatusOK)
}

// Chain returns the full local chain so a peer can run the fork-choice rule.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local chain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	// Ask the state package to validate the proposed block. If the block
	// passes validation, it will be added to the chain.
	if err := h.State.ProcessProposedBlock(block); err != nil {

		// A block that doesn't link to our tip may belong to a longer chain
		// we haven't seen yet.
		if errors.Is(err, database.ErrPreviousHashMismatch) || errors.Is(err, database.ErrNonSequentialID) {
			h.State.Worker.SignalSync()
		}

		return errs.NewTrusted(fmt.Errorf("block not accepted: %w", err), http.StatusNotAcceptable)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeChain runs the fork-choice rule between the local chain and the
// chain in the request.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var remote []database.Block
	if err := web.Decode(r, &remote); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	res, err := h.State.ResolveFork(remote)
	if err != nil {
		var cerr *database.ConsensusError
		if errors.As(err, &cerr) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	resp := struct {
		Choice      string `json:"choice"`
		ChainLength int    `json:"chain_length"`
		LocalError  string `json:"local_error,omitempty"`
		RemoteError string `json:"remote_error,omitempty"`
	}{
		Choice:      res.Choice.String(),
		ChainLength: len(res.Chain),
	}
	if res.LocalErr != nil {
		resp.LocalError = res.LocalErr.Error()
	}
	if res.RemoteErr != nil {
		resp.RemoteError = res.RemoteErr.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
