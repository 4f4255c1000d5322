package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powchain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const testDifficulty = 8

func Test_Mining(t *testing.T) {
	t.Log("Given the need to mine submitted payloads in the background.")
	{
		st := newState(t, peer.NewPeerSet())
		w := worker.Run(st, time.Hour, nil)
		defer w.Shutdown()

		st.SubmitData("a")
		st.SubmitData("b")

		if !waitFor(func() bool { return len(st.RetrieveChain()) == 3 }) {
			t.Fatalf("\t%s\tShould mine both payloads, chain length %d.", failed, len(st.RetrieveChain()))
		}
		t.Logf("\t%s\tShould mine both payloads.", success)

		chain := st.RetrieveChain()
		if chain[1].Data != "a" || chain[2].Data != "b" {
			t.Fatalf("\t%s\tShould mine in submission order: %q %q", failed, chain[1].Data, chain[2].Data)
		}
		if err := database.ValidateChain(testDifficulty, chain); err != nil {
			t.Fatalf("\t%s\tShould produce a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould produce a valid chain in submission order.", success)
	}
}

func Test_Sync(t *testing.T) {
	t.Log("Given the need to pull a longer chain from a known peer.")
	{
		remote := []database.Block{genesis.Block()}
		for _, d := range []string{"r1", "r2"} {
			block, _, err := database.POW(context.Background(), testDifficulty, remote[len(remote)-1], d, noop)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
			}
			remote = append(remote, block)
		}

		added := make(chan string, 1)

		mux := http.NewServeMux()
		mux.HandleFunc("/v1/node/status", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(peer.PeerStatus{ChainLength: len(remote), LatestBlockHash: remote[2].Hash})
		})
		mux.HandleFunc("/v1/node/chain", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(remote)
		})
		mux.HandleFunc("/v1/node/peers", func(w http.ResponseWriter, r *http.Request) {
			var pr peer.Peer
			json.NewDecoder(r.Body).Decode(&pr)
			select {
			case added <- pr.Host:
			default:
			}
			w.WriteHeader(http.StatusNoContent)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		peers := peer.NewPeerSet()
		peers.Add(peer.New(strings.TrimPrefix(srv.URL, "http://")))

		st := newState(t, peers)
		w := worker.Run(st, time.Hour, nil)
		defer w.Shutdown()

		if st.RetrieveLatestBlock() != remote[2] {
			t.Fatalf("\t%s\tShould adopt the peer chain on start.", failed)
		}
		t.Logf("\t%s\tShould adopt the peer chain on start.", success)

		select {
		case host := <-added:
			if host != "localhost:9080" {
				t.Fatalf("\t%s\tShould announce this node, got %q.", failed, host)
			}
		default:
			t.Fatalf("\t%s\tShould announce this node to the peer.", failed)
		}
		t.Logf("\t%s\tShould announce this node to the peer.", success)
	}
}

// =============================================================================

func newState(t *testing.T, peers *peer.PeerSet) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = testDifficulty

	st, err := state.New(state.Config{
		Host:       "localhost:9080",
		Genesis:    gen,
		Storage:    memory.New(),
		KnownPeers: peers,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func noop(v string, args ...any) {}
