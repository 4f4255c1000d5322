package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const testDifficulty = 8

type node struct {
	state   *state.State
	public  http.Handler
	private http.Handler
	debug   http.Handler
}

func newNode(t *testing.T) node {
	t.Helper()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to register metrics: %v", failed, err)
	}

	gen := genesis.Default()
	gen.Difficulty = testDifficulty

	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Genesis: gen,
		Storage: memory.New(),
		Metrics: m,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	log := zap.NewNop().Sugar()
	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Metrics:  m,
		Evts:     events.New(),
	}

	return node{
		state:   st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		debug:   handlers.DebugMux("test", log, st, reg),
	}
}

func call(h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

func mine(t *testing.T, prev database.Block, data string) database.Block {
	t.Helper()

	block, _, err := database.POW(context.Background(), testDifficulty, prev, data, func(string, ...any) {})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}
	return block
}

// =============================================================================

func Test_Public(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to submit payloads to mine.")
	{
		w := call(n.public, http.MethodPost, "/v1/mine", map[string]string{})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an empty payload with 400, got %d.", failed, w.Code)
		}

		var er errs.Response
		json.NewDecoder(w.Body).Decode(&er)
		if _, exists := er.Fields["data"]; !exists {
			t.Fatalf("\t%s\tShould report the data field: %+v", failed, er)
		}
		t.Logf("\t%s\tShould reject an empty payload with a field error.", success)

		w = call(n.public, http.MethodPost, "/v1/mine", map[string]string{"data": "hello"})
		if w.Code != http.StatusAccepted {
			t.Fatalf("\t%s\tShould accept a payload with 202, got %d.", failed, w.Code)
		}
		if n.state.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould queue the payload.", failed)
		}
		t.Logf("\t%s\tShould accept and queue a payload.", success)
	}

	t.Log("Given the need to read the chain.")
	{
		w := call(n.public, http.MethodGet, "/v1/chain", nil)

		var chain []database.Block
		if err := json.NewDecoder(w.Body).Decode(&chain); err != nil || w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to read the chain: %d, %v", failed, w.Code, err)
		}
		if len(chain) != 1 || chain[0] != genesis.Block() {
			t.Fatalf("\t%s\tShould return only the genesis block: %v", failed, chain)
		}
		t.Logf("\t%s\tShould return only the genesis block.", success)

		w = call(n.public, http.MethodGet, "/v1/chain/latest", nil)
		if !strings.Contains(w.Body.String(), `"previousHash"`) {
			t.Fatalf("\t%s\tShould use the canonical field names: %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould use the canonical field names.", success)
	}
}

func Test_Private(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to accept blocks from peers.")
	{
		block := mine(t, genesis.Block(), "peer")

		tampered := block
		tampered.Data = "x"

		w := call(n.private, http.MethodPost, "/v1/node/block/propose", tampered)
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("\t%s\tShould reject a tampered block with 406, got %d.", failed, w.Code)
		}

		var er errs.Response
		json.NewDecoder(w.Body).Decode(&er)
		if er.Reason != "hash_mismatch" {
			t.Fatalf("\t%s\tShould report the rejection reason: %+v", failed, er)
		}
		t.Logf("\t%s\tShould reject a tampered block with its reason.", success)

		w = call(n.private, http.MethodPost, "/v1/node/block/propose", block)
		if w.Code != http.StatusOK || n.state.RetrieveLatestBlock() != block {
			t.Fatalf("\t%s\tShould accept a valid block, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould accept a valid block.", success)
	}

	t.Log("Given the need to resolve forks proposed by peers.")
	{
		remote := []database.Block{genesis.Block()}
		for _, d := range []string{"r1", "r2", "r3"} {
			remote = append(remote, mine(t, remote[len(remote)-1], d))
		}

		w := call(n.private, http.MethodPost, "/v1/node/chain/propose", remote)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould resolve the fork, got %d: %s", failed, w.Code, w.Body.String())
		}

		var resp struct {
			Choice      string `json:"choice"`
			ChainLength int    `json:"chain_length"`
		}
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Choice != "adopt_remote" || resp.ChainLength != 4 {
			t.Fatalf("\t%s\tShould adopt the longer chain: %+v", failed, resp)
		}
		t.Logf("\t%s\tShould adopt the longer chain.", success)

		w = call(n.private, http.MethodGet, "/v1/node/status", nil)
		if !strings.Contains(w.Body.String(), remote[3].Hash) {
			t.Fatalf("\t%s\tShould report the adopted tip in the status: %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould report the adopted tip in the status.", success)
	}

	t.Log("Given the need to learn about peers.")
	{
		w := call(n.private, http.MethodPost, "/v1/node/peers", map[string]string{"host": "10.0.0.2:9080"})
		if w.Code != http.StatusNoContent {
			t.Fatalf("\t%s\tShould accept the peer with 204, got %d.", failed, w.Code)
		}

		peers := n.state.RetrieveKnownPeers()
		if len(peers) != 1 || peers[0].Host != "10.0.0.2:9080" {
			t.Fatalf("\t%s\tShould add the peer: %v", failed, peers)
		}
		t.Logf("\t%s\tShould add the peer.", success)
	}
}

func Test_Debug(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to expose metrics and health checks.")
	{
		call(n.public, http.MethodGet, "/v1/chain", nil)

		w := call(n.debug, http.MethodGet, "/metrics", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "powchain_") {
			t.Fatalf("\t%s\tShould serve the node metrics, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould serve the node metrics.", success)

		w = call(n.debug, http.MethodGet, "/debug/readiness", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould report ready, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould report ready.", success)
	}
}
