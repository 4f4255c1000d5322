package metrics_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Metrics(t *testing.T) {
	t.Log("Given the need to record mining and validation activity.")
	{
		reg := prometheus.NewRegistry()

		m, err := metrics.New(reg)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to register the collectors: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to register the collectors.", success)

		if _, err := metrics.New(reg); err == nil {
			t.Fatalf("\t%s\tShould fail to register the collectors twice.", failed)
		}
		t.Logf("\t%s\tShould fail to register the collectors twice.", success)

		m.BlockMined(100)
		m.HashAttempts(50)
		m.Rejected("hash_mismatch")
		m.Rejected("hash_mismatch")
		m.ForkChoice("adopt_remote")
		m.ChainLength(4)

		count, err := testutil.GatherAndCount(reg, "powchain_hash_attempts_total", "powchain_blocks_rejected_total")
		if err != nil || count != 2 {
			t.Fatalf("\t%s\tShould gather the series: %d, %v", failed, count, err)
		}
		t.Logf("\t%s\tShould gather the series.", success)

		if n, err := testutil.GatherAndCount(reg, "powchain_fork_choices_total"); err != nil || n != 1 {
			t.Fatalf("\t%s\tShould have one fork-choice series, got %d: %v", failed, n, err)
		}
		t.Logf("\t%s\tShould have one fork-choice series.", success)
	}

	t.Log("Given the need to run without metrics.")
	{
		var m *metrics.Metrics
		m.BlockMined(1)
		m.Rejected("other")
		m.ChainLength(1)
		t.Logf("\t%s\tShould ignore calls on a nil value.", success)
	}
}
