// Package metrics exposes the prometheus collectors for mining, validation
// and fork-choice activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "powchain"

// Metrics holds the set of collectors the node updates. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	hashAttempts   prometheus.Counter
	blocksMined    prometheus.Counter
	blocksAccepted *prometheus.CounterVec
	blocksRejected *prometheus.CounterVec
	forkChoices    *prometheus.CounterVec
	chainLength    prometheus.Gauge
	requests       *prometheus.CounterVec
}

// New constructs the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		hashAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hash_attempts_total",
			Help:      "Number of nonces hashed by the miner.",
		}),
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Number of blocks mined by this node and appended to the chain.",
		}),
		blocksAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_accepted_total",
			Help:      "Number of blocks appended to the chain by source.",
		}, []string{"source"}),
		blocksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_rejected_total",
			Help:      "Number of candidate blocks or chains rejected by validation reason.",
		}, []string{"reason"}),
		forkChoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fork_choices_total",
			Help:      "Number of fork-choice decisions by outcome.",
		}, []string{"outcome"}),
		chainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the local chain including genesis.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests handled by status class.",
		}, []string{"code"}),
	}

	collectors := []prometheus.Collector{
		m.hashAttempts,
		m.blocksMined,
		m.blocksAccepted,
		m.blocksRejected,
		m.forkChoices,
		m.chainLength,
		m.requests,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// BlockMined records a block mined by this node and the attempts it took.
func (m *Metrics) BlockMined(attempts uint64) {
	if m == nil {
		return
	}
	m.hashAttempts.Add(float64(attempts))
	m.blocksMined.Inc()
	m.blocksAccepted.WithLabelValues("local").Inc()
}

// HashAttempts records attempts from a search that didn't produce a block.
func (m *Metrics) HashAttempts(attempts uint64) {
	if m == nil {
		return
	}
	m.hashAttempts.Add(float64(attempts))
}

// BlockAccepted records a block received from a peer and appended.
func (m *Metrics) BlockAccepted() {
	if m == nil {
		return
	}
	m.blocksAccepted.WithLabelValues("peer").Inc()
}

// Rejected records a block or chain that failed validation.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.blocksRejected.WithLabelValues(reason).Inc()
}

// ForkChoice records the outcome of a fork-choice decision.
func (m *Metrics) ForkChoice(outcome string) {
	if m == nil {
		return
	}
	m.forkChoices.WithLabelValues(outcome).Inc()
}

// ChainLength sets the current length of the local chain.
func (m *Metrics) ChainLength(n int) {
	if m == nil {
		return
	}
	m.chainLength.Set(float64(n))
}

// Request records a handled HTTP request by status class, e.g. "2xx".
func (m *Metrics) Request(code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(code).Inc()
}
