// Package telemetry exposes search statistics as Prometheus metrics.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shabbyrobe/subcrack"
)

// SearchMetrics implements subcrack.Observer.
type SearchMetrics struct {
	// iterations counts proposals evaluated. Labels: chain
	iterations *prometheus.CounterVec

	// accepted counts proposals the Metropolis test accepted. Labels: chain
	accepted *prometheus.CounterVec

	// bestScore is the best log-likelihood of the most recent run. Labels: chain
	bestScore *prometheus.GaugeVec

	// chainDuration measures wall time per chain.
	chainDuration prometheus.Histogram
}

var _ subcrack.Observer = (*SearchMetrics)(nil)

// NewSearchMetrics registers the collectors with reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewSearchMetrics(reg prometheus.Registerer) (*SearchMetrics, error) {
	m := &SearchMetrics{
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcrack",
			Subsystem: "search",
			Name:      "iterations_total",
			Help:      "Proposals evaluated by the Metropolis-Hastings search",
		}, []string{"chain"}),
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcrack",
			Subsystem: "search",
			Name:      "accepted_total",
			Help:      "Proposals accepted by the Metropolis-Hastings search",
		}, []string{"chain"}),
		bestScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "subcrack",
			Subsystem: "search",
			Name:      "best_score",
			Help:      "Log-likelihood of the best key found by the last run",
		}, []string{"chain"}),
		chainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "subcrack",
			Subsystem: "search",
			Name:      "chain_duration_seconds",
			Help:      "Wall time of one search chain",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	for _, c := range []prometheus.Collector{m.iterations, m.accepted, m.bestScore, m.chainDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SearchMetrics) ObserveChain(s subcrack.ChainStats) {
	chain := strconv.Itoa(s.Chain)
	m.iterations.WithLabelValues(chain).Add(float64(s.Iterations))
	m.accepted.WithLabelValues(chain).Add(float64(s.Accepted))
	m.bestScore.WithLabelValues(chain).Set(s.BestScore)
	m.chainDuration.Observe(s.Duration.Seconds())
}

// WriteTextfile writes everything in g to path in the text exposition format,
// for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
