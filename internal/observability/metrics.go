// Package observability holds the Prometheus instruments for the risk
// analyzer and the push fan-out engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcome label values.
const (
	OutcomeSent      = "sent"
	OutcomeTransient = "transient"
	OutcomePruned    = "pruned"
	OutcomeSkipped   = "skipped"
)

// Metrics holds counters and histograms for the service. All methods are
// nil-safe so library code can run unmetered in tests.
type Metrics struct {
	DispatchOutcomes *prometheus.CounterVec // labels: kind={incident,broadcast}, outcome
	BroadcastBatches prometheus.Counter
	AnalyzeDuration  prometheus.Histogram
	AnalyzeSkipped   prometheus.Counter
	ZonesDerived     prometheus.Gauge
}

// New creates the metric set and registers it with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "burkinawatch",
			Name:      "push_dispatch_total",
			Help:      "Push delivery attempts by dispatch kind and outcome.",
		}, []string{"kind", "outcome"}),
		BroadcastBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "burkinawatch",
			Name:      "push_broadcast_batches_total",
			Help:      "Subscription pages loaded during broadcast fan-out.",
		}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "burkinawatch",
			Name:      "risk_analyze_duration_seconds",
			Help:      "Duration of a full risk-zone analysis pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		AnalyzeSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "burkinawatch",
			Name:      "risk_analyze_skipped_rows_total",
			Help:      "Incident rows dropped for malformed coordinates.",
		}),
		ZonesDerived: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "burkinawatch",
			Name:      "risk_zones_derived",
			Help:      "Zone count produced by the most recent analysis pass.",
		}),
	}
	reg.MustRegister(
		m.DispatchOutcomes,
		m.BroadcastBatches,
		m.AnalyzeDuration,
		m.AnalyzeSkipped,
		m.ZonesDerived,
	)
	return m
}

// Dispatch records one delivery attempt outcome.
func (m *Metrics) Dispatch(kind, outcome string) {
	if m == nil {
		return
	}
	m.DispatchOutcomes.WithLabelValues(kind, outcome).Inc()
}

// Batch records one subscription page load.
func (m *Metrics) Batch() {
	if m == nil {
		return
	}
	m.BroadcastBatches.Inc()
}

// Analysis records the outcome of one analysis pass.
func (m *Metrics) Analysis(seconds float64, skipped, zones int) {
	if m == nil {
		return
	}
	m.AnalyzeDuration.Observe(seconds)
	m.AnalyzeSkipped.Add(float64(skipped))
	m.ZonesDerived.Set(float64(zones))
}
