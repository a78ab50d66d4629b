package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region collectors

var (
	ProbeScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pragact",
		Subsystem: "probe",
		Name:      "scored_total",
		Help:      "Utterances scored by source path and label",
	}, []string{"source", "label"})

	ProbeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pragact",
		Subsystem: "probe",
		Name:      "errors_total",
		Help:      "Scoring calls that returned an error",
	})

	ProbeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pragact",
		Subsystem: "probe",
		Name:      "latency_seconds",
		Help:      "Probe latency by source path",
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	RouterFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pragact",
		Subsystem: "router",
		Name:      "fast_path_filtered_total",
		Help:      "Plans whose heavy actions were stripped by the fast-path filter",
	})

	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pragact",
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Gate decisions by gate kind and chosen path",
	}, []string{"gate", "chosen"})
)

// #endregion collectors

// #region helpers

// ObserveProbe records one successful probe call.
func ObserveProbe(source, label string, elapsed time.Duration) {
	ProbeScored.WithLabelValues(source, label).Inc()
	ProbeLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveProbeError records one failed probe call.
func ObserveProbeError() {
	ProbeErrors.Inc()
}

// ObserveFiltered records one plan altered by the fast-path filter.
func ObserveFiltered() {
	RouterFiltered.Inc()
}

// ObserveGate records one gate decision.
func ObserveGate(gate, chosen string) {
	GateDecisions.WithLabelValues(gate, chosen).Inc()
}

// #endregion helpers
