package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProbe(t *testing.T) {
	before := testutil.ToFloat64(ProbeScored.WithLabelValues("fast_cue", "question"))
	ObserveProbe("fast_cue", "question", time.Millisecond)
	after := testutil.ToFloat64(ProbeScored.WithLabelValues("fast_cue", "question"))
	if after-before != 1 {
		t.Errorf("counter delta = %f, want 1", after-before)
	}
}

func TestObserveGate(t *testing.T) {
	before := testutil.ToFloat64(GateDecisions.WithLabelValues("voc", "heavy"))
	ObserveGate("voc", "heavy")
	ObserveGate("voc", "heavy")
	if got := testutil.ToFloat64(GateDecisions.WithLabelValues("voc", "heavy")) - before; got != 2 {
		t.Errorf("counter delta = %f, want 2", got)
	}
}

func TestObserveErrorsAndFiltered(t *testing.T) {
	e0 := testutil.ToFloat64(ProbeErrors)
	f0 := testutil.ToFloat64(RouterFiltered)
	ObserveProbeError()
	ObserveFiltered()
	if testutil.ToFloat64(ProbeErrors)-e0 != 1 {
		t.Error("probe errors not incremented")
	}
	if testutil.ToFloat64(RouterFiltered)-f0 != 1 {
		t.Error("filtered not incremented")
	}
}
