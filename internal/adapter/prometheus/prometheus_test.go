package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAdapterReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewPrometheusAdapterWithRegisterer(reg)
	second := NewPrometheusAdapterWithRegisterer(reg)

	first.RecordTransition("in_reparatie", "afgerond")
	second.RecordTransition("in_reparatie", "afgerond")

	got := testutil.ToFloat64(first.transitions.WithLabelValues("in_reparatie", "afgerond"))
	if got != 2 {
		t.Fatalf("expected shared counter at 2, got %v", got)
	}
}
