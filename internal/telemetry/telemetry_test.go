package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScored(t *testing.T) {
	m := New()

	m.ObserveScored(time.Millisecond, 0.8, 12)
	m.ObserveScored(time.Millisecond, 0, 0)
	m.ObserveFailed(time.Millisecond)

	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomeScored, 1},
		{OutcomeEmpty, 1},
		{OutcomeFailed, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("evaluations_total{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
		}
	}

	// Empty and failed evaluations do not feed the score histograms.
	if n := histogramCount(t, m, "lfreval_f1_score"); n != 1 {
		t.Errorf("lfreval_f1_score sample count = %d, want 1", n)
	}
	if n := histogramCount(t, m, "lfreval_evaluation_duration_seconds"); n != 3 {
		t.Errorf("lfreval_evaluation_duration_seconds sample count = %d, want 3", n)
	}
}

// histogramCount returns the sample count of the named histogram.
func histogramCount(t *testing.T, m *Metrics, name string) uint64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveScored(time.Millisecond, 1, 3)

	path := filepath.Join(t.TempDir(), "lfreval.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `lfreval_evaluations_total{outcome="scored"} 1`) {
		t.Errorf("textfile missing evaluations counter:\n%s", data)
	}
}
