package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/lfreval/internal/sweep"
)

// testReport returns a small two-node report.
func testReport() *sweep.Report {
	return &sweep.Report{
		Name:         "kcore-lfr005",
		Mixing:       "05",
		GroundTruth:  "data/LFR_10000/0.05/community.txt",
		UniverseSize: 10000,
		StartedAt:    time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Evaluations:  4,
		Failures:     1,
		Series: []sweep.Series{
			{
				Node:     9525,
				TrueSize: 40,
				Points: []sweep.Point{
					{K: 10, Precision: 0.5, Recall: 0.25, F1: 1.0 / 3.0, TrueSize: 40, ProposedSize: 20, SymDiffSize: 40, Path: "a/k10.txt"},
					{K: 11, Precision: 0.8, Recall: 0.6, F1: 0.6857, TrueSize: 40, ProposedSize: 30, SymDiffSize: 22, Path: "a/k11.txt"},
				},
			},
			{
				Node:     9002,
				TrueSize: 25,
				Points: []sweep.Point{
					{K: 10, Precision: 1, Recall: 1, F1: 1, TrueSize: 25, ProposedSize: 25, Path: "b/k10.txt"},
					{K: 11, Path: "b/k11.txt", Error: "opening community file: no such file"},
				},
			},
		},
	}
}

func TestReadRuns_NonExistentFile(t *testing.T) {
	runs, err := ReadRuns("/nonexistent/path/runs.jsonl")
	if err != nil {
		t.Fatalf("ReadRuns() error = %v (should return nil for nonexistent file)", err)
	}
	if len(runs) != 0 {
		t.Errorf("ReadRuns() returned %d runs, want 0", len(runs))
	}
}

func TestAppendRun_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	first := NewRun(testReport())
	second := NewRun(testReport())
	if first.ID == second.ID {
		t.Fatal("NewRun() produced duplicate IDs")
	}

	for _, r := range []Run{first, second} {
		if err := AppendRun(path, r); err != nil {
			t.Fatalf("AppendRun() error = %v", err)
		}
	}

	runs, err := ReadRuns(path)
	if err != nil {
		t.Fatalf("ReadRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ReadRuns() returned %d runs, want 2", len(runs))
	}

	got := runs[0]
	if got.ID != first.ID || got.Name != "kcore-lfr005" || got.UniverseSize != 10000 {
		t.Errorf("run = %+v, want fields preserved", got.Report)
	}
	if !got.StartedAt.Equal(first.StartedAt) || got.Duration != first.Duration {
		t.Errorf("timing not preserved: %v %v", got.StartedAt, got.Duration)
	}
	if len(got.Series) != 2 || got.Series[1].Points[1].Error == "" {
		t.Errorf("series not preserved: %+v", got.Series)
	}
}

func TestReadRuns_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	if err := AppendRun(path, NewRun(testReport())); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("\n\n")
	f.Close()

	runs, err := ReadRuns(path)
	if err != nil {
		t.Fatalf("ReadRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("ReadRuns() returned %d runs, want 1", len(runs))
	}
}

func TestReadRuns_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRuns(path); err == nil {
		t.Error("ReadRuns() error = nil, want parse error")
	}
}
