package viz

import (
	"strings"
	"testing"

	"github.com/matsen/lfreval/internal/sweep"
)

func testReport() *sweep.Report {
	return &sweep.Report{
		Name:         "kcore",
		Mixing:       "05",
		UniverseSize: 10000,
		Series: []sweep.Series{
			{
				Node:     9525,
				TrueSize: 40,
				Points: []sweep.Point{
					{K: 10, Precision: 0.5, Recall: 0.25, F1: 1.0 / 3.0},
					{K: 11, Precision: 1, Recall: 1, F1: 1},
					{K: 12, Error: "missing"},
				},
			},
			{
				Node:     9002,
				TrueSize: 12,
				Points: []sweep.Point{
					{K: 10, Precision: 0.2, Recall: 0.2, F1: 0.2},
				},
			},
		},
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(testReport(), DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}

	for _, want := range []string{
		"k vs score for k-core on LFR0.05",
		"node: 9525",
		"node: 9002",
		`class="metric-precision"`,
		`class="metric-f1"`,
		"best k = 11",
		"1 failed",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("GenerateHTML() output missing %q", want)
		}
	}
}

func TestGenerateHTML_CustomTitleAndMetrics(t *testing.T) {
	html, err := GenerateHTML(testReport(), HTMLOptions{Title: "Precision only", Metrics: []string{"precision"}})
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "Precision only") {
		t.Error("custom title not rendered")
	}
	if strings.Contains(html, `class="metric-recall"`) {
		t.Error("recall curve drawn although not requested")
	}
}

func TestGenerateHTML_InvalidMetric(t *testing.T) {
	if _, err := GenerateHTML(testReport(), HTMLOptions{Metrics: []string{"accuracy"}}); err == nil {
		t.Error("GenerateHTML() error = nil, want invalid metric error")
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(&sweep.Report{Name: "empty"}, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "No results") {
		t.Error("empty report should render the empty state")
	}
}

func TestGenerateHTML_NilReport(t *testing.T) {
	if _, err := GenerateHTML(nil, DefaultOptions()); err == nil {
		t.Error("GenerateHTML(nil) error = nil, want error")
	}
}

func TestBuildChart_Geometry(t *testing.T) {
	chart, err := BuildChart(testReport(), "t", []string{"f1"})
	if err != nil {
		t.Fatalf("BuildChart() error = %v", err)
	}

	panel := chart.Panels[0]
	if panel.Failures != 1 {
		t.Errorf("Failures = %d, want 1", panel.Failures)
	}
	// Two successful points: k=10 at the left edge, k=11 halfway across k in [10, 12].
	// F1 = 1 sits on the top margin.
	want := "40.0,144.0 194.0,12.0"
	if got := panel.Lines[0].Points; got != want {
		t.Errorf("Points = %q, want %q", got, want)
	}

	// A single k is centered.
	single := chart.Panels[1]
	if got := single.XTicks[0].Pos; got != marginLeft+plotWidth/2 {
		t.Errorf("single tick at %v, want centered", got)
	}
}
