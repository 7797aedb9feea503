package metric

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/lfreval/internal/community"
)

const eps = 1e-12

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestScore_ConcreteScenario(t *testing.T) {
	truth := community.NewSet(1, 2, 3)
	proposed := community.NewSet(2, 3, 4)

	res := Score(proposed, truth, 10)

	if res.TruePositives != 2 || res.FalsePositives != 1 || res.FalseNegatives != 1 {
		t.Errorf("confusion = (TP %d, FP %d, FN %d), want (2, 1, 1)",
			res.TruePositives, res.FalsePositives, res.FalseNegatives)
	}
	if res.TrueNegatives != 6 {
		t.Errorf("TrueNegatives = %d, want 6", res.TrueNegatives)
	}
	for name, got := range map[string]float64{"precision": res.Precision, "recall": res.Recall, "f1": res.F1} {
		if !approxEqual(got, 2.0/3.0) {
			t.Errorf("%s = %v, want 2/3", name, got)
		}
	}
	if got := res.SymmetricDifference.Sorted(); !reflect.DeepEqual(got, []int{1, 4}) {
		t.Errorf("SymmetricDifference = %v, want [1 4]", got)
	}
	if res.ProposedSize != 3 {
		t.Errorf("ProposedSize = %d, want 3", res.ProposedSize)
	}
}

func TestScore_EdgeCases(t *testing.T) {
	tests := []struct {
		name          string
		proposed      community.Set
		truth         community.Set
		wantPrecision float64
		wantRecall    float64
		wantF1        float64
		wantSize      int
		wantSymDiff   []int
	}{
		{
			name:          "identical sets",
			proposed:      community.NewSet(5, 6, 7),
			truth:         community.NewSet(5, 6, 7),
			wantPrecision: 1, wantRecall: 1, wantF1: 1,
			wantSize:    3,
			wantSymDiff: []int{},
		},
		{
			name:          "disjoint sets",
			proposed:      community.NewSet(1, 2),
			truth:         community.NewSet(3, 4),
			wantPrecision: 0, wantRecall: 0, wantF1: 0,
			wantSize:    2,
			wantSymDiff: []int{1, 2, 3, 4},
		},
		{
			name:          "empty proposed",
			proposed:      community.NewSet(),
			truth:         community.NewSet(8, 9),
			wantPrecision: 0, wantRecall: 0, wantF1: 0,
			wantSize:    0,
			wantSymDiff: []int{8, 9},
		},
		{
			name:          "empty truth",
			proposed:      community.NewSet(1, 2),
			truth:         community.NewSet(),
			wantPrecision: 0, wantRecall: 0, wantF1: 0,
			wantSize:    2,
			wantSymDiff: []int{1, 2},
		},
		{
			name:          "both empty",
			proposed:      community.NewSet(),
			truth:         community.NewSet(),
			wantPrecision: 0, wantRecall: 0, wantF1: 0,
			wantSize:    0,
			wantSymDiff: []int{},
		},
		{
			name:          "proposed superset",
			proposed:      community.NewSet(1, 2, 3, 4),
			truth:         community.NewSet(1, 2),
			wantPrecision: 0.5, wantRecall: 1, wantF1: 2.0 / 3.0,
			wantSize:    4,
			wantSymDiff: []int{3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.proposed, tt.truth, 100)

			if !approxEqual(res.Precision, tt.wantPrecision) {
				t.Errorf("Precision = %v, want %v", res.Precision, tt.wantPrecision)
			}
			if !approxEqual(res.Recall, tt.wantRecall) {
				t.Errorf("Recall = %v, want %v", res.Recall, tt.wantRecall)
			}
			if !approxEqual(res.F1, tt.wantF1) {
				t.Errorf("F1 = %v, want %v", res.F1, tt.wantF1)
			}
			if math.IsNaN(res.F1) || math.IsInf(res.F1, 0) {
				t.Errorf("F1 is not finite: %v", res.F1)
			}
			if res.ProposedSize != tt.wantSize {
				t.Errorf("ProposedSize = %d, want %d", res.ProposedSize, tt.wantSize)
			}
			if got := res.SymmetricDifference.Sorted(); !reflect.DeepEqual(got, tt.wantSymDiff) {
				t.Errorf("SymmetricDifference = %v, want %v", got, tt.wantSymDiff)
			}
		})
	}
}

func TestScore_EmptyProposedReturnsTruth(t *testing.T) {
	truth := community.NewSet(1, 2, 3)
	res := Score(community.NewSet(), truth, 10)

	if !res.SymmetricDifference.Equal(truth) {
		t.Errorf("SymmetricDifference = %v, want %v", res.SymmetricDifference.Sorted(), truth.Sorted())
	}
	if res.FalseNegatives != 3 {
		t.Errorf("FalseNegatives = %d, want 3", res.FalseNegatives)
	}
}

func TestScore_DefaultUniverse(t *testing.T) {
	res := Score(community.NewSet(1), community.NewSet(1), 0)
	if res.TrueNegatives != DefaultUniverseSize-1 {
		t.Errorf("TrueNegatives = %d, want %d", res.TrueNegatives, DefaultUniverseSize-1)
	}
}

func TestScore_NodesOutsideUniverse(t *testing.T) {
	// Node 50 lies outside {1..10} and must not reduce the true-negative count.
	res := Score(community.NewSet(1, 50), community.NewSet(1, 2), 10)
	if res.TrueNegatives != 8 {
		t.Errorf("TrueNegatives = %d, want 8", res.TrueNegatives)
	}
}

func TestEvaluate_ReadsProposedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcore_k12.txt")
	if err := os.WriteFile(path, []byte("2 3\n3 4\n-1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Evaluate(path, community.NewSet(1, 2, 3), 10)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !approxEqual(res.F1, 2.0/3.0) {
		t.Errorf("F1 = %v, want 2/3", res.F1)
	}
	if res.ProposedSize != 3 {
		t.Errorf("ProposedSize = %d, want 3", res.ProposedSize)
	}
}

func TestEvaluate_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("-1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Evaluate(path, community.NewSet(1, 2), 10)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if res.ProposedSize != 0 || res.Precision != 0 || res.Recall != 0 || res.F1 != 0 {
		t.Errorf("Evaluate() = %+v, want zero metrics", res)
	}
}

func TestEvaluate_MissingFile(t *testing.T) {
	if _, err := Evaluate(filepath.Join(t.TempDir(), "nope.txt"), community.NewSet(1), 10); err == nil {
		t.Error("expected error for missing proposed file")
	}
}
