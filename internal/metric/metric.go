// Package metric scores a proposed community against its true community.
//
// Scores are computed under a closed universe {1..N}. Division by zero never
// reaches the arithmetic: an empty proposed set scores zero everywhere, recall is
// zero when the true set is empty, and F1 is zero when precision and recall are
// both zero.
package metric

import (
	"github.com/matsen/lfreval/internal/community"
)

// DefaultUniverseSize is the order of the LFR 10k benchmark networks.
const DefaultUniverseSize = 10000

// Result is the outcome of one evaluation.
type Result struct {
	SymmetricDifference community.Set
	Precision           float64
	Recall              float64
	F1                  float64
	ProposedSize        int

	// Confusion counts against the universe.
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	TrueNegatives  int
}

// Evaluate reads the proposed community at path and scores it against truth.
// A universeSize <= 0 selects DefaultUniverseSize.
func Evaluate(path string, truth community.Set, universeSize int) (Result, error) {
	proposed, err := community.ReadMembers(path)
	if err != nil {
		return Result{}, err
	}
	return Score(proposed, truth, universeSize), nil
}

// Score compares proposed against truth. Neither set is modified.
func Score(proposed, truth community.Set, universeSize int) Result {
	if universeSize <= 0 {
		universeSize = DefaultUniverseSize
	}

	res := Result{
		SymmetricDifference: truth.SymmetricDifference(proposed),
		TruePositives:       truth.Intersect(proposed).Len(),
	}
	res.FalseNegatives = truth.Len() - res.TruePositives
	res.FalsePositives = proposed.Len() - res.TruePositives
	res.TrueNegatives = trueNegatives(proposed, truth, universeSize)

	if proposed.Len() == 0 {
		return res
	}

	res.ProposedSize = proposed.Len()
	res.Precision = ratio(res.TruePositives, res.TruePositives+res.FalsePositives)
	res.Recall = ratio(res.TruePositives, res.TruePositives+res.FalseNegatives)
	if sum := res.Precision + res.Recall; sum > 0 {
		res.F1 = 2 * res.Precision * res.Recall / sum
	}
	return res
}

// trueNegatives counts the universe members outside both sets. Nodes outside
// {1..universeSize} do not reduce the count.
func trueNegatives(proposed, truth community.Set, universeSize int) int {
	covered := 0
	for n := range truth.Union(proposed) {
		if n >= 1 && n <= universeSize {
			covered++
		}
	}
	return universeSize - covered
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
