package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/metric"
	"github.com/matsen/lfreval/internal/session"
)

var evalUniverse int

func init() {
	evalCmd.Flags().IntVarP(&evalUniverse, "universe", "n", 0, "Number of nodes in the network (default: config universe_size or 10000)")
	rootCmd.AddCommand(evalCmd)
}

var evalCmd = &cobra.Command{
	Use:   "eval <ground-truth> <node> <proposed>",
	Short: "Score a proposed community against the node's true community",
	Long: `Score a proposed community file against the ground-truth community of a node.

Reports the symmetric difference, precision, recall and F1. An empty proposed
community scores zero everywhere.

Examples:
  lfreval eval data/LFR_10000/0.05/community.txt 9525 kcore_k10.txt
  lfreval eval community.txt 9525 kcore_k10.txt --universe 1000 --human`,
	Args: cobra.ExactArgs(3),
	RunE: runEval,
}

// EvalResult is the response for the eval command.
type EvalResult struct {
	Node                int     `json:"node"`
	Proposed            string  `json:"proposed"`
	UniverseSize        int     `json:"universe_size"`
	TrueSize            int     `json:"true_size"`
	ProposedSize        int     `json:"proposed_size"`
	SymmetricDifference []int   `json:"symmetric_difference"`
	Precision           float64 `json:"precision"`
	Recall              float64 `json:"recall"`
	F1                  float64 `json:"f1"`
	TruePositives       int     `json:"true_positives"`
	FalsePositives      int     `json:"false_positives"`
	FalseNegatives      int     `json:"false_negatives"`
	TrueNegatives       int     `json:"true_negatives"`
}

func runEval(cmd *cobra.Command, args []string) error {
	node, err := strconv.Atoi(args[1])
	if err != nil {
		exitWithError(ExitError, "invalid node %q: must be an integer", args[1])
	}
	cfg := mustLoadGlobalConfig()

	sess, err := session.Open(args[0], universeFor(evalUniverse, cfg))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	ev, err := sess.Evaluate(node, args[2])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	result := newEvalResult(ev, args[2], sess.UniverseSize())
	if humanOutput {
		printEvalHuman(result, ev.Result)
		return nil
	}
	return outputJSON(result)
}

func newEvalResult(ev session.Evaluation, proposed string, universe int) EvalResult {
	return EvalResult{
		Node:                ev.Node,
		Proposed:            proposed,
		UniverseSize:        universe,
		TrueSize:            ev.TrueSize,
		ProposedSize:        ev.ProposedSize,
		SymmetricDifference: ev.SymmetricDifference.Sorted(),
		Precision:           ev.Precision,
		Recall:              ev.Recall,
		F1:                  ev.F1,
		TruePositives:       ev.TruePositives,
		FalsePositives:      ev.FalsePositives,
		FalseNegatives:      ev.FalseNegatives,
		TrueNegatives:       ev.TrueNegatives,
	}
}

func printEvalHuman(r EvalResult, res metric.Result) {
	outputHuman("node %d vs %s\n", r.Node, r.Proposed)
	outputHuman("  true size:     %d\n", r.TrueSize)
	outputHuman("  proposed size: %d\n", r.ProposedSize)
	outputHuman("  precision:     %.4f\n", r.Precision)
	outputHuman("  recall:        %.4f\n", r.Recall)
	outputHuman("  f1:            %.4f\n", r.F1)
	outputHuman("  sym diff:      %s\n", formatMembers(res.SymmetricDifference, MaxHumanMembers))
}
