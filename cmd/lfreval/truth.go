package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/groundtruth"
)

func init() {
	rootCmd.AddCommand(truthCmd)
}

var truthCmd = &cobra.Command{
	Use:   "truth <ground-truth> <node>",
	Short: "Print the ground-truth community of a node",
	Long: `Print the ground-truth community containing a query node.

The ground-truth file has one "node<TAB>community" record per line.

Examples:
  lfreval truth data/LFR_10000/0.05/community.txt 9525`,
	Args: cobra.ExactArgs(2),
	RunE: runTruth,
}

// TruthResult is the response for the truth command.
type TruthResult struct {
	Node      int   `json:"node"`
	Community int   `json:"community"`
	Size      int   `json:"size"`
	Members   []int `json:"members"`
}

func runTruth(cmd *cobra.Command, args []string) error {
	node, err := strconv.Atoi(args[1])
	if err != nil {
		exitWithError(ExitError, "invalid node %q: must be an integer", args[1])
	}

	idx, err := groundtruth.Build(args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	members, err := idx.TrueCommunity(node)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	com, _ := idx.CommunityOf(node)

	logger.Debug().
		Int("nodes", idx.Len()).
		Int("communities", idx.NumCommunities()).
		Msg("Loaded ground truth")

	if humanOutput {
		outputHuman("node %d is in community %d (%d members)\n", node, com, members.Len())
		outputHuman("  %s\n", formatMembers(members, MaxHumanMembers))
		return nil
	}
	return outputJSON(TruthResult{
		Node:      node,
		Community: com,
		Size:      members.Len(),
		Members:   members.Sorted(),
	})
}
