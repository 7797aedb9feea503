package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/community"
)

var sizeDelimiter string

func init() {
	sizeCmd.Flags().StringVarP(&sizeDelimiter, "delimiter", "d", community.DefaultDelimiter, "Field delimiter between the two node IDs")
	rootCmd.AddCommand(sizeCmd)
}

var sizeCmd = &cobra.Command{
	Use:   "size <file>",
	Short: "Count distinct nodes and records in an edge-list or community file",
	Long: `Count the distinct node IDs and the number of records in a pair-per-line file.

Reading stops at the first blank line or at a line containing -1.

Examples:
  lfreval size network.dat --delimiter $'\t'
  lfreval size data/com_search/LFR005/9525/kcore_k10.txt --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSize,
}

// SizeResult is the response for the size command.
type SizeResult struct {
	Path  string `json:"path"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

func runSize(cmd *cobra.Command, args []string) error {
	path := args[0]
	nodes, edges, err := community.GraphSize(path, sizeDelimiter)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("%s: %d nodes, %d edges\n", path, nodes, edges)
		return nil
	}
	return outputJSON(SizeResult{Path: path, Nodes: nodes, Edges: edges})
}
