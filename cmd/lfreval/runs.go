package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/config"
	"github.com/matsen/lfreval/internal/storage"
)

var (
	runsDB    string
	runsJSONL string
	runsNode  int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "", "SQLite results cache (default: config results_db)")
	runsRebuildCmd.Flags().StringVar(&runsJSONL, "jsonl", "", "JSONL run log (default: config results_jsonl)")
	runsShowCmd.Flags().IntVar(&runsNode, "node", 0, "Only show points of this query node")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsBestCmd)
	runsCmd.AddCommand(runsRebuildCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query recorded sweep runs",
	Long: `Query sweep runs recorded in the SQLite results cache.

The JSONL run log is the source of truth; use 'lfreval runs rebuild' to
regenerate the cache from it.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the points of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsBestCmd = &cobra.Command{
	Use:   "best <run-id>",
	Short: "Show the k with the highest F1 for each node of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsBest,
}

var runsRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the results cache from the JSONL run log",
	Long: `Rebuild the SQLite results cache from the JSONL run log.

Use this after pulling a log from git or if the database becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRunsRebuild,
}

// RunsListResult is the response for runs list.
type RunsListResult struct {
	Runs  []storage.RunSummary `json:"runs"`
	Count int                  `json:"count"`
}

// RunShowResult is the response for runs show and runs best.
type RunShowResult struct {
	Run    storage.RunSummary `json:"run"`
	Points []storage.PointRow `json:"points"`
}

// RebuildResult is the response for runs rebuild.
type RebuildResult struct {
	Status string `json:"status"`
	Runs   int    `json:"runs"`
}

func openRunsDB(cfg *config.GlobalConfig) *storage.DB {
	path := runsDB
	if path == "" {
		path = cfg.ResultsDBPath()
	}
	return mustOpenDatabase(path)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	db := openRunsDB(mustLoadGlobalConfig())
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}

	if humanOutput {
		if len(runs) == 0 {
			outputHuman("No runs recorded\n")
			return nil
		}
		for _, r := range runs {
			outputHuman("%s  %s  %-20s %4d evals %3d failed\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), displayName(r), r.Evaluations, r.Failures)
		}
		return nil
	}
	return outputJSON(RunsListResult{Runs: runs, Count: len(runs)})
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	db := openRunsDB(mustLoadGlobalConfig())
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	points, err := db.GetRunPoints(args[0], runsNode)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	return outputRunPoints(run, points)
}

func runRunsBest(cmd *cobra.Command, args []string) error {
	db := openRunsDB(mustLoadGlobalConfig())
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	best, err := db.BestK(args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	return outputRunPoints(run, best)
}

func outputRunPoints(run storage.RunSummary, points []storage.PointRow) error {
	if points == nil {
		points = []storage.PointRow{}
	}
	if !humanOutput {
		return outputJSON(RunShowResult{Run: run, Points: points})
	}

	outputHuman("%s (%s)\n", displayName(run), run.ID)
	outputHuman("%-8s %4s %9s %9s %9s %6s %6s\n", "node", "k", "precision", "recall", "f1", "|T|", "|P|")
	for _, p := range points {
		if p.Failed() {
			outputHuman("%-8d %4d  failed: %s\n", p.Node, p.K, p.Error)
			continue
		}
		outputHuman("%-8d %4d %9.4f %9.4f %9.4f %6d %6d\n",
			p.Node, p.K, p.Precision, p.Recall, p.F1, p.TrueSize, p.ProposedSize)
	}
	return nil
}

func runRunsRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadGlobalConfig()
	jsonlPath := runsJSONL
	if jsonlPath == "" {
		jsonlPath = cfg.ResultsJSONLPath()
	}

	db := openRunsDB(cfg)
	defer db.Close()

	count, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding results database: %v", err)
	}

	if humanOutput {
		outputHuman("Rebuilt results database with %d runs\n", count)
		return nil
	}
	return outputJSON(RebuildResult{Status: "rebuilt", Runs: count})
}

func displayName(r storage.RunSummary) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Mixing != "" {
		return "LFR0." + r.Mixing
	}
	return "(unnamed)"
}
