package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/config"
	"github.com/matsen/lfreval/internal/export"
	"github.com/matsen/lfreval/internal/session"
	"github.com/matsen/lfreval/internal/storage"
	"github.com/matsen/lfreval/internal/sweep"
	"github.com/matsen/lfreval/internal/telemetry"
	"github.com/matsen/lfreval/internal/viz"
)

var (
	sweepDB          string
	sweepJSONL       string
	sweepHTML        string
	sweepXLSX        string
	sweepMetricsFile string
	sweepTitle       string
	sweepMetrics     []string
	sweepWorkers     int
	sweepNoSave      bool
)

func init() {
	sweepCmd.Flags().StringVar(&sweepDB, "db", "", "SQLite results cache (default: config results_db)")
	sweepCmd.Flags().StringVar(&sweepJSONL, "jsonl", "", "JSONL run log (default: config results_jsonl)")
	sweepCmd.Flags().StringVar(&sweepHTML, "html", "", "Write an HTML chart of the sweep to this file")
	sweepCmd.Flags().StringVar(&sweepXLSX, "xlsx", "", "Write an XLSX workbook of the sweep to this file")
	sweepCmd.Flags().StringVar(&sweepMetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this file")
	sweepCmd.Flags().StringVar(&sweepTitle, "title", "", "Chart title (default: derived from the plan)")
	sweepCmd.Flags().StringSliceVar(&sweepMetrics, "metric", nil, "Curves to plot: precision, recall, f1 (default: all)")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "Parallel evaluations (default: plan, then config, then 4)")
	sweepCmd.Flags().BoolVar(&sweepNoSave, "no-save", false, "Do not record the run in the JSONL log and SQLite cache")
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <plan.yml>",
	Short: "Evaluate query nodes across a range of k values",
	Long: `Evaluate every (query node, k) combination listed in a sweep plan.

The plan is a YAML file:

  name: kcore-lfr005
  ground_truth: data/LFR_10000/0.05/community.txt
  universe_size: 10000
  mixing: "05"
  query_nodes: [9525, 9002, 8808, 6789]
  k: {from: 10, to: 25}
  proposed_path: "data/com_search/LFR0{mixing}/{node}/kcore_k{k}.txt"
  workers: 4

Relative paths resolve against data_root when configured, else the plan's directory.
A missing or malformed proposed file fails only its own point.

Examples:
  lfreval sweep kcore.yml --html kcore.html
  lfreval sweep kcore.yml --xlsx kcore.xlsx --metrics-file lfreval.prom --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

// SweepResult is the response for the sweep command.
type SweepResult struct {
	RunID       string      `json:"run_id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Evaluations int         `json:"evaluations"`
	Failures    int         `json:"failures"`
	DurationMS  int64       `json:"duration_ms"`
	Best        []BestPoint `json:"best"`
	Outputs     []string    `json:"outputs,omitempty"`
}

// BestPoint is the k with the highest F1 for one node.
type BestPoint struct {
	Node      int     `json:"node"`
	K         int     `json:"k"`
	F1        float64 `json:"f1"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := mustLoadGlobalConfig()

	var (
		plan *sweep.Plan
		err  error
	)
	if cfg.DataRoot != "" {
		plan, err = sweep.LoadPlanFrom(args[0], cfg.DataRoot)
	} else {
		plan, err = sweep.LoadPlan(args[0])
	}
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if plan.UniverseSize == 0 {
		plan.UniverseSize = cfg.UniverseSize
	}
	if plan.Workers == 0 {
		plan.Workers = cfg.Workers
	}

	sess, err := session.Open(plan.GroundTruth, plan.UniverseSize)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	logger.Debug().
		Str("ground_truth", plan.GroundTruth).
		Int("nodes", sess.Index().Len()).
		Int("communities", sess.Index().NumCommunities()).
		Msg("Loaded ground truth")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	metrics := telemetry.New()
	report, err := sweep.Run(ctx, sess, plan, sweep.Options{
		Workers: sweepWorkers,
		Logger:  &logger,
		Metrics: metrics,
	})
	if err != nil {
		if ctx.Err() != nil {
			exitWithError(ExitError, "sweep interrupted: %v", context.Cause(ctx))
		}
		exitWithError(ExitError, "running sweep: %v", err)
	}

	result := SweepResult{
		Name:        report.Name,
		Evaluations: report.Evaluations,
		Failures:    report.Failures,
		DurationMS:  report.Duration.Milliseconds(),
		Best:        bestPoints(report),
	}

	if !sweepNoSave {
		result.RunID = saveRun(cfg, report)
	}
	result.Outputs = writeSweepOutputs(report, metrics)

	if humanOutput {
		printSweepHuman(result)
		return nil
	}
	return outputJSON(result)
}

// saveRun appends the report to the JSONL log and caches it in SQLite.
func saveRun(cfg *config.GlobalConfig, report *sweep.Report) string {
	jsonlPath := sweepJSONL
	if jsonlPath == "" {
		jsonlPath = cfg.ResultsJSONLPath()
	}
	dbPath := sweepDB
	if dbPath == "" {
		dbPath = cfg.ResultsDBPath()
	}

	run := storage.NewRun(report)
	db := mustOpenDatabase(dbPath)
	defer db.Close()

	if err := os.MkdirAll(filepath.Dir(jsonlPath), 0755); err != nil {
		exitWithError(ExitError, "creating log directory: %v", err)
	}
	if err := storage.AppendRun(jsonlPath, run); err != nil {
		exitWithError(ExitError, "recording run: %v", err)
	}
	if err := db.SaveRun(run); err != nil {
		exitWithError(ExitError, "caching run: %v", err)
	}
	logger.Info().Str("run_id", run.ID).Str("log", jsonlPath).Msg("Recorded run")
	return run.ID
}

// writeSweepOutputs writes the optional report files and returns their paths.
func writeSweepOutputs(report *sweep.Report, metrics *telemetry.Metrics) []string {
	var outputs []string

	if sweepHTML != "" {
		opts := viz.DefaultOptions()
		opts.Title = sweepTitle
		if len(sweepMetrics) > 0 {
			opts.Metrics = sweepMetrics
		}
		html, err := viz.GenerateHTML(report, opts)
		if err != nil {
			exitWithError(ExitError, "generating HTML: %v", err)
		}
		if err := os.WriteFile(sweepHTML, []byte(html), 0644); err != nil {
			exitWithError(ExitError, "writing output file: %v", err)
		}
		outputs = append(outputs, sweepHTML)
	}

	if sweepXLSX != "" {
		if err := export.WriteXLSX(report, sweepXLSX); err != nil {
			exitWithError(ExitError, "writing workbook: %v", err)
		}
		outputs = append(outputs, sweepXLSX)
	}

	if sweepMetricsFile != "" {
		if err := metrics.WriteTextfile(sweepMetricsFile); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		outputs = append(outputs, sweepMetricsFile)
	}

	return outputs
}

func bestPoints(report *sweep.Report) []BestPoint {
	best := make([]BestPoint, 0, len(report.Series))
	for _, s := range report.Series {
		p, ok := s.Best()
		if !ok {
			continue
		}
		best = append(best, BestPoint{Node: s.Node, K: p.K, F1: p.F1, Precision: p.Precision, Recall: p.Recall})
	}
	return best
}

func printSweepHuman(r SweepResult) {
	if r.RunID != "" {
		outputHuman("Run %s\n", r.RunID)
	}
	outputHuman("%d evaluations, %d failed, %s\n", r.Evaluations, r.Failures, formatMillis(r.DurationMS))
	for _, b := range r.Best {
		outputHuman("  node %-6d best k = %-3d f1 %.4f (p %.4f, r %.4f)\n", b.Node, b.K, b.F1, b.Precision, b.Recall)
	}
	for _, out := range r.Outputs {
		outputHuman("Wrote %s\n", out)
	}
}

func formatMillis(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}
