// Package main provides the lfreval CLI entry point.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/config"
	"github.com/matsen/lfreval/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	quiet       bool
)

// logger writes progress and diagnostics to stderr.
var logger = zerolog.Nop()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lfreval",
	Short: "Evaluate community search results on LFR benchmark graphs",
	Long: `lfreval scores discovered communities against LFR ground truth.

Core features:
  - Graph and community file sizing
  - Ground-truth community lookup for a query node
  - Precision, recall and F1 of a proposed community
  - Parameter sweeps over k with HTML and XLSX reports

Sweep runs are appended to a JSONL log with an ephemeral SQLite cache for queries.
All commands output JSON by default for agent integration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.Version = Version
}

// setup loads .env and configures logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()
	logger = newLogger(os.Stderr, verbose, quiet)
	return nil
}

// newLogger returns a console logger at the level selected by the flags.
func newLogger(w io.Writer, verbose, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}

// mustLoadGlobalConfig loads the global config, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite results cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(path string) *storage.DB {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// universeFor picks the universe size: flag, then config, then the default.
func universeFor(flagValue int, cfg *config.GlobalConfig) int {
	if flagValue > 0 {
		return flagValue
	}
	return cfg.UniverseSize
}
