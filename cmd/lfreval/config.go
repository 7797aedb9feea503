package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/lfreval/internal/config"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set global configuration values",
	Long: `Get or set values in ~/.config/lfreval/config.yml.

Keys:
  data_root      Base directory for relative paths in sweep plans
  universe_size  Default number of nodes in the benchmark network
  results_db     SQLite results cache
  results_jsonl  JSONL run log
  workers        Default sweep parallelism

Environment variables LFREVAL_DATA_ROOT, LFREVAL_UNIVERSE_SIZE, LFREVAL_RESULTS_DB,
LFREVAL_RESULTS_JSONL and LFREVAL_WORKERS override the file, and may be set in .env.

Examples:
  lfreval config get
  lfreval config get universe_size
  lfreval config set data_root ~/re/lfr-data`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show effective configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GlobalConfigPath()
		if humanOutput {
			outputHuman("%s\n", path)
			return nil
		}
		return outputJSON(StatusResponse{Status: "ok", Path: path})
	},
}

// ConfigResponse is the response for config get.
type ConfigResponse struct {
	DataRoot     string `json:"data_root,omitempty"`
	UniverseSize int    `json:"universe_size,omitempty"`
	ResultsDB    string `json:"results_db"`
	ResultsJSONL string `json:"results_jsonl"`
	Workers      int    `json:"workers,omitempty"`
}

// ConfigValueResponse is the response for a single config key.
type ConfigValueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadGlobalConfig()

	if len(args) == 1 {
		value, err := cfg.Get(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", value)
			return nil
		}
		return outputJSON(ConfigValueResponse{Key: args[0], Value: value})
	}

	resp := ConfigResponse{
		DataRoot:     cfg.DataRoot,
		UniverseSize: cfg.UniverseSize,
		ResultsDB:    cfg.ResultsDBPath(),
		ResultsJSONL: cfg.ResultsJSONLPath(),
		Workers:      cfg.Workers,
	}
	if humanOutput {
		outputHuman("data_root:     %s\n", resp.DataRoot)
		outputHuman("universe_size: %d\n", resp.UniverseSize)
		outputHuman("results_db:    %s\n", resp.ResultsDB)
		outputHuman("results_jsonl: %s\n", resp.ResultsJSONL)
		outputHuman("workers:       %d\n", resp.Workers)
		return nil
	}
	return outputJSON(resp)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Edit the file values only so environment overrides are not persisted.
	cfg, err := config.ReadGlobalConfigFile()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	path := config.GlobalConfigPath()
	if err := config.SaveGlobalConfig(path, cfg); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	value, _ := cfg.Get(args[0])
	if humanOutput {
		outputHuman("Set %s = %s\n", args[0], value)
		return nil
	}
	return outputJSON(ConfigValueResponse{Key: args[0], Value: value})
}
