// Package config handles global configuration for lfreval.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/lfreval/config.yml.
type GlobalConfig struct {
	DataRoot     string `yaml:"data_root,omitempty"`     // Base directory for relative sweep paths
	UniverseSize int    `yaml:"universe_size,omitempty"` // Default network order
	ResultsDB    string `yaml:"results_db,omitempty"`    // SQLite query cache
	ResultsJSONL string `yaml:"results_jsonl,omitempty"` // Append-only run log
	Workers      int    `yaml:"workers,omitempty"`       // Default sweep parallelism
}

const (
	// AppDir is the directory name under XDG_CONFIG_HOME and XDG_DATA_HOME.
	AppDir = "lfreval"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DefaultResultsDB is the cache file name under the data directory.
	DefaultResultsDB = "results.db"
	// DefaultResultsJSONL is the run log file name under the data directory.
	DefaultResultsJSONL = "runs.jsonl"
)

// Environment variables that override the config file.
const (
	EnvDataRoot     = "LFREVAL_DATA_ROOT"
	EnvUniverseSize = "LFREVAL_UNIVERSE_SIZE"
	EnvResultsDB    = "LFREVAL_RESULTS_DB"
	EnvResultsJSONL = "LFREVAL_RESULTS_JSONL"
	EnvWorkers      = "LFREVAL_WORKERS"
)

// ValidKeys lists the keys accepted by Set.
var ValidKeys = []string{"data_root", "universe_size", "results_db", "results_jsonl", "workers"}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/lfreval/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppDir, GlobalConfigFile)
}

// DataDir returns the directory holding the results cache and run log.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/lfreval.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppDir)
}

// LoadDotEnv loads a .env file from the working directory if present.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadGlobalConfig loads the global configuration file and applies environment overrides.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

// readGlobalConfig parses the config file at path without environment overrides.
func readGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.expandPaths()
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// applyEnv overrides fields with LFREVAL_* environment variables.
func (c *GlobalConfig) applyEnv() error {
	if v := os.Getenv(EnvDataRoot); v != "" {
		c.DataRoot = v
	}
	if v := os.Getenv(EnvResultsDB); v != "" {
		c.ResultsDB = v
	}
	if v := os.Getenv(EnvResultsJSONL); v != "" {
		c.ResultsJSONL = v
	}
	if v := os.Getenv(EnvUniverseSize); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUniverseSize, err)
		}
		c.UniverseSize = n
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	c.expandPaths()
	return nil
}

func (c *GlobalConfig) expandPaths() {
	c.DataRoot = ExpandPath(c.DataRoot)
	c.ResultsDB = ExpandPath(c.ResultsDB)
	c.ResultsJSONL = ExpandPath(c.ResultsJSONL)
}

// ResultsDBPath returns the configured SQLite path or the default under DataDir.
func (c *GlobalConfig) ResultsDBPath() string {
	if c.ResultsDB != "" {
		return c.ResultsDB
	}
	return filepath.Join(DataDir(), DefaultResultsDB)
}

// ResultsJSONLPath returns the configured run log path or the default under DataDir.
func (c *GlobalConfig) ResultsJSONLPath() string {
	if c.ResultsJSONL != "" {
		return c.ResultsJSONL
	}
	return filepath.Join(DataDir(), DefaultResultsJSONL)
}

// Get returns the value of a config key as a string.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "data_root":
		return c.DataRoot, nil
	case "universe_size":
		return intOrEmpty(c.UniverseSize), nil
	case "results_db":
		return c.ResultsDB, nil
	case "results_jsonl":
		return c.ResultsJSONL, nil
	case "workers":
		return intOrEmpty(c.Workers), nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(ValidKeys, ", "))
	}
}

// Set validates and assigns a config key.
func (c *GlobalConfig) Set(key, value string) error {
	switch key {
	case "data_root":
		c.DataRoot = ExpandPath(value)
	case "results_db":
		c.ResultsDB = ExpandPath(value)
	case "results_jsonl":
		c.ResultsJSONL = ExpandPath(value)
	case "universe_size", "workers":
		n, err := parsePositive(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if key == "workers" {
			c.Workers = n
		} else {
			c.UniverseSize = n
		}
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(ValidKeys, ", "))
	}
	return nil
}

// SaveGlobalConfig writes the file values of cfg to path, creating parent directories.
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ResetGlobalConfigCache()
	return nil
}

// ReadGlobalConfigFile reads the config file only, ignoring environment overrides.
// Used when editing the file so that overrides are not persisted.
func ReadGlobalConfigFile() (*GlobalConfig, error) {
	return readGlobalConfig(GlobalConfigPath())
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
