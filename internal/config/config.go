package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the per-workspace directory holding config, history and logs.
	Dir = ".runscan"

	// FileName is the config file inside Dir.
	FileName = "config.yaml"
)

// Config holds all runscan configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Ranking collaborator
	Ranking RankingConfig `yaml:"ranking"`

	// History store
	History HistoryConfig `yaml:"history"`

	// Run analysis
	Analysis AnalysisConfig `yaml:"analysis"`

	// Drop folder watcher
	Watch WatchConfig `yaml:"watch"`

	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

// HistoryConfig configures the result history.
type HistoryConfig struct {
	// DatabasePath is relative to the workspace unless absolute.
	DatabasePath string `yaml:"database_path"`

	// MaxItems is how many results are kept; <= 0 keeps everything.
	MaxItems int `yaml:"max_items"`
}

// AnalysisConfig configures batch analysis.
type AnalysisConfig struct {
	// Workers bounds concurrent sequence analyses; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// WatchConfig configures the drop folder watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "runscan",
		Version: "1.0.0",

		Ranking: RankingConfig{
			Provider: ProviderLocal,
			Timeout:  "30s",
		},

		History: HistoryConfig{
			DatabasePath: filepath.Join(Dir, "history.db"),
			MaxItems:     5,
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},

		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, Dir, FileName)
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API keys select their provider unless one was chosen explicitly.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.Ranking.Provider == "" || c.Ranking.Provider == ProviderLocal || c.Ranking.Provider == ProviderOpenAI {
			c.Ranking.APIKey = key
			c.Ranking.Provider = ProviderOpenAI
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if c.Ranking.Provider == "" || c.Ranking.Provider == ProviderLocal || c.Ranking.Provider == ProviderGemini {
			c.Ranking.APIKey = key
			c.Ranking.Provider = ProviderGemini
		}
	}

	if p := os.Getenv("RUNSCAN_RANK_PROVIDER"); p != "" {
		c.Ranking.Provider = strings.ToLower(p)
		switch c.Ranking.Provider {
		case ProviderOpenAI:
			if key := os.Getenv("OPENAI_API_KEY"); key != "" {
				c.Ranking.APIKey = key
			}
		case ProviderGemini:
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				c.Ranking.APIKey = key
			}
		}
	}
	if m := os.Getenv("RUNSCAN_RANK_MODEL"); m != "" {
		c.Ranking.Model = m
	}
	if path := os.Getenv("RUNSCAN_DB"); path != "" {
		c.History.DatabasePath = path
	}
	if level := os.Getenv("RUNSCAN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetRankTimeout returns the ranking timeout as a duration.
func (c *Config) GetRankTimeout() time.Duration {
	d, err := time.ParseDuration(c.Ranking.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// DatabasePath resolves the history database against the workspace.
func (c *Config) DatabasePath(workspace string) string {
	if filepath.IsAbs(c.History.DatabasePath) {
		return c.History.DatabasePath
	}
	return filepath.Join(workspace, c.History.DatabasePath)
}

// MissingAPIKey reports whether the configured provider needs a key that is
// not set. Ranking is advisory, so this is a warning rather than a
// validation error.
func (c *Config) MissingAPIKey() bool {
	return c.Ranking.NeedsAPIKey() && c.Ranking.APIKey == ""
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !isValidProvider(c.Ranking.Provider) {
		return fmt.Errorf("invalid ranking provider: %s (valid: %v)", c.Ranking.Provider, ValidProviders)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers)
	}
	if c.History.DatabasePath == "" {
		return fmt.Errorf("history.database_path must be set")
	}
	return nil
}
