package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "RUNSCAN_RANK_PROVIDER",
		"RUNSCAN_RANK_MODEL", "RUNSCAN_DB", "RUNSCAN_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "runscan", cfg.Name)
	assert.Equal(t, ProviderLocal, cfg.Ranking.Provider)
	assert.Equal(t, 5, cfg.History.MaxItems)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := Path(t.TempDir())
	cfg := DefaultConfig()
	cfg.Ranking.Provider = ProviderOpenAI
	cfg.Ranking.APIKey = "sk-test"
	cfg.History.MaxItems = 10
	cfg.Logging.Categories = map[string]bool{"rank": false}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, loaded.Ranking.Provider)
	assert.Equal(t, "sk-test", loaded.Ranking.APIKey)
	assert.Equal(t, 10, loaded.History.MaxItems)
	assert.False(t, loaded.Logging.Categories["rank"])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  max_items: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.History.MaxItems)
	assert.Equal(t, filepath.Join(Dir, "history.db"), cfg.History.DatabasePath)
	assert.Equal(t, ProviderLocal, cfg.Ranking.Provider)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("OPENAI_API_KEY selects openai over local", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, ProviderOpenAI, cfg.Ranking.Provider)
		assert.Equal(t, "oa-key", cfg.Ranking.APIKey)
	})

	t.Run("GEMINI_API_KEY does not replace an explicit openai choice", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.Ranking.Provider = ProviderOpenAI
		cfg.Ranking.APIKey = "from-file"
		cfg.applyEnvOverrides()

		assert.Equal(t, ProviderOpenAI, cfg.Ranking.Provider)
		assert.Equal(t, "from-file", cfg.Ranking.APIKey)
	})

	t.Run("RUNSCAN_RANK_PROVIDER wins and picks the matching key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")
		t.Setenv("RUNSCAN_RANK_PROVIDER", "Gemini")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, ProviderGemini, cfg.Ranking.Provider)
		assert.Equal(t, "gm-key", cfg.Ranking.APIKey)
	})

	t.Run("model, db and log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RUNSCAN_RANK_MODEL", "gpt-4o-mini")
		t.Setenv("RUNSCAN_DB", "/tmp/h.db")
		t.Setenv("RUNSCAN_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gpt-4o-mini", cfg.Ranking.Model)
		assert.Equal(t, "/tmp/h.db", cfg.History.DatabasePath)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"none", func(c *Config) { c.Ranking.Provider = ProviderNone }, ""},
		{"unknown provider", func(c *Config) { c.Ranking.Provider = "zai" }, "invalid ranking provider"},
		{"remote without key", func(c *Config) { c.Ranking.Provider = ProviderGemini }, ""},
		{"remote with key", func(c *Config) { c.Ranking.Provider = ProviderGemini; c.Ranking.APIKey = "k" }, ""},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, "analysis.workers"},
		{"empty db path", func(c *Config) { c.History.DatabasePath = "" }, "database_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ranking.Timeout = "bogus"
	cfg.Watch.Debounce = "2s"
	assert.Equal(t, 30*time.Second, cfg.GetRankTimeout())
	assert.Equal(t, 2*time.Second, cfg.GetWatchDebounce())
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/ws", Dir, "history.db"), cfg.DatabasePath("/ws"))

	cfg.History.DatabasePath = "/abs/h.db"
	assert.Equal(t, "/abs/h.db", cfg.DatabasePath("/ws"))
}

func TestUIConfig_IsDark(t *testing.T) {
	yes := func() bool { return true }
	assert.True(t, UIConfig{Theme: "dark"}.IsDark(nil))
	assert.False(t, UIConfig{Theme: "light"}.IsDark(yes))
	assert.True(t, UIConfig{Theme: "auto"}.IsDark(yes))
	assert.False(t, UIConfig{}.IsDark(nil))
}

func TestConfig_MissingAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.MissingAPIKey())

	cfg.Ranking.Provider = ProviderOpenAI
	cfg.Ranking.APIKey = ""
	assert.True(t, cfg.MissingAPIKey())
	assert.NoError(t, cfg.Validate())

	cfg.Ranking.APIKey = "sk-test"
	assert.False(t, cfg.MissingAPIKey())
}
