package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"runscan/internal/config"
	"runscan/internal/logging"
	"runscan/internal/pipeline"
	"runscan/internal/rank"
	"runscan/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "runscan",
	Short: "runscan - longest consecutive run analyzer",
	Long: `runscan reads .txt files holding one bracketed sequence per line,
e.g. [a,a,b,c], and reports which symbols form the longest consecutive
run in each sequence. Results can be ranked by an optional provider
(local, openai, gemini) and the latest ones are kept in a local history.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := resolveWorkspace()
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "[logging] Warning: %v\n", err)
		}
		logging.Boot("runscan %s (workspace %s)", cmd.Name(), ws)

		// The interactive UI owns the terminal.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.runscan/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print results as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoRank, "no-rank", false, "Skip ranking")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record results in history")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Number of results to show (default: history.max_items)")
	historyCmd.Flags().BoolVar(&historyRaw, "raw", false, "Print markdown without terminal rendering")
	historyCmd.AddCommand(historyClearCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	ws, err := os.Getwd()
	if err != nil {
		return "."
	}
	return ws
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.Path(resolveWorkspace())
}

// loadConfig loads and validates the workspace configuration.
func loadConfig() (*config.Config, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Level != "" {
		logging.SetLevel(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.MissingAPIKey() {
		logger.Warn("Ranking provider has no API key; results keep their original order",
			zap.String("provider", cfg.Ranking.Provider))
		logging.BootWarn("ranking provider %s has no API key", cfg.Ranking.Provider)
	}
	logger.Debug("Loaded config",
		zap.String("path", path),
		zap.String("provider", cfg.Ranking.Provider),
		zap.Int("max_items", cfg.History.MaxItems))
	return cfg, nil
}

// env bundles what the commands share.
type env struct {
	cfg       *config.Config
	store     *store.HistoryStore
	processor *pipeline.Processor
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logger.Warn("Failed to close history", zap.Error(err))
		}
	}
}

// openEnv wires config, ranking and history into a processor.
func openEnv(ctx context.Context, withRanker bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	hs, err := store.Open(cfg.DatabasePath(resolveWorkspace()), cfg.History.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	p := &pipeline.Processor{
		Store:       hs,
		Workers:     cfg.Analysis.Workers,
		RankTimeout: cfg.GetRankTimeout(),
	}
	if withRanker && cfg.Ranking.Enabled() {
		r, err := rank.NewRanker(ctx, cfg)
		if err != nil {
			logger.Warn("Ranking disabled", zap.String("provider", cfg.Ranking.Provider), zap.Error(err))
			logging.RankWarn("ranker %s unavailable, continuing without ranking: %v", cfg.Ranking.Provider, err)
		} else {
			p.Ranker = r
			logger.Debug("Ranker ready", zap.String("ranker", r.Name()))
		}
	}

	return &env{cfg: cfg, store: hs, processor: p}, nil
}
