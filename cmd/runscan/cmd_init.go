package main

import (
	"fmt"
	"os"

	"runscan/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration for this workspace",
	Long: `Creates .runscan/config.yaml with default settings. API keys are best
left out of the file and supplied through OPENAI_API_KEY or GEMINI_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return err
	}
	logger.Info("Wrote default config", zap.String("path", path))
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
