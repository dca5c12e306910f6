package main

import (
	"fmt"

	"runscan/cmd/runscan/ui"
	"runscan/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	styles := ui.NewStyles(ui.ThemeFor(e.cfg.UI.IsDark(ui.DetectDark)))
	model := ui.NewModel(ui.Options{
		Processor: e.processor,
		History:   e.store,
		Limit:     e.cfg.History.MaxItems,
		StartDir:  resolveWorkspace(),
		Styles:    styles,
		Context:   ctx,
	})

	logging.UI("Starting interactive UI")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("interactive UI failed: %w", err)
	}
	return nil
}
