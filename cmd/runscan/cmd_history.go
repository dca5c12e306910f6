package main

import (
	"context"
	"fmt"

	"runscan/cmd/runscan/ui"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRaw   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the latest results",
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored results",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	limit := historyLimit
	if limit <= 0 {
		limit = e.cfg.History.MaxItems
	}
	records, err := e.store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	md := ui.HistoryMarkdown(records, e.cfg.History.MaxItems)
	if historyRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderMarkdown(md, 100))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.store.Count(ctx)
	if err != nil {
		return err
	}
	if err := e.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d results.\n", n)
	return nil
}
