package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"runscan/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process .txt files dropped into a directory",
	Long: `Watches a drop folder and analyzes every .txt file created or written
there once it stops changing. Runs until interrupted. --timeout applies to
each file, not to the watch itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	handler := func(ctx context.Context, path string) error {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		rec, err := e.processor.ProcessFile(fctx, path)
		if err != nil {
			logger.Warn("Drop failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
		}
		if rec != nil {
			printRecord(out, rec)
		}
		return err
	}

	w, err := watch.New(args[0], e.cfg.GetWatchDebounce(), handler)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	fmt.Fprintf(out, "Watching %s for .txt files (Ctrl+C to stop)\n", w.Dir())

	<-ctx.Done()
	w.Stop()

	s := w.Stats()
	logger.Info("Watcher stopped",
		zap.Int("processed", s.Processed),
		zap.Int("errors", s.Errors),
		zap.Int("ignored", s.Ignored))
	fmt.Fprintf(out, "Processed %d files (%d failed, %d ignored)\n", s.Processed, s.Errors, s.Ignored)
	return nil
}
