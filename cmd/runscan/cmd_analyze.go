package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"runscan/internal/input"
	"runscan/internal/pipeline"
	"runscan/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeJSON   bool
	analyzeNoRank bool
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.txt>...",
	Short: "Analyze one or more .txt files",
	Long: `Parses every line of each file as a sequence and prints, per sequence,
the symbols that form the longest consecutive run. Results are ranked
with the configured provider and recorded in history.

Example:
  runscan analyze samples.txt
  runscan analyze --json --no-rank a.txt b.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	e, err := openEnv(ctx, !analyzeNoRank)
	if err != nil {
		return err
	}
	defer e.Close()
	if analyzeNoSave {
		e.processor.Store = nil
	}

	out := cmd.OutOrStdout()
	var records []*store.Record
	failed := 0
	for _, path := range args {
		logger.Info("Processing file", zap.String("path", path))
		rec, err := e.processor.ProcessFile(ctx, path)
		if err != nil {
			failed++
			logger.Warn("File failed", zap.String("path", path), zap.Error(err),
				zap.Bool("user_error", pipeline.IsUserError(err)))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			// A history failure still produced a result worth showing.
			if rec == nil {
				continue
			}
		}
		records = append(records, rec)
	}

	if analyzeJSON {
		if records == nil {
			records = []*store.Record{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		for _, rec := range records {
			printRecord(out, rec)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func printRecord(w io.Writer, rec *store.Record) {
	fmt.Fprintln(w, rec.FileName)
	fmt.Fprintf(w, "  Input:           [%s]\n", input.FormatAll(rec.Input))
	fmt.Fprintf(w, "  Original Output: [%s]\n", input.FormatAll(rec.Output))
	if rec.SortedOutput != nil {
		fmt.Fprintf(w, "  Ranked Output:   [%s] (%s)\n", input.FormatAll(rec.SortedOutput), rec.Ranker)
	}
	fmt.Fprintln(w)
}
