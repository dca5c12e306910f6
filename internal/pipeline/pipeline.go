// Package pipeline wires input parsing, run analysis, ranking and history
// into a single per-file operation shared by the CLI, the TUI and the
// drop folder watcher.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"runscan/internal/input"
	"runscan/internal/logging"
	"runscan/internal/rank"
	"runscan/internal/runs"
	"runscan/internal/store"

	"github.com/google/uuid"
)

// slowProcess is when a single file is logged as slow.
const slowProcess = 10 * time.Second

// Saver persists processed records.
type Saver interface {
	Save(ctx context.Context, rec *store.Record) error
}

// Processor turns one uploaded file into a history record.
type Processor struct {
	// Ranker is optional; nil skips ranking.
	Ranker rank.Ranker
	// Store is optional; nil skips persistence.
	Store Saver
	// Workers bounds concurrent sequence analyses.
	Workers int
	// RankTimeout bounds the ranking call; 0 leaves it to the ranker.
	RankTimeout time.Duration
}

// ProcessFile reads and processes the file at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*store.Record, error) {
	logging.PipelineDebug("ProcessFile: %s", path)
	seqs, err := input.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, filepath.Base(path), seqs)
}

// Process validates name, parses content, analyzes every sequence, ranks
// the outputs and records the result.
func (p *Processor) Process(ctx context.Context, name, content string) (*store.Record, error) {
	if err := input.ValidateFileName(name); err != nil {
		logging.PipelineWarn("rejected %s: %v", name, err)
		return nil, err
	}
	logging.Pipeline("processing upload %s (%d bytes)", name, len(content))
	return p.process(ctx, name, input.ParseSequences(content))
}

func (p *Processor) process(ctx context.Context, name string, seqs [][]string) (*store.Record, error) {
	reqLog := logging.WithRequestID(logging.CategoryPipeline, uuid.NewString()[:8]).WithField("file", name)
	timer := logging.StartTimer(logging.CategoryPipeline, "Process")
	defer timer.StopWithThreshold(slowProcess)

	if len(seqs) == 0 {
		reqLog.Warn("rejected: no sequences")
		return nil, fmt.Errorf("%s: %w", name, input.ErrNoInput)
	}
	reqLog.Debug("parsed %d sequences", len(seqs))

	analyses, err := runs.AnalyzeAll(ctx, seqs, p.Workers)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", name, err)
	}
	longest := 0
	for _, a := range analyses {
		longest = max(longest, a.MaxLength)
	}
	reqLog.WithField("longest_run", longest).Debug("analyzed %d sequences", len(analyses))
	rec := &store.Record{
		FileName: name,
		Input:    seqs,
		Output:   runs.Symbols(analyses),
	}

	if p.Ranker != nil {
		rctx := ctx
		if p.RankTimeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, p.RankTimeout)
			defer cancel()
		}
		if sorted, ok := rank.BestEffort(rctx, p.Ranker, rec.Output); ok {
			rec.SortedOutput = sorted
			rec.Ranker = p.Ranker.Name()
		}
	}

	if p.Store != nil {
		if err := p.Store.Save(ctx, rec); err != nil {
			reqLog.Error("save failed: %v", err)
			return rec, fmt.Errorf("save history: %w", err)
		}
	}

	reqLog.Info("processed %d sequences (ranked=%v)", len(seqs), rec.SortedOutput != nil)
	return rec, nil
}

// IsUserError reports whether err comes from invalid input rather than a
// processing failure.
func IsUserError(err error) bool {
	return errors.Is(err, input.ErrNotText) || errors.Is(err, input.ErrNoInput)
}
