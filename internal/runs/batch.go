package runs

import (
	"context"
	"runtime"

	"runscan/internal/logging"

	"golang.org/x/sync/errgroup"
)

// AnalyzeAll analyzes every sequence independently, using at most workers
// goroutines (workers <= 0 means GOMAXPROCS). Results keep the input order.
// The only error it returns is the context's.
func AnalyzeAll(ctx context.Context, seqs [][]string, workers int) ([]Analysis[string], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(seqs) {
		workers = len(seqs)
	}

	out := make([]Analysis[string], len(seqs))
	if len(seqs) == 0 {
		return out, ctx.Err()
	}
	logging.AnalysisDebug("AnalyzeAll: sequences=%d workers=%d", len(seqs), workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seq := range seqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Analyze(seq)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.AnalysisWarn("AnalyzeAll stopped: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logging.AnalysisWarn("AnalyzeAll stopped: %v", err)
		return nil, err
	}
	logging.Analysis("AnalyzeAll: analyzed %d sequences", len(out))
	return out, nil
}

// Symbols extracts the winning symbols from each analysis.
func Symbols(as []Analysis[string]) [][]string {
	out := make([][]string, len(as))
	for i, a := range as {
		out[i] = a.Symbols
	}
	return out
}
