package rank

import (
	"context"
	"slices"
)

// LocalRanker orders results by how many symbols tied for the longest run,
// most first. Equal sizes keep their original order.
type LocalRanker struct{}

func (LocalRanker) Name() string { return "local" }

func (LocalRanker) Rank(ctx context.Context, outputs [][]string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ranked := slices.Clone(outputs)
	slices.SortStableFunc(ranked, func(a, b []string) int {
		return len(b) - len(a)
	})
	return ranked, nil
}

// NoneRanker disables ranking.
type NoneRanker struct{}

func (NoneRanker) Name() string { return "none" }

func (NoneRanker) Rank(context.Context, [][]string) ([][]string, error) {
	return nil, ErrRankingDisabled
}
