// Package rank re-orders analysis outputs through an optional ranking
// provider. Ranking is advisory: BestEffort never fails and falls back to
// the original order whenever a provider errors or answers with anything
// other than a permutation of what it was given.
package rank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"runscan/internal/logging"
)

// ErrRankingDisabled is returned by the "none" provider.
var ErrRankingDisabled = errors.New("ranking disabled")

// Ranker re-orders a list of results.
type Ranker interface {
	Rank(ctx context.Context, outputs [][]string) ([][]string, error)
	Name() string
}

const systemPrompt = "You are a sorting assistant. You receive a JSON array of arrays of strings; " +
	"each inner array is the set of symbols that formed the longest consecutive run in one sequence. " +
	"Sort the inner arrays by their number of elements in descending order. " +
	"Never add, remove or modify inner arrays. Reply with the sorted JSON array only."

func userPrompt(outputs [][]string) (string, error) {
	data, err := json.Marshal(normalize(outputs))
	if err != nil {
		return "", fmt.Errorf("failed to marshal outputs: %w", err)
	}
	return "Sort these outputs in descending order by count: " + string(data), nil
}

// normalize replaces nil inner slices so they marshal as [] rather than null.
func normalize(outputs [][]string) [][]string {
	out := make([][]string, len(outputs))
	for i, o := range outputs {
		if o == nil {
			o = []string{}
		}
		out[i] = o
	}
	return out
}

// parseRanked decodes a model reply, tolerating a fenced code block.
func parseRanked(content string) ([][]string, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, fmt.Errorf("empty ranking response")
	}
	var ranked [][]string
	if err := json.Unmarshal([]byte(content), &ranked); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}
	return ranked, nil
}

// BestEffort ranks outputs with r. It reports ok=false and returns outputs
// unchanged when r is nil, fails, or returns something that is not a
// reordering of outputs.
func BestEffort(ctx context.Context, r Ranker, outputs [][]string) ([][]string, bool) {
	if r == nil {
		return outputs, false
	}

	start := time.Now()
	ranked, err := r.Rank(ctx, outputs)
	if err != nil {
		if errors.Is(err, ErrRankingDisabled) {
			logging.RankDebug("BestEffort: ranking disabled")
		} else {
			logging.RankWarn("BestEffort: %s failed after %v: %v", r.Name(), time.Since(start), err)
		}
		return outputs, false
	}
	if !isPermutation(outputs, ranked) {
		logging.RankWarn("BestEffort: %s returned %d results that do not match the %d inputs; keeping original order",
			r.Name(), len(ranked), len(outputs))
		return outputs, false
	}
	logging.Rank("BestEffort: %s ranked %d results in %v", r.Name(), len(outputs), time.Since(start))
	return ranked, true
}

func resultKey(r []string) string {
	return fmt.Sprintf("%d:%s", len(r), strings.Join(r, "\x1f"))
}

// isPermutation reports whether b holds exactly the results of a, in any order.
func isPermutation(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, r := range a {
		counts[resultKey(r)]++
	}
	for _, r := range b {
		k := resultKey(r)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}
