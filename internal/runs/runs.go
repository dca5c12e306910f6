package runs

import (
	"cmp"
	"slices"
)

// Run is a maximal span of equal, adjacent symbols.
type Run[S comparable] struct {
	Symbol S
	Start  int // index of the first symbol of the run
	Length int
}

// Analysis is the outcome of scanning one sequence.
type Analysis[S comparable] struct {
	// Symbols holds every symbol with a run of MaxLength, ascending.
	// Empty when MaxLength < 2.
	Symbols []S

	// MaxLength is the longest run length seen: 0 for an empty sequence,
	// 1 when no symbol repeats consecutively.
	MaxLength int
}

// MostRepeated returns the symbols whose longest consecutive run equals the
// longest run in seq, sorted ascending. The result is empty (never nil) when
// seq has fewer than two elements or when no symbol repeats consecutively.
func MostRepeated[S cmp.Ordered](seq []S) []S {
	return Analyze(seq).Symbols
}

// MostRepeatedFunc is MostRepeated for symbol types without a natural order.
// compare orders the result and must return a negative number when a < b,
// zero when equal, and a positive number when a > b.
func MostRepeatedFunc[S comparable](seq []S, compare func(a, b S) int) []S {
	return analyze(seq, compare).Symbols
}

// Analyze is MostRepeated that also reports the winning run length.
func Analyze[S cmp.Ordered](seq []S) Analysis[S] {
	return analyze(seq, cmp.Compare[S])
}

func analyze[S comparable](seq []S, compare func(a, b S) int) Analysis[S] {
	if len(seq) == 0 {
		return Analysis[S]{Symbols: []S{}}
	}
	if len(seq) < 2 {
		return Analysis[S]{Symbols: []S{}, MaxLength: 1}
	}

	current := seq[0]
	count, maxCount := 1, 1
	winners := make(map[S]struct{})

	for _, sym := range seq[1:] {
		if sym != current {
			// A new run starts. Earlier winners stay: a symbol qualifies
			// if any one of its runs reached the maximum.
			current = sym
			count = 1
			continue
		}
		count++
		if count > maxCount {
			maxCount = count
			clear(winners)
			winners[current] = struct{}{}
		} else if count == maxCount && maxCount > 1 {
			winners[current] = struct{}{}
		}
	}

	if maxCount < 2 {
		return Analysis[S]{Symbols: []S{}, MaxLength: maxCount}
	}

	symbols := make([]S, 0, len(winners))
	for sym := range winners {
		symbols = append(symbols, sym)
	}
	slices.SortFunc(symbols, compare)
	return Analysis[S]{Symbols: symbols, MaxLength: maxCount}
}

// Scan splits seq into its maximal runs, in order.
func Scan[S comparable](seq []S) []Run[S] {
	if len(seq) == 0 {
		return nil
	}
	out := make([]Run[S], 0, 8)
	start := 0
	for i := 1; i <= len(seq); i++ {
		if i < len(seq) && seq[i] == seq[start] {
			continue
		}
		out = append(out, Run[S]{Symbol: seq[start], Start: start, Length: i - start})
		start = i
	}
	return out
}
