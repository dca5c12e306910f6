// Package runs finds the symbols that form the longest runs of consecutive
// repeats in a sequence.
//
// A run is a maximal span of equal, adjacent symbols. For a sequence whose
// longest run has length L > 1, the result is every symbol that has at least
// one run of length L, deduplicated and sorted ascending. Sequences shorter
// than two elements, or with no adjacent repeats, produce an empty result.
//
// The analysis is a single pass with no shared state, so independent
// sequences can be analyzed concurrently; AnalyzeAll does that over an
// errgroup.
package runs
