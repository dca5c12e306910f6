// Package input turns uploaded text files into symbol sequences.
//
// Each non-empty line holds one sequence written as a bracketed,
// comma-separated list, e.g. "[a,a,b,c]". Brackets are stripped wherever
// they appear and every token is trimmed.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"runscan/internal/logging"
)

// Extension is the only accepted file extension.
const Extension = ".txt"

var (
	// ErrNotText is returned for files without the .txt extension.
	ErrNotText = errors.New("please upload a .txt file")

	// ErrNoInput is returned when a file yields no sequences.
	ErrNoInput = errors.New("no valid input found in the file")
)

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// ValidateFileName rejects anything that is not a .txt file.
func ValidateFileName(name string) error {
	if !strings.HasSuffix(name, Extension) {
		return fmt.Errorf("%s: %w", filepath.Base(name), ErrNotText)
	}
	return nil
}

// ParseSequences splits content into one sequence per non-empty line.
func ParseSequences(content string) [][]string {
	var seqs [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := strings.TrimSpace(bracketStripper.Replace(line))
		tokens := strings.Split(cleaned, ",")
		for i, tok := range tokens {
			tokens[i] = strings.TrimSpace(tok)
		}
		seqs = append(seqs, tokens)
	}
	logging.InputDebug("ParseSequences: %d sequences from %d bytes", len(seqs), len(content))
	return seqs
}

// Read parses every sequence from r.
func Read(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return ParseSequences(string(data)), nil
}

// ReadFile validates the name and parses the file at path.
func ReadFile(path string) ([][]string, error) {
	if err := ValidateFileName(path); err != nil {
		logging.InputWarn("rejected %s: %v", path, err)
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		logging.InputError("open %s: %v", path, err)
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	defer f.Close()
	logging.Input("reading %s", path)
	return Read(f)
}

// Format renders a sequence as "[a,b,c]".
func Format(seq []string) string {
	return "[" + strings.Join(seq, ",") + "]"
}

// FormatAll renders sequences as "[a,b],[c]".
func FormatAll(seqs [][]string) string {
	parts := make([]string, len(seqs))
	for i, s := range seqs {
		parts[i] = Format(s)
	}
	return strings.Join(parts, ",")
}
