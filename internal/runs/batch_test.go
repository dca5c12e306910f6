package runs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"runscan/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAnalyzeAll_PreservesOrder(t *testing.T) {
	seqs := [][]string{
		split("a,a,b,b"),
		split("a,a,z,z,z,a,a"),
		split("x"),
		split("r,r,r,a,a,g,g,g,r,r,r"),
	}

	got, err := AnalyzeAll(context.Background(), seqs, 2)
	require.NoError(t, err)
	require.Len(t, got, len(seqs))

	assert.Equal(t, [][]string{{"a", "b"}, {"z"}, {}, {"g", "r"}}, Symbols(got))
	assert.Equal(t, []int{2, 3, 1, 3}, []int{got[0].MaxLength, got[1].MaxLength, got[2].MaxLength, got[3].MaxLength})
}

func TestAnalyzeAll_ManySequences(t *testing.T) {
	seqs := make([][]string, 200)
	for i := range seqs {
		sym := fmt.Sprintf("s%d", i)
		seqs[i] = []string{sym, sym, "x"}
	}

	got, err := AnalyzeAll(context.Background(), seqs, 0)
	require.NoError(t, err)
	for i, a := range got {
		assert.Equal(t, []string{fmt.Sprintf("s%d", i)}, a.Symbols)
	}
}

func TestAnalyzeAll_Empty(t *testing.T) {
	got, err := AnalyzeAll(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAnalyzeAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnalyzeAll(ctx, [][]string{split("a,a")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeAll_LogsCompletion(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".runscan"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".runscan", "config.yaml"),
		[]byte("logging:\n  level: info\n  debug_mode: true\n"), 0644))
	require.NoError(t, logging.Initialize(ws))
	t.Cleanup(func() {
		logging.CloseAll()
		_ = logging.Initialize(t.TempDir())
	})

	_, err := AnalyzeAll(context.Background(), [][]string{split("a,a"), split("b")}, 2)
	require.NoError(t, err)
	logging.CloseAll()

	matches, err := filepath.Glob(filepath.Join(ws, ".runscan", "logs", "*_analysis.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "analyzed 2 sequences"), string(data))
}
