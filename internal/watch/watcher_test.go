package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goleak is not used here: fsnotify backends on some platforms keep
// goroutines the detector cannot attribute.

type recorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	return r.err
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir string, rec *recorder) *Watcher {
	t.Helper()
	w, err := New(dir, 20*time.Millisecond, rec.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestNew_RequiresHandler(t *testing.T) {
	_, err := New(t.TempDir(), 0, nil)
	assert.Error(t, err)
}

func TestWatcher_ProcessesTextFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.txt"), []byte("[a,a,b]\n"), 0644))

	assert.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"drop.txt"}, rec.seen())

	stats := w.Stats()
	assert.Equal(t, 1, stats.Processed)
	assert.GreaterOrEqual(t, stats.FilesCreated, 1)
	assert.Equal(t, filepath.Join(dir, "drop.txt"), stats.LastEventPath)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec)

	path := filepath.Join(dir, "burst.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("[x,x]\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool {
		return len(rec.seen()) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"burst.txt"}, rec.seen())
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("[a]"), 0644))

	assert.Eventually(t, func() bool {
		return w.Stats().Ignored == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.seen())
}

func TestWatcher_CountsHandlerErrors(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{err: errors.New("bad file")}
	w := startWatcher(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.txt"), []byte(""), 0644))

	assert.Eventually(t, func() bool {
		return w.Stats().Errors == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, w.Stats().Processed)
}

func TestWatcher_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	rec := &recorder{}
	w := startWatcher(t, dir, rec)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, w.Dir())
}

func TestWatcher_StopIsIdempotentAndStartTwiceIsNoop(t *testing.T) {
	rec := &recorder{}
	w, err := New(t.TempDir(), 0, rec.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	w.Stop()
	w.Stop()
}

func TestWatcher_ContextCancelEndsLoop(t *testing.T) {
	rec := &recorder{}
	w, err := New(t.TempDir(), 0, rec.handle)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit after cancel")
	}
	w.Stop()
}
