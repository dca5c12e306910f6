package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"runscan/internal/input"
	"runscan/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	rec *store.Record
	err error
	got string
}

func (f *fakeProcessor) ProcessFile(_ context.Context, path string) (*store.Record, error) {
	f.got = path
	return f.rec, f.err
}

type fakeHistory struct {
	records []store.Record
	cleared bool
}

func (f *fakeHistory) Recent(context.Context, int) ([]store.Record, error) {
	return f.records, nil
}

func (f *fakeHistory) Clear(context.Context) error {
	f.cleared = true
	f.records = nil
	return nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleRecord() store.Record {
	return store.Record{
		ID:           "rec-1",
		FileName:     "sample.txt",
		Input:        [][]string{{"a", "a", "b"}},
		Output:       [][]string{{"a"}},
		SortedOutput: [][]string{{"a"}},
		Ranker:       "local",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestModel(p FileProcessor, h History) Model {
	m := NewModel(Options{
		Processor: p,
		History:   h,
		Limit:     5,
		StartDir:  ".",
		Styles:    NewStyles(LightTheme()),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_TabTogglesPages(t *testing.T) {
	m := newTestModel(nil, nil)
	assert.Equal(t, pagePicker, m.page)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageHistory, m.page)
	assert.Contains(t, m.View(), "Latest Results (Last 5)")
	assert.Contains(t, m.View(), "Process a file to see the results")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pagePicker, m.page)
	assert.Contains(t, m.View(), "Select a file to process")
}

func TestModel_QuitKeys(t *testing.T) {
	m := newTestModel(nil, nil)
	for _, key := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_LoadsHistory(t *testing.T) {
	h := &fakeHistory{records: []store.Record{sampleRecord()}}
	m := newTestModel(nil, h)

	msg := m.loadHistory()()
	m, _ = update(t, m, msg)
	m.page = pageHistory

	view := m.View()
	assert.Contains(t, view, "sample.txt")
	assert.Contains(t, view, "[[a,a,b]]")
	assert.Contains(t, view, "Ranked Output (local):")
	assert.Contains(t, view, "History (1)")
}

func TestModel_ProcessFlow(t *testing.T) {
	rec := sampleRecord()
	p := &fakeProcessor{rec: &rec}
	h := &fakeHistory{}
	m := newTestModel(p, h)

	m, cmd := update(t, m, keyRunes("p"))
	assert.Nil(t, cmd, "nothing selected")
	assert.False(t, m.processing)

	m.selected = "/tmp/sample.txt"
	m, cmd = update(t, m, keyRunes("p"))
	require.NotNil(t, cmd)
	assert.True(t, m.processing)
	assert.Contains(t, m.View(), "Processing and sorting...")

	m, _ = update(t, m, m.process(m.selected)())
	assert.Equal(t, "/tmp/sample.txt", p.got)
	assert.False(t, m.processing)
	assert.Empty(t, m.selected)
	assert.Equal(t, pageHistory, m.page)
	assert.Contains(t, m.View(), "Processed sample.txt (1 sequences)")
}

func TestModel_ProcessError(t *testing.T) {
	p := &fakeProcessor{err: input.ErrNoInput}
	m := newTestModel(p, nil)
	m.selected = "/tmp/blank.txt"

	m, _ = update(t, m, keyRunes("p"))
	m, cmd := update(t, m, m.process(m.selected)())
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, input.ErrNoInput)
	assert.Equal(t, pagePicker, m.page)
	assert.Contains(t, m.View(), "No valid input found in the file")
}

func TestModel_WrappedInputErrorKeepsFileName(t *testing.T) {
	p := &fakeProcessor{err: fmt.Errorf("foo.csv: %w", input.ErrNotText)}
	m := newTestModel(p, nil)
	m.selected = "/tmp/foo.csv"

	m, _ = update(t, m, keyRunes("p"))
	m, _ = update(t, m, m.process(m.selected)())
	view := m.View()
	assert.Contains(t, view, "Please upload a .txt file")
	assert.NotContains(t, view, "Foo.csv")
}

func TestModel_RemoveSelection(t *testing.T) {
	m := newTestModel(&fakeProcessor{}, nil)
	m.selected = "/tmp/sample.txt"
	m.err = errors.New("stale")

	m, cmd := update(t, m, keyRunes("x"))
	assert.NotNil(t, cmd)
	assert.Empty(t, m.selected)
	assert.NoError(t, m.err)
}

func TestModel_ClearHistory(t *testing.T) {
	h := &fakeHistory{records: []store.Record{sampleRecord()}}
	m := newTestModel(nil, h)
	m, _ = update(t, m, m.loadHistory()())
	require.Len(t, m.records, 1)

	m, cmd := update(t, m, keyRunes("d"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.True(t, h.cleared)
	assert.Empty(t, m.records)
	assert.Contains(t, m.View(), "History cleared")
}

func TestModel_KeysIgnoredWhileProcessing(t *testing.T) {
	h := &fakeHistory{}
	m := newTestModel(&fakeProcessor{}, h)
	m.processing = true

	_, cmd := update(t, m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.False(t, h.cleared)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Please upload a .txt file", errorText(input.ErrNotText))
	assert.Equal(t, "Please upload a .txt file", errorText(fmt.Errorf("foo.csv: %w", input.ErrNotText)))
	assert.Equal(t, "No valid input found in the file", errorText(fmt.Errorf("empty.txt: %w", input.ErrNoInput)))
	assert.Equal(t, "émoji.txt: save history: disk full", errorText(errors.New("émoji.txt: save history: disk full")))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Élan", capitalize("élan"))
	assert.Equal(t, "", capitalize(""))
	assert.True(t, strings.HasPrefix(capitalize("x y"), "X"))
}

func TestModel_ViewLayout(t *testing.T) {
	m := newTestModel(&fakeProcessor{}, nil)
	view := m.View()
	assert.Contains(t, view, "Character Sequence Analyzer")
	assert.Contains(t, view, strings.Repeat("─", 100))
	assert.Contains(t, view, "Select a file to process")
}
