package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"runscan/internal/input"
	"runscan/internal/logging"
	"runscan/internal/store"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FileProcessor processes a selected file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*store.Record, error)
}

// History lists and clears stored results.
type History interface {
	Recent(ctx context.Context, limit int) ([]store.Record, error)
	Clear(ctx context.Context) error
}

// Options configures the interactive UI.
type Options struct {
	Processor FileProcessor
	History   History
	// Limit is how many results the history page shows.
	Limit    int
	StartDir string
	Styles   Styles
	Context  context.Context
}

type page int

const (
	pagePicker page = iota
	pageHistory
)

type processedMsg struct {
	rec *store.Record
	err error
}

type historyMsg struct {
	records []store.Record
	err     error
}

type clearedMsg struct{ err error }

// Model is the bubbletea model for the interactive UI.
type Model struct {
	opts   Options
	styles Styles
	ctx    context.Context

	page       page
	picker     filepicker.Model
	spinner    spinner.Model
	viewport   viewport.Model
	selected   string
	processing bool
	records    []store.Record
	err        error
	notice     string
	width      int
	height     int
}

// NewModel builds the UI model.
func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.StartDir == "" {
		opts.StartDir = "."
	}

	fp := newPicker(opts.StartDir)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	return Model{
		opts:     opts,
		styles:   opts.Styles,
		ctx:      opts.Context,
		picker:   fp,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = []string{input.Extension}
	fp.Height = 12
	return fp
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.picker.Init(), m.loadHistory())
}

func (m Model) loadHistory() tea.Cmd {
	if m.opts.History == nil {
		return nil
	}
	h, ctx, limit := m.opts.History, m.ctx, m.opts.Limit
	return func() tea.Msg {
		records, err := h.Recent(ctx, limit)
		return historyMsg{records: records, err: err}
	}
}

func (m Model) process(path string) tea.Cmd {
	p, ctx := m.opts.Processor, m.ctx
	return func() tea.Msg {
		rec, err := p.ProcessFile(ctx, path)
		return processedMsg{rec: rec, err: err}
	}
}

func (m Model) clearHistory() tea.Cmd {
	h, ctx := m.opts.History, m.ctx
	return func() tea.Msg {
		return clearedMsg{err: h.Clear(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.Height = max(msg.Height-12, 3)
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-8, 3)
		m.refreshHistory()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case processedMsg:
		m.processing = false
		if msg.err != nil {
			logging.UIWarn("Processing failed: %v", msg.err)
			m.err = msg.err
			if msg.rec == nil {
				return m, nil
			}
		} else {
			m.err = nil
			m.notice = fmt.Sprintf("Processed %s (%d sequences)", msg.rec.FileName, len(msg.rec.Input))
		}
		m.selected = ""
		m.page = pageHistory
		return m, m.loadHistory()

	case historyMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("load history: %w", msg.err)
			return m, nil
		}
		m.records = msg.records
		m.refreshHistory()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("clear history: %w", msg.err)
			return m, nil
		}
		m.records = nil
		m.notice = "History cleared"
		m.refreshHistory()
		return m, nil
	}

	// Directory listings and key presses on the picker page go to the picker.
	if _, isKey := msg.(tea.KeyMsg); isKey && (m.page != pagePicker || m.processing) {
		if m.page == pageHistory {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.selected = path
		m.err = nil
		m.notice = ""
		logging.UIDebug("Selected %s", path)
	}
	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.err = fmt.Errorf("%s: %w", filepath.Base(path), input.ErrNotText)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit, true
	case "tab":
		if m.page == pagePicker {
			m.page = pageHistory
		} else {
			m.page = pagePicker
		}
		return nil, true
	}

	if m.processing {
		return nil, false
	}

	switch msg.String() {
	case "p":
		if m.selected == "" || m.opts.Processor == nil {
			return nil, true
		}
		m.processing = true
		m.err = nil
		m.notice = ""
		return tea.Batch(m.spinner.Tick, m.process(m.selected)), true
	case "x":
		if m.selected != "" {
			m.selected = ""
			m.err = nil
			m.picker = newPicker(m.picker.CurrentDirectory)
			return m.picker.Init(), true
		}
	case "d":
		if m.opts.History != nil {
			return m.clearHistory(), true
		}
	}
	return nil, false
}

func (m *Model) refreshHistory() {
	m.viewport.SetContent(RenderHistory(m.styles, m.records, m.viewport.Width))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Character Sequence Analyzer"))
	b.WriteString("  ")
	b.WriteString(m.tabs())
	b.WriteString("\n")

	var body string
	switch m.page {
	case pagePicker:
		body = m.pickerView()
	case pageHistory:
		title := "Latest Results"
		if m.opts.Limit > 0 {
			title = fmt.Sprintf("Latest Results (Last %d)", m.opts.Limit)
		}
		body = m.styles.Title.Render(title) + "\n" + m.viewport.View()
	}
	b.WriteString(m.styles.Content.Render(body))
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.width))
	b.WriteString("\n")

	if m.err != nil {
		errStyle := m.styles.Error
		if isInputError(m.err) {
			errStyle = m.styles.Warning
		}
		b.WriteString(errStyle.Render(errorText(m.err)))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(m.styles.Success.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Footer.Render("tab switch view • p process • x remove • d clear history • q quit"))
	return b.String()
}

func (m Model) tabs() string {
	picker, history := m.styles.Tab, m.styles.Tab
	if m.page == pagePicker {
		picker = m.styles.TabOn
	} else {
		history = m.styles.TabOn
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		picker.Render("Upload"),
		history.Render(fmt.Sprintf("History (%d)", len(m.records))),
	)
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Pick a .txt file to analyze"))
	b.WriteString("\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	switch {
	case m.processing:
		b.WriteString(m.spinner.View() + " Processing and sorting...")
	case m.selected != "":
		b.WriteString(m.styles.Selected.Render(filepath.Base(m.selected)))
		b.WriteString(m.styles.Muted.Render("  p process • x remove"))
	default:
		b.WriteString(m.styles.Muted.Render("Select a file to process"))
	}
	return b.String()
}

// errorText shows input rejections as their capitalized message and other
// errors unchanged.
func errorText(err error) string {
	for _, sentinel := range []error{input.ErrNotText, input.ErrNoInput} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return err.Error()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isInputError(err error) bool {
	return errors.Is(err, input.ErrNotText) || errors.Is(err, input.ErrNoInput)
}
