package ui

import (
	"fmt"
	"strings"
	"time"

	"runscan/internal/input"
	"runscan/internal/store"

	"github.com/charmbracelet/glamour"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderRecord renders one history entry as a card.
func RenderRecord(s Styles, rec store.Record, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.Title.Render(rec.FileName), s.Muted.Render(rec.CreatedAt.Local().Format(timeLayout)))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Input:"), s.Value.Render("["+input.FormatAll(rec.Input)+"]"))
	fmt.Fprintf(&b, "%s %s", s.Label.Render("Original Output:"), s.Value.Render("["+input.FormatAll(rec.Output)+"]"))
	if rec.SortedOutput != nil {
		label := "Ranked Output:"
		if rec.Ranker != "" {
			label = fmt.Sprintf("Ranked Output (%s):", rec.Ranker)
		}
		fmt.Fprintf(&b, "\n%s %s", s.Label.Render(label), s.Value.Render("["+input.FormatAll(rec.SortedOutput)+"]"))
	}
	card := s.Card
	if width > 4 {
		card = card.Width(width - 2)
	}
	return card.Render(b.String())
}

// RenderHistory renders records newest first, or the empty state.
func RenderHistory(s Styles, records []store.Record, width int) string {
	if len(records) == 0 {
		return s.Subtitle.Render("Process a file to see the results")
	}
	cards := make([]string, len(records))
	for i, rec := range records {
		cards[i] = RenderRecord(s, rec, width)
	}
	return strings.Join(cards, "\n")
}

// HistoryMarkdown renders records as a markdown document.
func HistoryMarkdown(records []store.Record, maxItems int) string {
	var b strings.Builder
	if maxItems > 0 {
		fmt.Fprintf(&b, "# Latest Results (Last %d)\n\n", maxItems)
	} else {
		b.WriteString("# Latest Results\n\n")
	}
	if len(records) == 0 {
		b.WriteString("_Process a file to see the results_\n")
		return b.String()
	}
	for _, rec := range records {
		fmt.Fprintf(&b, "## %s\n\n", rec.FileName)
		fmt.Fprintf(&b, "- **Input:** %s\n", codeSpan("["+input.FormatAll(rec.Input)+"]"))
		fmt.Fprintf(&b, "- **Original Output:** %s\n", codeSpan("["+input.FormatAll(rec.Output)+"]"))
		if rec.SortedOutput != nil {
			fmt.Fprintf(&b, "- **Ranked Output:** %s (%s)\n", codeSpan("["+input.FormatAll(rec.SortedOutput)+"]"), rec.Ranker)
		}
		fmt.Fprintf(&b, "- **Processed:** %s\n", rec.CreatedAt.Local().Format(time.RFC1123))
		fmt.Fprintf(&b, "- **ID:** `%s`\n\n", rec.ID)
	}
	return b.String()
}

// codeSpan wraps s in an inline code span whose backtick fence is longer
// than any backtick run inside s.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// RenderMarkdown renders md for the terminal, falling back to the raw text
// when no renderer can be built.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
