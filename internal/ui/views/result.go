package views

import (
	"fmt"
	"strings"

	"searchdeck/internal/domain"
)

// ResultRowHeight is the number of lines one result occupies
const ResultRowHeight = 3

// ResultRenderer renders the result list
type ResultRenderer struct {
	styles *Styles
}

// NewResultRenderer creates a new result renderer
func NewResultRenderer(styles *Styles) *ResultRenderer {
	return &ResultRenderer{styles: styles}
}

// Render renders up to rows results starting at offset. selected is an index into
// entries, -1 for none.
func (rr *ResultRenderer) Render(entries []domain.SearchResult, selected, offset, rows int) string {
	if offset < 0 || offset >= len(entries) {
		offset = 0
	}
	end := offset + rows
	if end > len(entries) {
		end = len(entries)
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		b.WriteString(rr.renderResult(entries[i], i == selected))
	}
	if offset > 0 || end < len(entries) {
		b.WriteString(rr.styles.Scroll.Render(fmt.Sprintf("%d-%d of %d", offset+1, end, len(entries))))
		b.WriteString("\n")
	}
	return b.String()
}

func (rr *ResultRenderer) renderResult(res domain.SearchResult, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	title := rr.styles.ResultTitle.Render(res.Title)
	if len(res.Signals) > 0 {
		title += " " + rr.styles.Signal.Render(strings.Join(res.Signals, " · "))
	}
	line := cursor + title
	if selected {
		line = rr.styles.SelectionBg.Render(line)
	}

	return fmt.Sprintf("%s\n    %s\n    %s\n",
		line,
		rr.styles.Dim.Render(res.Snippet),
		rr.styles.ResultURL.Render(res.URL))
}
