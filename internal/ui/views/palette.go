package views

import (
	"strings"

	"searchdeck/internal/ui/services/palette"
)

// PaletteRenderer renders the command palette popup body
type PaletteRenderer struct {
	styles *Styles
}

// NewPaletteRenderer creates a new palette renderer
func NewPaletteRenderer(styles *Styles) *PaletteRenderer {
	return &PaletteRenderer{styles: styles}
}

// Render renders the filter line and the items grouped under their headings
func (pr *PaletteRenderer) Render(filter string, items []palette.Item, selected int) string {
	var b strings.Builder
	b.WriteString(pr.styles.Title.Render("Command palette"))
	b.WriteString("\n")
	b.WriteString("> " + filter + pr.styles.Dim.Render("_"))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString("\n")
		b.WriteString(pr.styles.Dim.Render("No matching commands"))
		return b.String()
	}

	var group palette.Group
	for i, item := range items {
		if item.Group != group {
			group = item.Group
			b.WriteString("\n")
			b.WriteString(pr.styles.Section.Render(string(group)))
			b.WriteString("\n")
		}
		line := "  " + item.Label
		if i == selected {
			line = pr.styles.SelectionBg.Render(pr.styles.Highlight.Render("▸ ") + item.Label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(pr.styles.Help.Render("↑/↓ move • enter run • esc close"))
	return b.String()
}
