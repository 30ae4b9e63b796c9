package views

import (
	"strings"

	"searchdeck/internal/domain"
)

// SuggestionRenderer renders the suggestion list under the input
type SuggestionRenderer struct {
	styles *Styles
}

// NewSuggestionRenderer creates a new suggestion renderer
func NewSuggestionRenderer(styles *Styles) *SuggestionRenderer {
	return &SuggestionRenderer{styles: styles}
}

// Render renders the suggestions, highlighting selected (-1 for none)
func (sr *SuggestionRenderer) Render(suggestions []domain.Suggestion, selected int) string {
	lines := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		line := "  " + s.Label
		if s.Hint != "" {
			line += "  " + sr.styles.Hint.Render(s.Hint)
		}
		if i == selected {
			line = sr.styles.Highlight.Render("›") + " " + strings.TrimPrefix(line, "  ")
			line = sr.styles.SelectionBg.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
