// Package suggest merges recent queries and trending candidates into the list shown
// under the query input.
package suggest

import (
	"strings"

	"searchdeck/internal/domain"
)

// Compute returns the suggestions for input. Recent queries come first in their stored
// order, then trending candidates in declared order. Labels are deduplicated ignoring
// case with the first occurrence kept. A non-blank input keeps only labels containing it,
// ignoring case. The result never exceeds MaxSuggestions.
func Compute(input string, recent []string, trending []domain.Suggestion) []domain.Suggestion {
	needle := strings.ToLower(strings.TrimSpace(input))

	candidates := make([]domain.Suggestion, 0, MaxRecent+len(trending))
	for i, q := range recent {
		if i == MaxRecent {
			break
		}
		candidates = append(candidates, domain.Suggestion{Label: q, Hint: RecentHint})
	}
	candidates = append(candidates, trending...)

	out := make([]domain.Suggestion, 0, MaxSuggestions)
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		folded := strings.ToLower(label)
		if seen[folded] {
			continue
		}
		seen[folded] = true

		if needle != "" && !strings.Contains(folded, needle) {
			continue
		}
		out = append(out, domain.Suggestion{Label: label, Hint: c.Hint})
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Labels returns the labels of suggestions in order
func Labels(suggestions []domain.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Label
	}
	return out
}
