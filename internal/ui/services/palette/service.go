// Package palette holds the command palette entries and what selecting one does.
package palette

import "strings"

// Items returns both groups, quick actions first
func Items() []Item {
	out := make([]Item, 0, len(Quick)+len(Suggestions))
	out = append(out, Quick...)
	return append(out, Suggestions...)
}

// Filter keeps the items whose label contains text, ignoring case. Blank text keeps all.
func Filter(items []Item, text string) []Item {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return append([]Item(nil), items...)
	}
	var out []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Label), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Run performs item's effect. The palette always closes afterwards, so there is
// nothing to return.
func Run(item Item, exec Executor) {
	switch item.Kind {
	case KindSearch:
		exec.SubmitQuery(item.Query)
	case KindClearRecent:
		exec.ClearRecent()
	}
}
