package suggest

import "searchdeck/internal/domain"

const (
	// MaxSuggestions caps the merged list
	MaxSuggestions = 8
	// MaxRecent caps how many recent queries are offered
	MaxRecent = 5
)

// Trending is the static list of trending candidates in display order
var Trending = []domain.Suggestion{
	{Label: "Latest AI breakthroughs", Hint: "news"},
	{Label: "How to structure a knowledge base", Hint: "guide"},
	{Label: "Design tokens best practices", Hint: "design"},
	{Label: "Futuristic UI inspiration", Hint: "design"},
	{Label: "Web performance tuning 2025", Hint: "dev"},
}

// RecentHint marks suggestions that came from the recent-query list
const RecentHint = "recent"
