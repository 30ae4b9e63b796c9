package palette

// Kind is the effect an item has when selected
type Kind int

const (
	KindPlaceholder Kind = iota
	KindSearch
	KindClearRecent
)

// Group is the heading an item is listed under
type Group string

const (
	GroupQuick       Group = "Quick actions"
	GroupSuggestions Group = "Suggestions"
)

// Item is one palette entry
type Item struct {
	Label string
	Group Group
	Kind  Kind
	Query string // submitted for KindSearch
}

// Quick is the fixed list of quick actions
var Quick = []Item{
	{Label: "Open settings", Group: GroupQuick, Kind: KindPlaceholder},
	{Label: "Clear recent searches", Group: GroupQuick, Kind: KindClearRecent},
	{Label: "Show trending topics", Group: GroupQuick, Kind: KindSearch, Query: "Trending topics"},
	{Label: "Search: latest AI breakthroughs", Group: GroupQuick, Kind: KindSearch, Query: "latest AI breakthroughs"},
	{Label: "Search: performance tuning 2025", Group: GroupQuick, Kind: KindSearch, Query: "performance tuning 2025"},
}

// Suggestions is the fixed list of free-form suggestions
var Suggestions = []Item{
	{Label: "Futuristic UI inspiration", Group: GroupSuggestions, Kind: KindSearch, Query: "Futuristic UI inspiration"},
	{Label: "Design tokens best practices", Group: GroupSuggestions, Kind: KindSearch, Query: "Design tokens best practices"},
	{Label: "Knowledge graphs", Group: GroupSuggestions, Kind: KindSearch, Query: "Knowledge graphs"},
	{Label: "Edge search architectures", Group: GroupSuggestions, Kind: KindSearch, Query: "Edge search architectures"},
}

// Executor carries out the side effects of a selection
type Executor interface {
	SubmitQuery(q string)
	ClearRecent()
}
