package domain

import (
	"net/url"
	"strings"
	"time"
)

// Mode selects which backend ranking path a search asks for
type Mode string

const (
	ModeAuto         Mode = "auto"
	ModePersonalized Mode = "personalized"
	ModeNeutral      Mode = "neutral"
)

// Modes lists the modes in cycling order
var Modes = []Mode{ModeAuto, ModePersonalized, ModeNeutral}

// ParseMode returns the mode named by s, or ModeAuto when s is not a known mode
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePersonalized:
		return ModePersonalized
	case ModeNeutral:
		return ModeNeutral
	default:
		return ModeAuto
	}
}

// Next returns the mode after m in cycling order
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeAuto
}

// ResultType filters results by content type
type ResultType string

const (
	TypeAll     ResultType = "all"
	TypeArticle ResultType = "article"
	TypeNews    ResultType = "news"
	TypeVideo   ResultType = "video"
	TypePaper   ResultType = "paper"
)

var ResultTypes = []ResultType{TypeAll, TypeArticle, TypeNews, TypeVideo, TypePaper}

// TimeRange filters results by age
type TimeRange string

const (
	TimeAny   TimeRange = "any"
	TimeDay   TimeRange = "day"
	TimeWeek  TimeRange = "week"
	TimeMonth TimeRange = "month"
	TimeYear  TimeRange = "year"
)

var TimeRanges = []TimeRange{TimeAny, TimeDay, TimeWeek, TimeMonth, TimeYear}

// FiltersState is an immutable filter selection. Change it by replacing the whole value.
type FiltersState struct {
	Type ResultType
	Time TimeRange
	Safe bool
}

// DefaultFilters returns the filters a fresh session starts with
func DefaultFilters() FiltersState {
	return FiltersState{Type: TypeAll, Time: TimeAny, Safe: true}
}

// WithNextType returns a copy with the type filter advanced by one
func (f FiltersState) WithNextType() FiltersState {
	f.Type = ResultTypes[(indexOf(ResultTypes, f.Type)+1)%len(ResultTypes)]
	return f
}

// WithNextTime returns a copy with the time filter advanced by one
func (f FiltersState) WithNextTime() FiltersState {
	f.Time = TimeRanges[(indexOf(TimeRanges, f.Time)+1)%len(TimeRanges)]
	return f
}

// WithSafe returns a copy with safe search set to safe
func (f FiltersState) WithSafe(safe bool) FiltersState {
	f.Safe = safe
	return f
}

func indexOf[T comparable](list []T, v T) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

// RequestKey identifies one search request. Equal inputs produce equal keys, so the
// struct can be used directly as a map key. The zero key means "no fetch".
type RequestKey struct {
	Query   string
	Filters FiltersState
	Mode    Mode
}

// KeyFor derives the request key for a query, filter set and mode.
// It returns the zero key when the trimmed query is empty.
func KeyFor(query string, filters FiltersState, mode Mode) RequestKey {
	q := strings.TrimSpace(query)
	if q == "" {
		return RequestKey{}
	}
	return RequestKey{Query: q, Filters: filters, Mode: mode}
}

// IsZero reports whether k is the "no fetch" key
func (k RequestKey) IsZero() bool {
	return k.Query == ""
}

// Values encodes the key as the query parameters of the search endpoint
func (k RequestKey) Values() url.Values {
	v := url.Values{}
	v.Set("q", k.Query)
	v.Set("type", string(k.Filters.Type))
	v.Set("time", string(k.Filters.Time))
	if k.Filters.Safe {
		v.Set("safe", "1")
	} else {
		v.Set("safe", "0")
	}
	v.Set("mode", string(k.Mode))
	return v
}

// String returns the canonical request path for the key
func (k RequestKey) String() string {
	if k.IsZero() {
		return ""
	}
	return "/api/search?" + k.Values().Encode()
}

// SearchResult is one hit returned by the search endpoint
type SearchResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Snippet string   `json:"snippet"`
	URL     string   `json:"url"`
	Signals []string `json:"signals"`
	Score   float64  `json:"score"`
}

// SearchResponse is the body of a successful search call
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	TookMs  int64          `json:"tookMs"`
}

// CacheEntry is the stored response for one request key
type CacheEntry struct {
	Key       RequestKey
	Results   []SearchResult
	TookMs    int64
	FetchedAt time.Time
}

// Clone returns a copy that shares nothing mutable with e
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}
	out := *e
	out.Results = make([]SearchResult, len(e.Results))
	for i, r := range e.Results {
		r.Signals = append([]string(nil), r.Signals...)
		out.Results[i] = r
	}
	return &out
}

// Suggestion is a candidate shown under the query input
type Suggestion struct {
	Label string
	Hint  string
}

// Equal reports whether two suggestions have the same label, ignoring case
func (s Suggestion) Equal(o Suggestion) bool {
	return strings.EqualFold(s.Label, o.Label)
}
