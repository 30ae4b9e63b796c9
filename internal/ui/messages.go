package ui

import (
	"time"

	"searchdeck/internal/eventbus"
	"searchdeck/internal/ui/services/query"
	"searchdeck/internal/ui/services/results"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// LocationChangedMsg reports that the addressable location was changed from outside
type LocationChangedMsg struct{}

// BackendStatusMsg reports the result of the startup health check against the search
// endpoint
type BackendStatusMsg struct {
	Endpoint string
	Err      error
}

// tickMsg is sent on a timer for animations
type tickMsg time.Time

// debounceMsg fires when the debounce delay for a draft elapses
type debounceMsg struct {
	handle query.Handle
}

// resultsMsg reports that a fetch finished
type resultsMsg struct {
	outcome results.Outcome
}

// dashboardTickMsg refreshes the dashboard. Ticks from an older generation are dropped.
type dashboardTickMsg struct {
	gen int
}

// openedMsg contains the result of handing a URL to the opener
type openedMsg struct {
	url string
	err error
}
