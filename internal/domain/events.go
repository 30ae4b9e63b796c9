package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQuerySubmitted  EventType = "QuerySubmitted"
	EventLocationAdopted EventType = "LocationAdopted"
	EventRecentCleared   EventType = "RecentCleared"
	EventCacheHit        EventType = "CacheHit"
	EventFetchStarted    EventType = "FetchStarted"
	EventFetchCoalesced  EventType = "FetchCoalesced"
	EventFetchCompleted  EventType = "FetchCompleted"
	EventFetchFailed     EventType = "FetchFailed"
	EventStaleDiscarded  EventType = "StaleDiscarded"
	EventPersistFailed   EventType = "PersistFailed"
	EventResultOpened    EventType = "ResultOpened"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QuerySubmittedEvent is emitted when a non-empty query is submitted
type QuerySubmittedEvent struct {
	Key RequestKey
}

func (e QuerySubmittedEvent) Type() EventType { return EventQuerySubmitted }

// LocationAdoptedEvent is emitted when query state is taken from the location
type LocationAdoptedEvent struct {
	Query string
	Mode  Mode
}

func (e LocationAdoptedEvent) Type() EventType { return EventLocationAdopted }

// RecentClearedEvent is emitted when the recent-query list is emptied
type RecentClearedEvent struct{}

func (e RecentClearedEvent) Type() EventType { return EventRecentCleared }

// CacheHitEvent is emitted when a fresh cache entry answers a resolve
type CacheHitEvent struct {
	Key RequestKey
}

func (e CacheHitEvent) Type() EventType { return EventCacheHit }

// FetchStartedEvent is emitted when a network call is issued
type FetchStartedEvent struct {
	Key        RequestKey
	Revalidate bool // an expired entry exists and is being refreshed
}

func (e FetchStartedEvent) Type() EventType { return EventFetchStarted }

// FetchCoalescedEvent is emitted when a resolve joins an in-flight call
type FetchCoalescedEvent struct {
	Key RequestKey
}

func (e FetchCoalescedEvent) Type() EventType { return EventFetchCoalesced }

// FetchCompletedEvent is emitted when a network call succeeds
type FetchCompletedEvent struct {
	Key      RequestKey
	Results  int
	Duration time.Duration
}

func (e FetchCompletedEvent) Type() EventType { return EventFetchCompleted }

// FetchFailedEvent is emitted when a network call fails
type FetchFailedEvent struct {
	Key      RequestKey
	Err      error
	Duration time.Duration
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// StaleDiscardedEvent is emitted when a response arrives for a key that is no longer active
type StaleDiscardedEvent struct {
	Key    RequestKey
	Active RequestKey
}

func (e StaleDiscardedEvent) Type() EventType { return EventStaleDiscarded }

// PersistFailedEvent is emitted when the recent-query store cannot be read or written
type PersistFailedEvent struct {
	Op  string
	Err error
}

func (e PersistFailedEvent) Type() EventType { return EventPersistFailed }

// ResultOpenedEvent is emitted when a result URL is handed to the opener
type ResultOpenedEvent struct {
	URL string
}

func (e ResultOpenedEvent) Type() EventType { return EventResultOpened }
