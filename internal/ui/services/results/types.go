package results

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"searchdeck/internal/domain"
)

// Fetcher performs the network call for one key
type Fetcher interface {
	Search(ctx context.Context, key domain.RequestKey) (*domain.SearchResponse, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, key domain.RequestKey) (*domain.SearchResponse, error)

func (f FetcherFunc) Search(ctx context.Context, key domain.RequestKey) (*domain.SearchResponse, error) {
	return f(ctx, key)
}

// Status is the state of the active key
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot is what the result list renders. Entry is a private copy.
type Snapshot struct {
	Key    domain.RequestKey
	Status Status
	Entry  *domain.CacheEntry
	Err    error
	Stale  bool // Entry is past its TTL and being revalidated or awaiting one
}

// Results returns the entry's results, or nil when there is no entry or the key failed
func (s Snapshot) Results() []domain.SearchResult {
	if s.Status == StatusError || s.Entry == nil {
		return nil
	}
	return s.Entry.Results
}

// Options configures a Cache
type Options struct {
	TTL     time.Duration // zero keeps entries fresh for the session
	Size    int           // LRU capacity
	Timeout time.Duration // per-fetch timeout, zero for none
}

// DefaultSize is used when Options.Size is not positive
const DefaultSize = 256

// Outcome reports how a call finished
type Outcome struct {
	Key      domain.RequestKey
	Err      error
	Surfaced bool // the key was still active when the fetch completed
	Shared   bool // more than one Resolve waited on the same fetch
}

// Call is one Resolve's view of an in-flight fetch. Calls for the same key issued
// while the fetch runs all complete with the same Outcome.
type Call struct {
	key     domain.RequestKey
	done    chan struct{}
	outcome Outcome
}

func newCall(key domain.RequestKey, ch <-chan singleflight.Result) *Call {
	call := &Call{key: key, done: make(chan struct{})}
	go call.await(ch)
	return call
}

func (c *Call) await(ch <-chan singleflight.Result) {
	res := <-ch
	out, _ := res.Val.(Outcome)
	out.Key = c.key
	out.Err = res.Err
	out.Shared = res.Shared
	c.outcome = out
	close(c.done)
}

// Key returns the key the call was issued for
func (c *Call) Key() domain.RequestKey {
	return c.key
}

// Done is closed when the fetch completes
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the fetch completes or ctx is done
func (c *Call) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, nil
	case <-ctx.Done():
		return Outcome{Key: c.key}, ctx.Err()
	}
}
