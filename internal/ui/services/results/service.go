// Package results caches search responses per request key, coalesces concurrent
// fetches of the same key and only ever surfaces the response for the active key.
package results

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
)

// Cache is the result cache and fetcher. Completions arrive on fetch goroutines, so all
// state is guarded by mu.
type Cache struct {
	mu       sync.Mutex
	fetcher  Fetcher
	opts     Options
	entries  *lru.Cache[domain.RequestKey, *domain.CacheEntry]
	flights  singleflight.Group
	pending  map[domain.RequestKey]struct{} // keys with a flight in progress
	errs     map[domain.RequestKey]error
	active   domain.RequestKey

	bus eventbus.EventBus
	log zerolog.Logger
	now func() time.Time
}

// New returns an empty cache fetching through fetcher
func New(fetcher Fetcher, opts Options, bus eventbus.EventBus, log zerolog.Logger) *Cache {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	// only fails for a non-positive size
	entries, _ := lru.New[domain.RequestKey, *domain.CacheEntry](opts.Size)

	return &Cache{
		fetcher:  fetcher,
		opts:     opts,
		entries:  entries,
		pending:  make(map[domain.RequestKey]struct{}),
		errs:     make(map[domain.RequestKey]error),
		bus:      bus,
		log:      log.With().Str("component", "results").Logger(),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for freshness checks
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Resolve makes key the active key and returns its snapshot. The returned Call is
// non-nil while a fetch for key is running; resolving the same key again before it
// finishes joins that fetch instead of starting another. The zero key clears the
// active key and never fetches.
func (c *Cache) Resolve(key domain.RequestKey) (Snapshot, *Call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = key
	if key.IsZero() {
		return Snapshot{Status: StatusIdle}, nil
	}

	entry, hasEntry := c.entries.Get(key)
	if hasEntry && c.freshLocked(entry) {
		c.publish(domain.CacheHitEvent{Key: key})
		return Snapshot{Key: key, Status: StatusReady, Entry: entry.Clone()}, nil
	}

	if _, ok := c.pending[key]; ok {
		c.publish(domain.FetchCoalescedEvent{Key: key})
	} else {
		c.pending[key] = struct{}{}
		delete(c.errs, key)
		c.publish(domain.FetchStartedEvent{Key: key, Revalidate: hasEntry})
	}

	// pending and the flight are cleared together under mu, so a pending key
	// always joins the running flight and any other key starts a new one
	ch := c.flights.DoChan(key.String(), func() (interface{}, error) {
		return c.fetch(key)
	})
	return c.snapshotLocked(key), newCall(key, ch)
}

// Current returns the snapshot for the active key
func (c *Cache) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(c.active)
}

// Active returns the active key
func (c *Cache) Active() domain.RequestKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached entry and recorded error. In-flight calls still complete.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.errs = make(map[domain.RequestKey]error)
}

// fetch runs once per flight and records the response before any caller sees it
func (c *Cache) fetch(key domain.RequestKey) (Outcome, error) {
	ctx := context.Background()
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.fetcher.Search(ctx, key)
	if err == nil && resp == nil {
		resp = &domain.SearchResponse{}
	}
	out := c.complete(key, resp, err, time.Since(start))
	return out, out.Err
}

func (c *Cache) complete(key domain.RequestKey, resp *domain.SearchResponse, err error, elapsed time.Duration) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, key)
	c.flights.Forget(key.String())

	if err != nil {
		c.errs[key] = err
		c.publish(domain.FetchFailedEvent{Key: key, Err: err, Duration: elapsed})
		c.log.Warn().Err(err).Str("query", key.Query).Msg("search failed")
	} else {
		delete(c.errs, key)
		entry := &domain.CacheEntry{
			Key:       key,
			Results:   resp.Results,
			TookMs:    resp.TookMs,
			FetchedAt: c.now(),
		}
		// a late response is kept under its own key and never becomes the active entry
		c.entries.Add(key, entry.Clone())
		c.publish(domain.FetchCompletedEvent{Key: key, Results: len(resp.Results), Duration: elapsed})
	}

	surfaced := key == c.active
	if !surfaced {
		c.publish(domain.StaleDiscardedEvent{Key: key, Active: c.active})
		c.log.Debug().Str("query", key.Query).Str("active", c.active.Query).Msg("discarded response for inactive key")
	}
	return Outcome{Key: key, Err: err, Surfaced: surfaced}
}

func (c *Cache) snapshotLocked(key domain.RequestKey) Snapshot {
	if key.IsZero() {
		return Snapshot{Status: StatusIdle}
	}

	entry, hasEntry := c.entries.Peek(key)
	_, loading := c.pending[key]
	switch {
	case loading:
		snap := Snapshot{Key: key, Status: StatusLoading}
		if hasEntry {
			snap.Entry = entry.Clone()
			snap.Stale = true
		}
		return snap
	case c.errs[key] != nil:
		return Snapshot{Key: key, Status: StatusError, Err: c.errs[key]}
	case hasEntry:
		return Snapshot{Key: key, Status: StatusReady, Entry: entry.Clone(), Stale: !c.freshLocked(entry)}
	default:
		// evicted while active
		return Snapshot{Key: key, Status: StatusIdle}
	}
}

func (c *Cache) freshLocked(entry *domain.CacheEntry) bool {
	if c.opts.TTL <= 0 {
		return true
	}
	return c.now().Sub(entry.FetchedAt) < c.opts.TTL
}

func (c *Cache) publish(event domain.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}
