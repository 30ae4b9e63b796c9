package results

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
)

// gatedFetcher blocks each key until the test releases it
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan result
	calls map[string]*int32
	total int32
}

type result struct {
	resp *domain.SearchResponse
	err  error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: map[string]chan result{}, calls: map[string]*int32{}}
}

func (f *gatedFetcher) gate(q string) chan result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates[q] == nil {
		f.gates[q] = make(chan result, 1)
		var n int32
		f.calls[q] = &n
	}
	return f.gates[q]
}

func (f *gatedFetcher) Search(ctx context.Context, key domain.RequestKey) (*domain.SearchResponse, error) {
	g := f.gate(key.Query)
	f.mu.Lock()
	atomic.AddInt32(f.calls[key.Query], 1)
	f.mu.Unlock()
	atomic.AddInt32(&f.total, 1)

	select {
	case r := <-g:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) release(q string, titles ...string) {
	resp := &domain.SearchResponse{TookMs: 7}
	for _, title := range titles {
		resp.Results = append(resp.Results, domain.SearchResult{ID: title, Title: title, URL: "https://example.test/" + title})
	}
	f.gate(q) <- result{resp: resp}
}

func (f *gatedFetcher) fail(q string, err error) {
	f.gate(q) <- result{err: err}
}

func (f *gatedFetcher) count(q string) int32 {
	f.gate(q)
	f.mu.Lock()
	defer f.mu.Unlock()
	return atomic.LoadInt32(f.calls[q])
}

func key(q string) domain.RequestKey {
	return domain.KeyFor(q, domain.DefaultFilters(), domain.ModeAuto)
}

func wait(t *testing.T, call *Call) Outcome {
	t.Helper()
	require.NotNil(t, call)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := call.Wait(ctx)
	require.NoError(t, err)
	return out
}

func TestResolveZeroKeyIsIdle(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	snap, call := c.Resolve(domain.RequestKey{})

	assert.Nil(t, call)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Results())
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.total))
}

func TestResolveCoalescesConcurrentCalls(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{}, rec, zerolog.Nop())

	snap1, call1 := c.Resolve(key("ai"))
	snap2, call2 := c.Resolve(key("ai"))

	assert.Equal(t, StatusLoading, snap1.Status)
	assert.Equal(t, StatusLoading, snap2.Status)

	f.release("ai", "one")
	out1 := wait(t, call1)
	out2 := wait(t, call2)
	assert.True(t, out1.Surfaced)
	assert.Equal(t, out1, out2)
	assert.True(t, out1.Shared, "both resolves waited on one fetch")

	assert.EqualValues(t, 1, f.count("ai"))
	assert.Equal(t, 1, rec.Count(domain.EventFetchStarted))
	assert.Equal(t, 1, rec.Count(domain.EventFetchCoalesced))

	cur := c.Current()
	assert.Equal(t, StatusReady, cur.Status)
	require.Len(t, cur.Results(), 1)
	assert.Equal(t, "one", cur.Results()[0].Title)
}

func TestResolveFreshEntryIsCacheHit(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{TTL: time.Minute}, rec, zerolog.Nop())

	_, call := c.Resolve(key("ai"))
	f.release("ai", "one")
	wait(t, call)

	snap, call := c.Resolve(key("ai"))
	assert.Nil(t, call)
	assert.Equal(t, StatusReady, snap.Status)
	assert.False(t, snap.Stale)
	assert.EqualValues(t, 1, f.count("ai"))
	assert.Equal(t, 1, rec.Count(domain.EventCacheHit))
}

func TestLateResponseForSupersededKeyIsDiscarded(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{}, rec, zerolog.Nop())

	_, callA := c.Resolve(key("a"))
	_, callB := c.Resolve(key("b"))

	f.release("b", "from-b")
	outB := wait(t, callB)
	assert.True(t, outB.Surfaced)

	f.release("a", "from-a")
	outA := wait(t, callA)
	assert.False(t, outA.Surfaced)

	cur := c.Current()
	assert.Equal(t, key("b"), cur.Key)
	require.Len(t, cur.Results(), 1)
	assert.Equal(t, "from-b", cur.Results()[0].Title)
	assert.Equal(t, 1, rec.Count(domain.EventStaleDiscarded))
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	_, call := c.Resolve(key("ai"))
	f.release("ai", "one")
	wait(t, call)

	snap := c.Current()
	snap.Entry.Results[0].Title = "mutated"
	assert.Equal(t, "one", c.Current().Results()[0].Title)
}

func TestFailureIsScopedToKeyAndRetryable(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{}, rec, zerolog.Nop())

	_, call := c.Resolve(key("good"))
	f.release("good", "ok")
	wait(t, call)

	boom := errors.New("502")
	_, call = c.Resolve(key("bad"))
	f.fail("bad", boom)
	out := wait(t, call)
	assert.ErrorIs(t, out.Err, boom)

	cur := c.Current()
	assert.Equal(t, StatusError, cur.Status)
	assert.ErrorIs(t, cur.Err, boom)
	assert.Empty(t, cur.Results())
	assert.Equal(t, 1, rec.Count(domain.EventFetchFailed))

	// other keys are untouched
	snap, call := c.Resolve(key("good"))
	assert.Nil(t, call)
	assert.Equal(t, StatusReady, snap.Status)

	// retry issues a fresh fetch
	snap, call = c.Resolve(key("bad"))
	require.NotNil(t, call)
	assert.Equal(t, StatusLoading, snap.Status)
	f.release("bad", "recovered")
	wait(t, call)
	assert.Equal(t, StatusReady, c.Current().Status)
	assert.EqualValues(t, 2, f.count("bad"))
}

func TestExpiredEntryIsRevalidated(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{TTL: time.Minute}, rec, zerolog.Nop())

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	_, call := c.Resolve(key("ai"))
	f.release("ai", "old")
	wait(t, call)

	now = now.Add(2 * time.Minute)
	assert.True(t, c.Current().Stale)

	snap, call := c.Resolve(key("ai"))
	require.NotNil(t, call)
	assert.Equal(t, StatusLoading, snap.Status)
	assert.True(t, snap.Stale)
	require.Len(t, snap.Results(), 1)
	assert.Equal(t, "old", snap.Results()[0].Title)

	f.release("ai", "new")
	wait(t, call)

	cur := c.Current()
	assert.Equal(t, StatusReady, cur.Status)
	assert.False(t, cur.Stale)
	assert.Equal(t, "new", cur.Results()[0].Title)

	var revalidations int
	for _, e := range rec.Events() {
		if started, ok := e.(domain.FetchStartedEvent); ok && started.Revalidate {
			revalidations++
		}
	}
	assert.Equal(t, 1, revalidations)
}

func TestResolveZeroKeyClearsActive(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	_, call := c.Resolve(key("ai"))
	c.Resolve(domain.RequestKey{})

	f.release("ai", "one")
	out := wait(t, call)
	assert.False(t, out.Surfaced)
	assert.Equal(t, StatusIdle, c.Current().Status)
	assert.True(t, c.Active().IsZero())
}

func TestLRUCapEvictsOldestKeys(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{Size: 2}, nil, zerolog.Nop())

	for _, q := range []string{"a", "b", "c"} {
		_, call := c.Resolve(key(q))
		f.release(q, q)
		wait(t, call)
	}
	assert.Equal(t, 2, c.Len())

	_, call := c.Resolve(key("a"))
	assert.NotNil(t, call, "evicted key is fetched again")
	f.release("a", "a")
	wait(t, call)
}

func TestFetchTimeoutSurfacesError(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{Timeout: 20 * time.Millisecond}, nil, zerolog.Nop())

	_, call := c.Resolve(key("slow"))
	out := wait(t, call)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Equal(t, StatusError, c.Current().Status)
}

func TestFetcherFunc(t *testing.T) {
	var n int32
	c := New(FetcherFunc(func(ctx context.Context, k domain.RequestKey) (*domain.SearchResponse, error) {
		atomic.AddInt32(&n, 1)
		return nil, nil
	}), Options{}, nil, zerolog.Nop())

	_, call := c.Resolve(key("x"))
	wait(t, call)
	cur := c.Current()
	assert.Equal(t, StatusReady, cur.Status)
	assert.Empty(t, cur.Results())
	assert.EqualValues(t, 1, atomic.LoadInt32(&n))
}

func TestSingleResolveIsNotShared(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	_, call := c.Resolve(key("solo"))
	f.release("solo", "one")

	out := wait(t, call)
	assert.False(t, out.Shared)
	assert.True(t, out.Surfaced)
	assert.Equal(t, key("solo"), out.Key)
}

func TestRetryAfterFailureStartsNewFetch(t *testing.T) {
	f := newGatedFetcher()
	rec := eventbus.NewRecorder()
	c := New(f, Options{}, rec, zerolog.Nop())

	_, call := c.Resolve(key("flaky"))
	f.fail("flaky", errors.New("boom"))
	out := wait(t, call)
	require.Error(t, out.Err)
	assert.Equal(t, StatusError, c.Current().Status)

	snap, retry := c.Resolve(key("flaky"))
	require.NotNil(t, retry)
	assert.Equal(t, StatusLoading, snap.Status)

	f.release("flaky", "fixed")
	out = wait(t, retry)
	require.NoError(t, out.Err)
	assert.False(t, out.Shared, "retry must not join the finished flight")

	assert.EqualValues(t, 2, f.count("flaky"))
	assert.Equal(t, 2, rec.Count(domain.EventFetchStarted))
	assert.Equal(t, 0, rec.Count(domain.EventFetchCoalesced))
	require.Len(t, c.Current().Results(), 1)
}

func TestManyConcurrentResolvesShareOneFetch(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	calls := make([]*Call, 8)
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, calls[i] = c.Resolve(key("burst"))
		}(i)
	}
	wg.Wait()

	f.release("burst", "one")
	for _, call := range calls {
		out := wait(t, call)
		assert.NoError(t, out.Err)
		assert.True(t, out.Shared)
	}
	assert.EqualValues(t, 1, f.count("burst"))
}

func TestPurgeForcesRefetch(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{}, nil, zerolog.Nop())

	_, call := c.Resolve(key("ai"))
	f.release("ai", "one")
	wait(t, call)
	require.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())

	snap, call := c.Resolve(key("ai"))
	require.NotNil(t, call)
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Nil(t, snap.Entry, "nothing cached to show while refetching")

	f.release("ai", "two")
	wait(t, call)
	assert.EqualValues(t, 2, f.count("ai"))
	assert.Equal(t, "two", c.Current().Results()[0].Title)
}
