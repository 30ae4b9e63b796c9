package query

import (
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
	"searchdeck/internal/location"
	"searchdeck/internal/ui/services/results"
)

type fakeRecents struct {
	added []string
}

func (f *fakeRecents) Add(q string) { f.added = append(f.added, q) }

type fakeResolver struct {
	keys []domain.RequestKey
}

func (f *fakeResolver) Resolve(key domain.RequestKey) (results.Snapshot, *results.Call) {
	f.keys = append(f.keys, key)
	if key.IsZero() {
		return results.Snapshot{Status: results.StatusIdle}, nil
	}
	return results.Snapshot{Key: key, Status: results.StatusLoading}, nil
}

type fixture struct {
	svc      *Service
	loc      *location.Memory
	recents  *fakeRecents
	resolver *fakeResolver
	bus      *eventbus.Recorder
}

func newFixture(initial url.Values) *fixture {
	f := &fixture{
		loc:      location.NewMemory(initial),
		recents:  &fakeRecents{},
		resolver: &fakeResolver{},
		bus:      eventbus.NewRecorder(),
	}
	f.svc = NewService(Options{
		Location: f.loc,
		Recents:  f.recents,
		Resolver: f.resolver,
		Bus:      f.bus,
	}, zerolog.Nop())
	return f
}

func TestSubmitBlankIsNoOp(t *testing.T) {
	f := newFixture(nil)
	_, ok := f.svc.SubmitQuery("edge search")
	require.True(t, ok)
	keyBefore := f.svc.ActiveKey()
	replaces := f.loc.Replaces()

	for _, q := range []string{"", "   ", "\t\n"} {
		sub, ok := f.svc.SubmitQuery(q)
		assert.False(t, ok)
		assert.True(t, sub.Key.IsZero())
	}

	assert.Equal(t, "edge search", f.svc.Query())
	assert.Equal(t, keyBefore, f.svc.ActiveKey())
	assert.Equal(t, []string{"edge search"}, f.recents.added)
	assert.Len(t, f.resolver.keys, 1)
	assert.Equal(t, replaces, f.loc.Replaces())
}

func TestSubmitUpdatesQueryRecentsAndResolves(t *testing.T) {
	f := newFixture(nil)

	sub, ok := f.svc.SubmitQuery("  knowledge graphs ")
	require.True(t, ok)

	want := domain.KeyFor("knowledge graphs", domain.DefaultFilters(), domain.ModeAuto)
	assert.Equal(t, want, sub.Key)
	assert.Equal(t, results.StatusLoading, sub.Snapshot.Status)
	assert.Equal(t, "knowledge graphs", f.svc.Query())
	assert.Equal(t, []string{"knowledge graphs"}, f.recents.added)
	assert.Equal(t, []domain.RequestKey{want}, f.resolver.keys)
	assert.Equal(t, "knowledge graphs", f.loc.Read().Get("q"))
	assert.Equal(t, 1, f.bus.Count(domain.EventQuerySubmitted))
}

func TestSetQueryReplacesLocation(t *testing.T) {
	f := newFixture(nil)

	f.svc.SetQuery("a")
	f.svc.SetQuery("ab")
	f.svc.SetQuery("ab")

	assert.Equal(t, "ab", f.loc.Read().Get("q"))
	assert.Equal(t, 2, f.loc.Replaces(), "an unchanged value is not written again")
	assert.Empty(t, f.resolver.keys, "typing does not fetch")
}

func TestDebouncedCommit(t *testing.T) {
	f := newFixture(nil)

	h1 := f.svc.SetDraft("a")
	h2 := f.svc.SetDraft("ai")
	assert.Equal(t, "ai", f.svc.Draft())
	assert.Equal(t, "", f.svc.Query(), "draft is not committed before the delay")

	assert.False(t, f.svc.Commit(h1), "superseded handle")
	assert.Equal(t, "", f.svc.Query())

	assert.True(t, f.svc.Commit(h2))
	assert.Equal(t, "ai", f.svc.Query())
	assert.False(t, f.svc.Commit(h2), "a handle fires once")
}

func TestSubmitCancelsPendingCommit(t *testing.T) {
	f := newFixture(nil)
	h := f.svc.SetDraft("partial")
	f.svc.SubmitQuery("full query")

	assert.False(t, f.svc.Commit(h))
	assert.Equal(t, "full query", f.svc.Query())
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultDebounce, d.Delay())

	_, ok := d.Pending()
	assert.False(t, ok)
	assert.False(t, d.Fire(0))

	h := d.Schedule()
	pending, ok := d.Pending()
	assert.True(t, ok)
	assert.Equal(t, h, pending)

	d.Cancel()
	assert.False(t, d.Fire(h))
}

func TestAdoptLocationOnLoad(t *testing.T) {
	f := newFixture(url.Values{"q": {"design tokens"}, "mode": {"neutral"}})

	sub, ok := f.svc.AdoptLocation()
	require.True(t, ok)

	assert.Equal(t, "design tokens", f.svc.Query())
	assert.Equal(t, domain.ModeNeutral, f.svc.Mode())
	assert.Equal(t, domain.KeyFor("design tokens", domain.DefaultFilters(), domain.ModeNeutral), sub.Key)
	assert.Empty(t, f.recents.added, "adoption does not touch recent searches")
	assert.Equal(t, 1, f.bus.Count(domain.EventLocationAdopted))
}

func TestAdoptLocationAtMostOncePerValue(t *testing.T) {
	f := newFixture(url.Values{"q": {"ai"}})

	_, ok := f.svc.AdoptLocation()
	require.True(t, ok)
	_, ok = f.svc.AdoptLocation()
	assert.False(t, ok)
	assert.Len(t, f.resolver.keys, 1)
}

func TestAdoptIgnoresOwnWrites(t *testing.T) {
	f := newFixture(nil)
	f.svc.SubmitQuery("mine")
	resolves := len(f.resolver.keys)

	_, ok := f.svc.AdoptLocation()
	assert.False(t, ok, "a value we wrote is not adopted back")
	assert.Len(t, f.resolver.keys, resolves)
}

func TestAdoptIgnoresMatchingState(t *testing.T) {
	f := newFixture(nil)
	f.svc.SubmitQuery("same")

	// an external writer puts back an equivalent value in a different form
	require.NoError(t, f.loc.Replace(url.Values{"q": {"  same "}, "mode": {"auto"}}))
	_, ok := f.svc.AdoptLocation()
	assert.False(t, ok)
}

func TestAdoptExternalChange(t *testing.T) {
	f := newFixture(nil)
	f.svc.SubmitQuery("mine")

	require.NoError(t, f.loc.Replace(url.Values{"q": {"theirs"}, "mode": {"personalized"}}))
	sub, ok := f.svc.AdoptLocation()
	require.True(t, ok)
	assert.Equal(t, "theirs", sub.Key.Query)
	assert.Equal(t, domain.ModePersonalized, f.svc.Mode())
}

func TestAdoptMalformedModeFallsBackToAuto(t *testing.T) {
	f := newFixture(url.Values{"q": {"x"}, "mode": {"warp-speed"}})
	f.svc.mode = domain.ModeNeutral

	_, ok := f.svc.AdoptLocation()
	require.True(t, ok)
	assert.Equal(t, domain.ModeAuto, f.svc.Mode())
}

func TestAdoptEmptyLocationKeepsDefaults(t *testing.T) {
	f := newFixture(nil)
	_, ok := f.svc.AdoptLocation()
	assert.False(t, ok)
	assert.Equal(t, "", f.svc.Query())
	assert.Equal(t, domain.ModeAuto, f.svc.Mode())
}

func TestSetFiltersAndModeReResolve(t *testing.T) {
	f := newFixture(nil)
	f.svc.SubmitQuery("ai")

	sub := f.svc.SetFilters(f.svc.Filters().WithNextType())
	assert.Equal(t, domain.TypeArticle, sub.Key.Filters.Type)

	sub = f.svc.SetMode(domain.ModePersonalized)
	assert.Equal(t, domain.ModePersonalized, sub.Key.Mode)
	assert.Equal(t, "personalized", f.loc.Read().Get("mode"))
	assert.Len(t, f.resolver.keys, 3)
	assert.Len(t, f.recents.added, 1, "re-resolving is not a submission")
}

func TestSetFiltersWithoutSubmissionStaysIdle(t *testing.T) {
	f := newFixture(nil)
	sub := f.svc.SetFilters(f.svc.Filters().WithSafe(false))
	assert.True(t, sub.Key.IsZero())
	assert.Equal(t, results.StatusIdle, sub.Snapshot.Status)
}

func TestLink(t *testing.T) {
	f := newFixture(nil)
	f.svc.SubmitQuery("edge search")
	assert.Equal(t, "searchdeck://search?mode=auto&q=edge+search", f.svc.Link())
}

func TestRefreshResolvesSubmittedKeyAgain(t *testing.T) {
	f := newFixture(nil)
	first, _ := f.svc.SubmitQuery("ai")

	sub := f.svc.Refresh()

	assert.Equal(t, first.Key, sub.Key)
	assert.Equal(t, []domain.RequestKey{first.Key, first.Key}, f.resolver.keys)
	assert.Len(t, f.recents.added, 1, "refreshing is not a submission")
	assert.Equal(t, 1, f.bus.Count(domain.EventQuerySubmitted))
}
