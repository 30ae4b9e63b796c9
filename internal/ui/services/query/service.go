// Package query is the single source of truth for the query, filters and mode. It
// mirrors query and mode to the addressable location and adopts them back from it.
package query

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
	"searchdeck/internal/location"
)

// Service owns Query, draft, FiltersState and Mode. It is driven from the UI update loop
// and is not safe for concurrent use.
type Service struct {
	query     string
	draft     string
	submitted string
	filters   domain.FiltersState
	mode      domain.Mode

	debounce *Debouncer
	lastSeen string // last location value adopted or written by us

	loc      location.Location
	recents  Recents
	resolver Resolver
	bus      eventbus.EventBus
	log      zerolog.Logger
}

// Options configures a Service
type Options struct {
	Mode     domain.Mode
	Debounce *Debouncer
	Location location.Location
	Recents  Recents
	Resolver Resolver
	Bus      eventbus.EventBus
}

// NewService creates a synchronizer with default filters
func NewService(opts Options, log zerolog.Logger) *Service {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeAuto
	}
	debounce := opts.Debounce
	if debounce == nil {
		debounce = NewDebouncer(DefaultDebounce)
	}
	loc := opts.Location
	if loc == nil {
		loc = location.NewMemory(nil)
	}
	return &Service{
		filters:  domain.DefaultFilters(),
		mode:     mode,
		debounce: debounce,
		loc:      loc,
		recents:  opts.Recents,
		resolver: opts.Resolver,
		bus:      opts.Bus,
		log:      log.With().Str("component", "query").Logger(),
	}
}

func (s *Service) Query() string                { return s.query }
func (s *Service) Draft() string                { return s.draft }
func (s *Service) Submitted() string            { return s.submitted }
func (s *Service) Filters() domain.FiltersState { return s.filters }
func (s *Service) Mode() domain.Mode            { return s.mode }
func (s *Service) Debouncer() *Debouncer        { return s.debounce }

// ActiveKey returns the key of the last submitted query under the current filters and mode
func (s *Service) ActiveKey() domain.RequestKey {
	return domain.KeyFor(s.submitted, s.filters, s.mode)
}

// SetDraft records raw input immediately and schedules a debounced commit. The returned
// handle must be passed to Commit once the delay elapses.
func (s *Service) SetDraft(text string) Handle {
	s.draft = text
	return s.debounce.Schedule()
}

// Commit writes the draft to Query if h is still the pending commit
func (s *Service) Commit(h Handle) bool {
	if !s.debounce.Fire(h) {
		return false
	}
	s.SetQuery(s.draft)
	return true
}

// SetQuery updates Query without debouncing and reflects it to the location
func (s *Service) SetQuery(q string) {
	s.query = strings.TrimSpace(q)
	s.reflect()
}

// SubmitQuery runs a search for q. Blank input is a no-op and returns false.
func (s *Service) SubmitQuery(q string) (Submission, bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Submission{}, false
	}

	s.debounce.Cancel()
	s.draft = q
	s.query = q
	s.submitted = q
	s.reflect()

	if s.recents != nil {
		s.recents.Add(q)
	}
	key := s.ActiveKey()
	s.publish(domain.QuerySubmittedEvent{Key: key})
	return s.resolve(key), true
}

// SetFilters replaces the filter selection and re-resolves the submitted query
func (s *Service) SetFilters(f domain.FiltersState) Submission {
	s.filters = f
	return s.resolve(s.ActiveKey())
}

// SetMode switches the ranking mode, reflects it and re-resolves the submitted query
func (s *Service) SetMode(m domain.Mode) Submission {
	s.mode = m
	s.reflect()
	return s.resolve(s.ActiveKey())
}

// Refresh resolves the submitted query again under the current filters and mode
func (s *Service) Refresh() Submission {
	return s.resolve(s.ActiveKey())
}

// AdoptLocation takes q and mode from the location when they changed externally.
// Each distinct location value is adopted at most once, and a value that already
// matches the in-memory state is ignored. Adopting a non-empty q resolves its key but
// does not add it to the recent list.
func (s *Service) AdoptLocation() (Submission, bool) {
	values := s.loc.Read()
	sig := signature(values)
	if sig == s.lastSeen {
		return Submission{}, false
	}
	s.lastSeen = sig

	q := strings.TrimSpace(values.Get("q"))
	mode := s.mode
	if values.Has("mode") {
		mode = domain.ParseMode(values.Get("mode"))
	}
	if (q == "" || q == s.submitted) && mode == s.mode {
		return Submission{}, false
	}

	s.mode = mode
	if q != "" {
		s.debounce.Cancel()
		s.query = q
		s.draft = q
		s.submitted = q
	}
	s.publish(domain.LocationAdoptedEvent{Query: q, Mode: mode})
	s.log.Debug().Str("query", q).Str("mode", string(mode)).Msg("adopted location")
	return s.resolve(s.ActiveKey()), true
}

// Link returns the shareable link for the current state
func (s *Service) Link() string {
	return location.FormatLink(s.values())
}

func (s *Service) resolve(key domain.RequestKey) Submission {
	sub := Submission{Key: key}
	if s.resolver != nil {
		sub.Snapshot, sub.Call = s.resolver.Resolve(key)
	}
	return sub
}

func (s *Service) values() url.Values {
	v := url.Values{}
	if s.query != "" {
		v.Set("q", s.query)
	}
	v.Set("mode", string(s.mode))
	return v
}

// reflect replaces the location with the current query and mode
func (s *Service) reflect() {
	values := s.values()
	sig := signature(values)
	if sig == s.lastSeen {
		return
	}
	if err := s.loc.Replace(values); err != nil {
		s.log.Warn().Err(err).Msg("updating location")
		return
	}
	s.lastSeen = sig
}

func (s *Service) publish(event domain.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

// signature is the part of the location the synchronizer cares about
func signature(values url.Values) string {
	v := url.Values{}
	if q := strings.TrimSpace(values.Get("q")); q != "" {
		v.Set("q", q)
	}
	if values.Has("mode") {
		v.Set("mode", values.Get("mode"))
	}
	return v.Encode()
}
