package recent

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
	"searchdeck/internal/storage"
)

const (
	// StorageKey is the store key the list is serialized under
	StorageKey = "recent-searches"
	// MaxEntries caps the list length
	MaxEntries = 10
)

// Service owns the recent-query list. A store that cannot be read or written degrades
// the list to session-only memory.
type Service struct {
	mu    sync.RWMutex
	items []string
	store storage.Store
	bus   eventbus.EventBus
	log   zerolog.Logger
}

// Load reads the persisted list once. Read or decode failures start from an empty list.
func Load(store storage.Store, bus eventbus.EventBus, log zerolog.Logger) *Service {
	s := &Service{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "recent").Logger(),
	}

	items, err := s.read()
	if err != nil {
		s.persistFailed("load", err)
		return s
	}
	s.items = normalize(items)
	return s
}

// Items returns the list, most recent first
func (s *Service) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.items...)
}

// Add moves q to the front of the list, dropping any earlier copy and trimming the
// list to MaxEntries. Blank queries are ignored.
func (s *Service) Add(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}

	s.mu.Lock()
	next := make([]string, 0, MaxEntries)
	next = append(next, q)
	for _, item := range s.items {
		if item == q {
			continue
		}
		if len(next) == MaxEntries {
			break
		}
		next = append(next, item)
	}
	s.items = next
	snapshot := append([]string(nil), next...)
	s.mu.Unlock()

	if err := s.write(snapshot); err != nil {
		s.persistFailed("save", err)
	}
}

// Clear empties the list and removes it from the store
func (s *Service) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(StorageKey); err != nil {
			s.persistFailed("clear", fmt.Errorf("deleting recent searches: %w", err))
		}
	}
	if s.bus != nil {
		s.bus.Publish(domain.RecentClearedEvent{})
	}
}

func (s *Service) read() ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	raw, ok, err := s.store.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading recent searches: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding recent searches: %w", err)
	}
	return items, nil
}

func (s *Service) write(items []string) error {
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding recent searches: %w", err)
	}
	if err := s.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("writing recent searches: %w", err)
	}
	return nil
}

func (s *Service) persistFailed(op string, err error) {
	s.log.Warn().Err(err).Str("op", op).Msg("recent searches not persisted")
	if s.bus != nil {
		s.bus.Publish(domain.PersistFailedEvent{Op: op, Err: err})
	}
}

// normalize trims, drops blanks and duplicates, and caps a list read from storage
func normalize(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
