// Package location holds the addressable form of the search state: a link such as
// searchdeck://search?q=edge+search&mode=neutral that reproduces the same search when
// opened again.
package location

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

const (
	Scheme = "searchdeck"
	Host   = "search"
)

// Location is the navigable state the query synchronizer mirrors to.
// Replace overwrites the current value without adding a history entry.
type Location interface {
	Read() url.Values
	Replace(values url.Values) error
}

// FormatLink renders values as a shareable link
func FormatLink(values url.Values) string {
	u := url.URL{Scheme: Scheme, Host: Host, RawQuery: values.Encode()}
	return u.String()
}

// ParseLink extracts query parameters from a link. It accepts a full link, a bare query
// string ("q=a&mode=auto" or "?q=a") and http(s) URLs. Unparseable input yields empty
// values and an error; callers fall back to defaults.
func ParseLink(link string) (url.Values, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return url.Values{}, nil
	}

	if !strings.Contains(link, "://") {
		values, err := url.ParseQuery(strings.TrimPrefix(link, "?"))
		if err != nil {
			return url.Values{}, fmt.Errorf("parsing link query: %w", err)
		}
		return values, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return url.Values{}, fmt.Errorf("parsing link: %w", err)
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return url.Values{}, fmt.Errorf("parsing link query: %w", err)
	}
	return values, nil
}

// Memory is an in-process Location
type Memory struct {
	mu       sync.Mutex
	values   url.Values
	replaces int
}

// NewMemory returns a Memory location holding a copy of initial
func NewMemory(initial url.Values) *Memory {
	return &Memory{values: clone(initial)}
}

func (m *Memory) Read() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.values)
}

func (m *Memory) Replace(values url.Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = clone(values)
	m.replaces++
	return nil
}

// Replaces returns how many times Replace was called
func (m *Memory) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}

func clone(values url.Values) url.Values {
	out := url.Values{}
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
