// Package storage is the persistence adapter for small string values such as the
// recent-query list.
package storage

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by stores that have been closed
var ErrClosed = errors.New("storage: store is closed")

// Store is a durable string key-value store
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the store for a configured backend
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
