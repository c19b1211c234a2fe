package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Well-known record keys.
const (
	KeyFavorites      = "radioFavorites"
	KeyRecentlyPlayed = "radioRecentlyPlayed"
	KeyDarkMode       = "radioDarkMode"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV is a durable, process-local key-value store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases any resources held by the store.
	Close() error
}

// Open creates a KV from a location of the form "scheme:path".
//
// Supported schemes:
//   - file:<dir>     FileStore rooted at dir
//   - sqlite:<path>  SQLiteStore backed by the database file at path
//   - memory:        MemoryStore
//
// A location without a scheme is treated as a FileStore directory.
func Open(location string) (KV, error) {
	scheme, path, found := strings.Cut(location, ":")
	if !found {
		return NewFileStore(location)
	}

	switch scheme {
	case "file":
		return NewFileStore(path)
	case "sqlite", "sqlite3":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown scheme %q", scheme)
	}
}
