// Package kv provides the durable key-value slots goldlog keeps its data in.
//
// A Store only knows about string keys and string values. Three backends are
// available:
//   - Memory: a map, for tests and throw-away sessions.
//   - Dir: one human readable file per key inside a folder, git friendly.
//   - SQLite: a single table in a sqlite database file.
//
// Open selects a backend from a storage URL such as "dir:.goldlog",
// "sqlite:gold.db" or "memory:".
package kv

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Store is a durable key-value store.
//
// Get reports ok=false when the key has never been set. Set replaces any
// previous value. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

const (
	SchemeDir    = "dir"
	SchemeSQLite = "sqlite"
	SchemeMemory = "memory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open parses a storage URL and returns the matching Store.
//
// The returned Closer must be closed when the store is no longer needed.
func Open(url string) (Store, io.Closer, error) {
	scheme, path, found := strings.Cut(url, ":")
	if !found {
		return nil, nil, fmt.Errorf("invalid storage url %q: expected <scheme>:<path>", url)
	}
	switch scheme {
	case SchemeDir:
		if path == "" {
			return nil, nil, fmt.Errorf("invalid storage url %q: missing folder", url)
		}
		return NewDir(path), nopCloser{}, nil
	case SchemeSQLite:
		if path == "" {
			return nil, nil, fmt.Errorf("invalid storage url %q: missing database file", url)
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case SchemeMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("invalid storage url %q: unknown scheme %q", url, scheme)
	}
}
