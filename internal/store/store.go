// Package store persists named options. Each key is written atomically on its own;
// there is no transaction spanning several keys.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get for a key that was never set or was deleted.
var ErrNotFound = errors.New("option not found")

// Store is a key-value option store. Values are opaque JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open opens a store from a DSN:
//   - memory://
//   - file:///path/to/options.json
//   - sqlite:///path/to/options.db
//   - bolt:///path/to/options.bolt
//
// A bare path is treated as a SQLite database.
func Open(dsn string) (Store, error) {
	scheme, path, ok := strings.Cut(dsn, "://")
	if !ok {
		scheme, path = "sqlite", dsn
	}

	switch scheme {
	case "memory":
		return NewMemory(), nil
	case "file":
		return OpenFile(path)
	case "sqlite":
		return OpenSQLite(path)
	case "bolt":
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", scheme)
	}
}
