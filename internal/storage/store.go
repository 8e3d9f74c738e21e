// Package storage is the device key-value store backing the access token and the anonymous watchlist
package storage

import (
	"context"
	"errors"
)

// Fixed keys shared by the session and watchlist stores
const (
	TokenKey     = "@reistream_token"
	WatchlistKey = "@reistream_watchlist"
)

var (
	ErrCgoDisabled = errors.New("CGO disabled: sqlite storage not available")
	ErrClosed      = errors.New("storage closed")
)

// Store is a string key-value store. A missing key is not an error: Get reports ok=false.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// IsCgoEnabled reports whether the sqlite backend was compiled in
var IsCgoEnabled = cgoEnabled

// Open returns the sqlite store at path, or an in-memory store when sqlite is unavailable.
// The second return value is false when the fallback was used.
func Open(path string) (Store, bool, error) {
	if !IsCgoEnabled {
		return NewMemoryStore(), false, nil
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}
