//go:build !cgo

package storage

const cgoEnabled = false

// SQLiteStore is unavailable without CGO
type SQLiteStore struct{ MemoryStore }

// OpenSQLite always fails when built with CGO_ENABLED=0
func OpenSQLite(string) (*SQLiteStore, error) {
	return nil, ErrCgoDisabled
}
