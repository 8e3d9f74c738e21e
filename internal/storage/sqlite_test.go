//go:build cgo

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "device.db")

	s, err := OpenSQLite(dbPath)
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.NoError(t, s.Close())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	defer func() {
		if err := s.Close(); err != nil {
			t.Logf("Error closing store: %v", err)
		}
	}()

	exerciseStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "device.db")
	ctx := context.Background()

	s, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, TokenKey, "persisted"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dbPath)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestSQLiteStoreClosed(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), TokenKey)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenUsesSQLiteWhenAvailable(t *testing.T) {
	s, persistent, err := Open(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, persistent)
	_, isSQLite := s.(*SQLiteStore)
	assert.True(t, isSQLite)
}
