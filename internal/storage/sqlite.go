//go:build cgo

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/util"
)

const (
	busyTimeout       = 5000 // ms
	walAutoCheckpoint = 1000 // pages
	maxOpenConns      = 2
	maxIdleConns      = 1
)

// SQLiteStore persists key-value pairs in a single sqlite table
type SQLiteStore struct {
	db       *sql.DB
	getPS    *sql.Stmt
	upsertPS *sql.Stmt
	deletePS *sql.Stmt
}

// OpenSQLite opens (creating if needed) the store at dbPath
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	path := dbPath
	// sqlite URIs need forward slashes on Windows
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(dbPath, "\\", "/")
	}
	dsn := fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_synchronous=NORMAL&_wal_autocheckpoint=%d&_busy_timeout=%d&_mode=rwc",
		path,
		walAutoCheckpoint,
		busyTimeout,
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := initializeDatabase(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			util.Debug("Failed to close database", "err", closeErr)
		}
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.prepare(); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			util.Debug("Failed to close database", "err", closeErr)
		}
		return nil, err
	}
	return s, nil
}

func initializeDatabase(db *sql.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT    PRIMARY KEY,
		value      TEXT    NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "schema creation failed")
	}
	return nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	if s.getPS, err = s.db.Prepare(`SELECT value FROM kv WHERE key = ?`); err != nil {
		return errors.Wrap(err, "get preparation failed")
	}
	if s.upsertPS, err = s.db.Prepare(`INSERT INTO kv (key, value, updated_at) VALUES (?,?,?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`); err != nil {
		return errors.Wrap(err, "upsert preparation failed")
	}
	if s.deletePS, err = s.db.Prepare(`DELETE FROM kv WHERE key = ?`); err != nil {
		return errors.Wrap(err, "delete preparation failed")
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.getPS == nil {
		return "", false, ErrClosed
	}
	var value string
	err := s.getPS.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %q", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if s == nil || s.upsertPS == nil {
		return ErrClosed
	}
	if _, err := s.upsertPS.ExecContext(ctx, key, value, time.Now().Unix()); err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.deletePS == nil {
		return ErrClosed
	}
	if _, err := s.deletePS.ExecContext(ctx, key); err != nil {
		return errors.Wrapf(err, "deleting %q", key)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	var finalErr error

	closeStmt := func(stmt *sql.Stmt, name string) {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				finalErr = fmt.Errorf("%s statement close error: %w", name, err)
			}
		}
	}
	closeStmt(s.getPS, "get")
	closeStmt(s.upsertPS, "upsert")
	closeStmt(s.deletePS, "delete")
	s.getPS, s.upsertPS, s.deletePS = nil, nil, nil

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			finalErr = fmt.Errorf("database close error: %w", err)
		}
	}
	return finalErr
}
