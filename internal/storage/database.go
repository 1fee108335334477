/**
* Name:         database.go
* Description:  sqlite-backed key-value table for persisted client state
* Workflow:     open database, create kv table, get/set/delete keys
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const createKVTable = `
	CREATE TABLE IF NOT EXISTS kv (
			"key" TEXT PRIMARY KEY,
			"value" TEXT NOT NULL,
			"updated_at" DATETIME NOT NULL
	)`

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(path string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite(): failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite(): failed to connect to database: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the poll loop and API handlers
	db.SetMaxOpenConns(1)
	logger.Info("OpenSQLite(): database opened", zap.String("path", path))
	return db, nil
}

// SQLiteKV stores keys in the kv table of a sqlite database.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates the kv table if it does not exist.
func NewSQLiteKV(ctx context.Context, db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		return nil, fmt.Errorf("NewSQLiteKV(): failed to create kv table: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return wrapSQLiteErr(err)
}

func (s *SQLiteKV) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return wrapSQLiteErr(err)
		}
	}
	return nil
}

func (s *SQLiteKV) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv`)
	return wrapSQLiteErr(err)
}

func wrapSQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_BUSY {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}
