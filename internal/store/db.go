package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection for the app-owned gemchat.db.
type DB struct {
	*sql.DB
}

var _ Store = (*DB)(nil)

// OpenSQLite creates a new SQLite connection with WAL mode and recommended pragmas.
func OpenSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=FULL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// Get returns the value stored under key.
func (db *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Put inserts or replaces a single key.
func (db *DB) Put(key string, value []byte) error {
	if _, err := db.Exec(upsertKV, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// PutBatch writes all entries in a single transaction.
func (db *DB) PutBatch(entries map[string][]byte) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for key, value := range entries {
		if _, err := tx.Exec(upsertKV, key, value, now); err != nil {
			return fmt.Errorf("put %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const upsertKV = `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`
