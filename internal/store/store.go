//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable local key-value medium. Writes are synchronous: once
// Put or PutBatch returns nil, a subsequent Get observes the new value.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// PutBatch writes all entries atomically: either every key is updated or none is.
	PutBatch(entries map[string][]byte) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Open returns a Store for the given driver. path is the SQLite file for
// DriverSQLite, the data directory for DriverBadger and ignored for DriverMemory.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		if _, err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case DriverBadger:
		return OpenBadger(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
