package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores each key as a BadgerDB entry.
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// OpenBadger opens (or creates) a BadgerDB directory with synchronous writes.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (b *Badger) Put(key string, value []byte) error {
	return b.PutBatch(map[string][]byte{key: value})
}

// PutBatch commits all entries in one read-write transaction.
func (b *Badger) PutBatch(entries map[string][]byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for key, value := range entries {
			if err := txn.Set([]byte(key), value); err != nil {
				return fmt.Errorf("set %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger update: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
