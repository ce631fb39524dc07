package chatstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRoomNotFound is returned by mutations that name an unknown room id.
	ErrRoomNotFound = errors.New("chat room not found")
	// ErrInvalidTitle is returned when a room title is empty after trimming.
	ErrInvalidTitle = errors.New("chat room title must not be empty")
	// ErrInvalidMessage wraps every message validation failure.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrNotInitialized is returned by mutations issued before Initialize.
	ErrNotInitialized = errors.New("chat store not initialized")
)

// StorageReadError reports a persisted key that was absent, unparseable or
// failed schema validation. Initialize recovers from it by seeding.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError reports a failed persist. The in-memory state is left as
// it was before the mutation.
type StorageWriteError struct {
	Keys []string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", strings.Join(e.Keys, ", "), e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

func roomNotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrRoomNotFound, id)
}
