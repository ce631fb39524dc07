package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testBadger(t *testing.T) *Badger {
	t.Helper()
	b, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// drivers returns one instance of every Store implementation.
func drivers(t *testing.T) map[string]Store {
	return map[string]Store{
		DriverSQLite: testDB(t),
		DriverBadger: testBadger(t),
		DriverMemory: NewMemory(),
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate once.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("chat-rooms")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestPutThenGet(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("chat-rooms", []byte(`[]`)); err != nil {
				t.Fatal(err)
			}
			if err := s.Put("chat-rooms", []byte(`[{"id":"1"}]`)); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get("chat-rooms")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != `[{"id":"1"}]` {
				t.Errorf("Get() = %s, want overwritten value", got)
			}
		})
	}
}

func TestPutBatchWritesAllKeys(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			err := s.PutBatch(map[string][]byte{
				"chat-rooms":    []byte(`[]`),
				"chat-messages": []byte(`{}`),
			})
			if err != nil {
				t.Fatal(err)
			}
			for key, want := range map[string]string{"chat-rooms": `[]`, "chat-messages": `{}`} {
				got, err := s.Get(key)
				if err != nil {
					t.Fatalf("Get(%q) error = %v", key, err)
				}
				if string(got) != want {
					t.Errorf("Get(%q) = %s, want %s", key, got, want)
				}
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	value := []byte("abc")
	if err := m.Put("k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'

	got, _ := m.Get("k")
	if !bytes.Equal(got, []byte("abc")) {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}
	got[1] = 'y'
	again, _ := m.Get("k")
	if !bytes.Equal(again, []byte("abc")) {
		t.Errorf("stored value mutated through returned slice: %s", again)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemchat.db")
	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("chat-messages", []byte(`{"a":[]}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(DriverSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	got, err := s.Get("chat-messages")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":[]}` {
		t.Errorf("Get() = %s after reopen", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Error("Open() expected error for unknown driver")
	}
}
