package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "work"
	cfg.Storage.Driver = "badger"
	cfg.Reply.Delay = 250 * time.Millisecond
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.Storage.Driver != "badger" {
		t.Errorf("Storage.Driver = %q, want badger", loaded.Storage.Driver)
	}
	if loaded.Reply.Delay != 250*time.Millisecond {
		t.Errorf("Reply.Delay = %v, want 250ms", loaded.Reply.Delay)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadKeepsDefaultsForUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[reply]\ndelay = \"2s\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reply.Delay != 2*time.Second {
		t.Errorf("Reply.Delay = %v, want 2s", cfg.Reply.Delay)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Log.Level != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestReadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Read() = %+v, want defaults", cfg)
	}
}

func TestReadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"home\"\n[storage]\ndriver = \"badger\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMCHAT_STORAGE_DRIVER", "memory")
	t.Setenv("GEMCHAT_REPLY_DELAY", "10ms")

	cfg, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultProfile != "home" {
		t.Errorf("DefaultProfile = %q, want home", cfg.DefaultProfile)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory from env", cfg.Storage.Driver)
	}
	if cfg.Reply.Delay != 10*time.Millisecond {
		t.Errorf("Reply.Delay = %v, want 10ms from env", cfg.Reply.Delay)
	}
}

func TestReadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\ndriver = \"redis\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("Read() expected error for unknown storage driver")
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
