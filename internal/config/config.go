package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. GEMCHAT_STORAGE_DRIVER.
const EnvPrefix = "GEMCHAT"

// Config represents the global ~/.gemchat/config.toml.
type Config struct {
	DefaultProfile string        `toml:"default_profile" envconfig:"DEFAULT_PROFILE"`
	Storage        StorageConfig `toml:"storage" envconfig:"STORAGE"`
	Reply          ReplyConfig   `toml:"reply" envconfig:"REPLY"`
	Log            LogConfig     `toml:"log" envconfig:"LOG"`
}

// StorageConfig selects the key-value driver backing the chat store.
type StorageConfig struct {
	Driver string `toml:"driver" envconfig:"DRIVER" validate:"oneof=sqlite badger memory"`
}

// ReplyConfig tunes the assistant reply simulator.
type ReplyConfig struct {
	Delay time.Duration `toml:"delay" envconfig:"DELAY" validate:"gte=0"`
}

// LogConfig sets the daemon log level.
type LogConfig struct {
	Level string `toml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "sqlite"},
		Reply:   ReplyConfig{Delay: 1500 * time.Millisecond},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads config from the given path on top of the defaults. Returns an
// error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers defaults, the optional config file at path and GEMCHAT_*
// environment variables, then validates the result.
func Read(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
