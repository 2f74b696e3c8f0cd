// Package config provides configuration loading for the form builder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/paths"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultBackupCount is how many previous versions of the store file are kept.
const DefaultBackupCount = 5

// Config represents the merged form builder configuration
type Config struct {
	Store StoreConfig `json:"store" toml:"store" yaml:"store"`
	Log   LogConfig   `json:"log" toml:"log" yaml:"log"`
}

// StoreConfig selects where saved forms are kept
type StoreConfig struct {
	Backend string `json:"backend" toml:"backend" yaml:"backend" env:"FORMBUILDER_STORE_BACKEND"` // "file", "sqlite" or "memory"
	Path    string `json:"path" toml:"path" yaml:"path" env:"FORMBUILDER_STORE_PATH"`
	Backups int    `json:"backups" toml:"backups" yaml:"backups" env:"FORMBUILDER_STORE_BACKUPS"` // file backend only
}

// LogConfig controls logging
type LogConfig struct {
	Level string `json:"level" toml:"level" yaml:"level" env:"FORMBUILDER_LOG_LEVEL"`
}

// Defaults returns the configuration used for anything not set elsewhere.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Backups: DefaultBackupCount,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (or the discovered config file when
// path is empty), applies FORMBUILDER_* environment overrides, then fills
// anything still unset from Defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := paths.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := &Config{}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile decodes a config file, choosing the format by extension.
func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// resolve validates the backend and fills in the default store path.
func (c *Config) resolve() error {
	c.Store.Backend = strings.ToLower(c.Store.Backend)

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			p, err := paths.DefaultFormsPath()
			if err != nil {
				return err
			}
			c.Store.Path = p
		}
	case BackendSQLite:
		if c.Store.Path == "" {
			p, err := paths.DefaultDatabasePath()
			if err != nil {
				return err
			}
			c.Store.Path = p
		}
	case BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	p, err := paths.ExpandTilde(c.Store.Path)
	if err != nil {
		return err
	}
	c.Store.Path = p
	return nil
}
