// Package config handles reading and writing the cheeky configuration file
// (~/.cheeky/config.toml).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultListenAddr is the address `cheeky serve` binds when nothing else
// is configured.
const DefaultListenAddr = ":7274"

// Config holds cheeky configuration settings.
type Config struct {
	DBPath        string `toml:"db_path,omitempty" json:"db_path,omitempty"`
	CatalogPath   string `toml:"catalog_path,omitempty" json:"catalog_path,omitempty"`
	DefaultFormat string `toml:"default_format,omitempty" json:"default_format,omitempty"`
	RecordHistory *bool  `toml:"record_history,omitempty" json:"record_history,omitempty"`
	ListenAddr    string `toml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	LogLevel      string `toml:"log_level,omitempty" json:"log_level,omitempty"`
	RemoteURL     string `toml:"remote_url,omitempty" json:"remote_url,omitempty"`
}

var validKeys = map[string]bool{
	"catalog_path":   true,
	"db_path":        true,
	"default_format": true,
	"listen_addr":    true,
	"log_level":      true,
	"record_history": true,
	"remote_url":     true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{"catalog_path", "db_path", "default_format", "listen_addr", "log_level", "record_history", "remote_url"}
}

// Dir returns the cheeky data directory (~/.cheeky).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".cheeky")
	}
	return filepath.Join(home, ".cheeky")
}

// Path returns the default config file path (~/.cheeky/config.toml).
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from a specific path. Returns an empty Config if
// the file does not exist. A .json extension selects JSON; anything else is
// read as TOML.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to a specific path, creating parent directories
// as needed. The format follows the extension, as in LoadFrom.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// HistoryEnabled reports whether explanations should be recorded. History
// is on unless record_history is explicitly false.
func (c *Config) HistoryEnabled() bool {
	return c.RecordHistory == nil || *c.RecordHistory
}

// Addr returns the configured listen address or DefaultListenAddr.
func (c *Config) Addr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// Get returns the string value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", unknownKey(key)
	}
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "catalog_path":
		return c.CatalogPath, nil
	case "default_format":
		return c.DefaultFormat, nil
	case "record_history":
		if c.RecordHistory == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.RecordHistory), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_level":
		return c.LogLevel, nil
	case "remote_url":
		return c.RemoteURL, nil
	}
	return "", unknownKey(key)
}

// Set assigns a value to a configuration key. An empty value resets the key
// to its default.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return unknownKey(key)
	}
	switch key {
	case "db_path":
		c.DBPath = value
	case "catalog_path":
		c.CatalogPath = value
	case "default_format":
		if value != "" && value != "text" && value != "json" {
			return fmt.Errorf("default_format must be \"text\" or \"json\", got %q", value)
		}
		c.DefaultFormat = value
	case "record_history":
		if value == "" {
			c.RecordHistory = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("record_history must be true or false, got %q", value)
		}
		c.RecordHistory = &b
	case "listen_addr":
		c.ListenAddr = value
	case "log_level":
		switch value {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", value)
		}
		c.LogLevel = value
	case "remote_url":
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("remote_url must start with http:// or https://, got %q", value)
		}
		c.RemoteURL = strings.TrimRight(value, "/")
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
}
