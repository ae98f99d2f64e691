package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "" || cfg.CatalogPath != "" || cfg.DefaultFormat != "" || cfg.RecordHistory != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.toml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "subdir", name)
			off := false
			cfg := &Config{
				DBPath:        "/custom/history.db",
				CatalogPath:   "/custom/git.toml",
				DefaultFormat: "json",
				RecordHistory: &off,
				ListenAddr:    "127.0.0.1:9000",
			}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("save: %v", err)
			}

			loaded, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.DBPath != cfg.DBPath {
				t.Errorf("db_path: got %q, want %q", loaded.DBPath, cfg.DBPath)
			}
			if loaded.CatalogPath != cfg.CatalogPath {
				t.Errorf("catalog_path: got %q, want %q", loaded.CatalogPath, cfg.CatalogPath)
			}
			if loaded.DefaultFormat != "json" {
				t.Errorf("default_format: got %q, want json", loaded.DefaultFormat)
			}
			if loaded.HistoryEnabled() {
				t.Error("record_history = false did not survive the round trip")
			}
			if loaded.Addr() != "127.0.0.1:9000" {
				t.Errorf("listen_addr: got %q", loaded.Addr())
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"bad.json": "{invalid",
		"bad.toml": "db_path = ",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if !cfg.HistoryEnabled() {
		t.Error("history should be enabled by default")
	}
	if cfg.Addr() != DefaultListenAddr {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), DefaultListenAddr)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"db_path", "db_path", "/tmp/test.db", "/tmp/test.db"},
		{"catalog_path", "catalog_path", "/tmp/git.toml", "/tmp/git.toml"},
		{"default_format text", "default_format", "text", "text"},
		{"default_format json", "default_format", "json", "json"},
		{"record_history off", "record_history", "false", "false"},
		{"record_history on", "record_history", "1", "true"},
		{"record_history reset", "record_history", "", ""},
		{"listen_addr", "listen_addr", ":8080", ":8080"},
		{"log_level", "log_level", "debug", "debug"},
		{"remote_url", "remote_url", "http://hub:7274/", "http://hub:7274"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetInvalidValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"default_format", "table"},
		{"record_history", "maybe"},
		{"log_level", "loud"},
		{"remote_url", "hub:7274"},
		{"nonexistent", "value"},
	}
	for _, tt := range tests {
		cfg := &Config{}
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q): expected error", tt.key, tt.value)
		}
	}
}

func TestGetUnknownKey(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.Get("nonexistent"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	if len(keys) != len(validKeys) {
		t.Fatalf("ValidKeys() has %d keys, validKeys has %d", len(keys), len(validKeys))
	}
	for i, k := range keys {
		if !validKeys[k] {
			t.Errorf("ValidKeys() lists %q, which Set rejects", k)
		}
		if i > 0 && k < keys[i-1] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], k)
		}
	}
}

func TestPath(t *testing.T) {
	p := Path()
	if filepath.Base(p) != "config.toml" {
		t.Errorf("Path() = %q, want basename config.toml", p)
	}
	if filepath.Base(filepath.Dir(p)) != ".cheeky" {
		t.Errorf("Path() = %q, want parent .cheeky", p)
	}
}

func TestLoadFromReadError(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatal("expected error when reading directory as file")
	}
}
