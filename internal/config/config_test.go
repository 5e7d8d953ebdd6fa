package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
[server]
addr = ":9090"

[store]
backend = "redis"

[store.redis]
addr = "redis.internal:6379"
db = 2
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":9090" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
		if cfg.Store.Backend != BackendRedis {
			t.Errorf("Store.Backend = %q", cfg.Store.Backend)
		}
		if cfg.Store.Redis.Addr != "redis.internal:6379" || cfg.Store.Redis.DB != 2 {
			t.Errorf("Store.Redis = %+v", cfg.Store.Redis)
		}
		// Untouched sections keep their defaults.
		if cfg.Store.Mongo.Database != "pagepack" {
			t.Errorf("Store.Mongo.Database = %q, want default", cfg.Store.Mongo.Database)
		}
	})

	t.Run("partial file keeps remaining defaults", func(t *testing.T) {
		path := writeConfig(t, `
[server]
addr = ":7070"
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":7070" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
		if cfg.Store.Backend != BackendFile {
			t.Errorf("Store.Backend = %q, want default file", cfg.Store.Backend)
		}
	})

	t.Run("explicit missing path is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Fatal("Load accepted a missing explicit path")
		}
	})

	t.Run("missing default path yields defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":8080" || cfg.Store.Backend != BackendFile {
			t.Errorf("defaults not applied: %+v", cfg)
		}
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		path := writeConfig(t, `
[server]
adress = ":8080"
`)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "unknown key") {
			t.Fatalf("Load = %v, want unknown key error", err)
		}
	})

	t.Run("unknown backend is rejected", func(t *testing.T) {
		path := writeConfig(t, `
[store]
backend = "etcd"
`)
		if _, err := Load(path); err == nil {
			t.Fatal("Load accepted an unknown backend")
		}
	})
}

func TestDefaultPath(t *testing.T) {
	t.Run("honors XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		path, err := DefaultPath()
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if path != filepath.Join("/tmp/xdg", "pagepack", "config.toml") {
			t.Errorf("DefaultPath = %q", path)
		}
	})

	t.Run("falls back to home config dir", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		path, err := DefaultPath()
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if !strings.HasSuffix(path, filepath.Join(".config", "pagepack", "config.toml")) {
			t.Errorf("DefaultPath = %q", path)
		}
	})
}
