// Package config loads pagepack configuration from a TOML file.
//
// The default location is ~/.config/pagepack/config.toml; a missing file
// is not an error and yields the defaults. Command-line flags override
// file values.
//
// Example:
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "redis"
//
//	[store.redis]
//	addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Store backend names accepted in [store] backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the full pagepack configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend; empty uses the default data dir
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "pagepack",
				Collection: "documents",
			},
		},
	}
}

// DefaultPath returns the default config file location
// (~/.config/pagepack/config.toml), honoring XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "pagepack", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pagepack", "config.toml"), nil
}

// Load reads the config file at path on top of the defaults. When path is
// empty the default location is used, and a missing file there is not an
// error. An explicitly given path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil
		}
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Store.Backend {
	case BackendFile, BackendRedis, BackendMongo:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
