// Package config provides configuration management for the key-value
// store. It loads settings from an optional YAML file and environment
// variables, layered over compiled-in defaults.
//
// Grounded on the teacher's internal/config/config.go (yaml.v2 struct tags,
// godotenv .env loading, os.ExpandEnv interpolation), generalized away from
// the teacher's hard-coded repo-relative config path so the binary remains
// usable once installed elsewhere (SPEC_FULL.md §2.1).
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Defaults per spec.md §6: a bare kvs-server with no flags, no .env, and
// no YAML file still runs against these.
const (
	DefaultListenAddr = "127.0.0.1:4000"
	DefaultEngine     = "kvs"
	DefaultPoolKind   = "shared"
	DefaultPoolSize   = 4
)

// Config holds all application configuration values. The compaction
// threshold is deliberately absent: spec.md §6 fixes it at 1 MiB and
// forbids user configuration.
type Config struct {
	DataDir    string `yaml:"DATA_DIR"`
	ListenAddr string `yaml:"LISTEN_ADDR"`
	Engine     string `yaml:"ENGINE"`
	PoolKind   string `yaml:"POOL_KIND"`
	PoolSize   int    `yaml:"POOL_SIZE"`
}

func defaults() Config {
	return Config{
		DataDir:    ".",
		ListenAddr: DefaultListenAddr,
		Engine:     DefaultEngine,
		PoolKind:   DefaultPoolKind,
		PoolSize:   DefaultPoolSize,
	}
}

// Load builds a Config starting from compiled-in defaults, optionally
// overlaying a YAML file at path (ignored if path is empty or does not
// exist), then optionally overlaying a .env file in the working directory,
// then applying any of the KVS_ADDR, KVS_DATA_DIR, KVS_ENGINE,
// KVS_POOL_KIND, KVS_POOL_SIZE environment variables that are set. No
// source is mandatory.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			slog.Debug("config: no yaml file found, using defaults", "path", path)
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return nil, err
			}
			slog.Debug("config: yaml file loaded", "path", path)
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found or error loading it", "error", err)
	} else {
		slog.Debug("config: .env file loaded")
	}

	overlayEnv(&cfg)

	return &cfg, nil
}

func overlayEnv(cfg *Config) {
	if v := os.Getenv("KVS_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("KVS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KVS_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("KVS_POOL_KIND"); v != "" {
		cfg.PoolKind = v
	}
	if v := os.Getenv("KVS_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PoolSize = n
		} else {
			slog.Warn("config: ignoring invalid KVS_POOL_SIZE", "value", v)
		}
	}
}
