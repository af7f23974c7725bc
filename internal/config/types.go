// Package config provides configuration types and loading for
// QueryDeck. Values layer as flags > environment > config file >
// defaults.
package config

import "time"

// ConfigFileName is the name of the config file.
const ConfigFileName = "querydeck.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "querydeck.yml"

// Config is the full QueryDeck configuration.
type Config struct {
	// User is the default user key for CLI commands and the gateway.
	User string `koanf:"user"`

	Backend BackendConfig `koanf:"backend"`
	Cache   CacheConfig   `koanf:"cache"`
	Serve   ServeConfig   `koanf:"serve"`
	Sync    SyncConfig    `koanf:"sync"`

	Verbose bool `koanf:"verbose"`
}

// BackendConfig points at the remote persistence service.
type BackendConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// CacheConfig controls the local snapshot cache. An empty path keeps
// the cache in memory only.
type CacheConfig struct {
	Path string `koanf:"path"`
}

// ServeConfig holds gateway server settings.
type ServeConfig struct {
	Port int `koanf:"port"`
	// SessionSecret signs the user-key cookie; an ephemeral secret is
	// generated when empty.
	SessionSecret string `koanf:"secret"`
}

// SyncConfig tunes the write-back behavior.
type SyncConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"user":            "default",
		"backend.url":     "http://localhost:9001",
		"backend.timeout": "15s",
		"cache.path":      ".querydeck/cache.db",
		"serve.port":      8350,
		"sync.debounce":   "400ms",
		"verbose":         false,
	}
}
