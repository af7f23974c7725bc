// Package commands implements the QueryDeck CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/cache"
	"github.com/querydeck/querydeck/internal/config"
	"github.com/spf13/cobra"
)

// configKey stores the loaded config in the command context.
type configKey struct{}

// WithConfig returns a context carrying the loaded configuration.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFrom extracts the configuration placed by the root command.
func ConfigFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// NewLogger builds the process logger.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewClient builds the remote backend client from config.
func NewClient(cfg *config.Config) backend.Client {
	httpClient := &http.Client{Timeout: cfg.Backend.Timeout}
	return backend.NewHTTPClient(cfg.Backend.URL, httpClient)
}

// OpenCache opens the configured snapshot cache: SQLite-backed when a
// path is set, in-memory otherwise.
func OpenCache(cfg *config.Config) (cache.Store, error) {
	if cfg.Cache.Path == "" {
		return cache.NewMemoryStore(), nil
	}
	return cache.OpenSQLite(cfg.Cache.Path)
}
