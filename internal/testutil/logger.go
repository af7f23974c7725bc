// Package testutil holds shared test doubles: a slog logger routed
// through the testing framework and an in-memory fake of the remote
// persistence service.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns an slog.Logger whose output lands in t.Log,
// so session and handler log lines show up next to the failing
// assertion instead of polluting stdout.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type logWriter struct {
	t testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
