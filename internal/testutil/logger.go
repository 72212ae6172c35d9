// Package testutil holds shared helpers for the oraq test suites.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level slog.Logger routed through tb.Log,
// so driver events (prepare, execute, fetch, close) show up interleaved
// with the test's own output. The runner surfaces them only on failure
// or under -v.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	w := &tbWriter{tb: tb}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// tbWriter adapts testing.TB to io.Writer for the slog handler.
type tbWriter struct {
	tb testing.TB
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	// tb.Log appends its own newline; drop the handler's.
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
