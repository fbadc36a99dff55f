package main

import (
	"io"
	"log/slog"
	"testing"
)

// testLogger returns a logger that discards output.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
