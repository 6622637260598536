// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

// FirstRoller always picks the first value, making rolls deterministic.
type FirstRoller struct{}

func (FirstRoller) IntN(int) int { return 0 }

// LastRoller always picks the last value.
type LastRoller struct{}

func (LastRoller) IntN(n int) int { return n - 1 }

// Logger returns a debug-level logger that writes through t.Log, so output
// only shows up for failing or verbose tests.
func Logger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tWriter struct{ t testing.TB }

func (w tWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// WaitForShutdown waits for a channel to receive a value or timeout.
func WaitForShutdown(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown after %v", timeout)
	}
}
