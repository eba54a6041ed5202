package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newDualBuffers(t *testing.T) (*slog.Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var primaryBuf, secondaryBuf bytes.Buffer
	primary := slog.NewTextHandler(&primaryBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	secondary := slog.NewTextHandler(&secondaryBuf, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(NewDualHandler(primary, secondary)), &primaryBuf, &secondaryBuf
}

func TestDualHandlerMirrorsErrorsToSecondary(t *testing.T) {
	logger, primaryBuf, secondaryBuf := newDualBuffers(t)

	logger.Error("connection refused", slog.String("host", "panel"))
	logger.Info("retrying")

	if got := primaryBuf.String(); !strings.Contains(got, "connection refused") || !strings.Contains(got, "retrying") {
		t.Fatalf("expected primary log to contain both messages, got %q", got)
	}
	if got := secondaryBuf.String(); !strings.Contains(got, "connection refused") {
		t.Fatalf("expected secondary log to contain error message, got %q", got)
	}
	if got := secondaryBuf.String(); strings.Contains(got, "retrying") {
		t.Fatalf("secondary log should not contain info message, got %q", got)
	}
}

func TestDualHandlerSuspendsMirroring(t *testing.T) {
	logger, primaryBuf, secondaryBuf := newDualBuffers(t)

	DisableErrorMirroring()
	defer EnableErrorMirroring()

	logger.Error("connection refused")

	if got := primaryBuf.String(); !strings.Contains(got, "connection refused") {
		t.Fatalf("expected primary log to contain error message, got %q", got)
	}
	if got := secondaryBuf.String(); got != "" {
		t.Fatalf("expected secondary log to be empty while mirror suspended, got %q", got)
	}
}

func TestDualHandlerSuspensionsNest(t *testing.T) {
	logger, _, secondaryBuf := newDualBuffers(t)

	DisableErrorMirroring()
	DisableErrorMirroring()
	EnableErrorMirroring()

	logger.Error("still suspended")
	if got := secondaryBuf.String(); got != "" {
		t.Fatalf("expected mirror to stay suspended under the outer hold, got %q", got)
	}

	EnableErrorMirroring()
	logger.Error("mirrored again")
	if got := secondaryBuf.String(); !strings.Contains(got, "mirrored again") {
		t.Fatalf("expected mirror to resume after the last release, got %q", got)
	}
}
