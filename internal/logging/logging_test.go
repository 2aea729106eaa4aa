package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopByDefault(t *testing.T) {
	SetLogger(nil)
	// Must not panic without an installed logger.
	Resolver("resolving %s", "claude")
	ProcessWarn("orphan %s", "entry")
}

func TestCategoryNaming(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Provider("dispatching %s", "codex")
	StreamDebug("dropped line")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].LoggerName != "provider" {
		t.Errorf("LoggerName = %q, want provider", entries[0].LoggerName)
	}
	if entries[0].Message != "dispatching codex" {
		t.Errorf("Message = %q", entries[0].Message)
	}
	if entries[1].LoggerName != "stream" {
		t.Errorf("LoggerName = %q, want stream", entries[1].LoggerName)
	}
}
