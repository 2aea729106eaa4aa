package execpath

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"flowsmith/internal/config"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveMissingToolIsCachedAbsent(t *testing.T) {
	r := NewResolver(&config.ShellConfig{Path: "/nonexistent/shell"})

	_, ok := r.Resolve(context.Background(), "flowsmith-no-such-tool-xyz")
	if ok {
		t.Fatal("expected resolution to fail")
	}

	r.mu.Lock()
	entry := r.cache["flowsmith-no-such-tool-xyz"]
	r.mu.Unlock()
	if entry.state != stateAbsent {
		t.Fatalf("cache state = %v, want stateAbsent", entry.state)
	}

	// Second lookup must hit the cache, still negative.
	if _, ok := r.Resolve(context.Background(), "flowsmith-no-such-tool-xyz"); ok {
		t.Fatal("cached lookup flipped to found")
	}
}

func TestResolveCachedFoundShortCircuitsProbes(t *testing.T) {
	r := NewResolver(&config.ShellConfig{Path: "/nonexistent/shell"})
	r.cache["claude"] = cacheEntry{state: stateFound, path: "/opt/bin/claude"}

	path, ok := r.Resolve(context.Background(), "claude")
	if !ok || path != "/opt/bin/claude" {
		t.Fatalf("Resolve = %q, %v; want cached path", path, ok)
	}
}

func TestClearCacheForcesReprobe(t *testing.T) {
	r := NewResolver(&config.ShellConfig{Path: "/nonexistent/shell"})
	r.cache["codex"] = cacheEntry{state: stateFound, path: "/opt/bin/codex"}

	r.ClearCache()

	r.mu.Lock()
	_, hit := r.cache["codex"]
	r.mu.Unlock()
	if hit {
		t.Fatal("cache entry survived ClearCache")
	}
}

func TestResolveViaDirectProbe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require POSIX")
	}

	dir := t.TempDir()
	writeScript(t, dir, "faketool", "exit 0\n")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	// A broken configured shell forces the direct --version probe.
	r := NewResolver(&config.ShellConfig{Path: "/nonexistent/shell"})

	path, ok := r.Resolve(context.Background(), "faketool")
	if !ok {
		t.Fatal("expected faketool to resolve")
	}
	if path != "faketool" {
		t.Fatalf("direct probe path = %q, want bare name", path)
	}
}

func TestResolveViaConfiguredShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require POSIX")
	}

	dir := t.TempDir()
	tool := writeScript(t, dir, "faketool", "exit 0\n")
	// Fake shell ignoring flags, printing the tool path like `which` would.
	shell := writeScript(t, dir, "fakeshell", "echo "+tool+"\n")

	r := NewResolver(&config.ShellConfig{Path: shell})

	path, ok := r.Resolve(context.Background(), "faketool")
	if !ok {
		t.Fatal("expected faketool to resolve via shell")
	}
	if path != tool {
		t.Fatalf("path = %q, want %q", path, tool)
	}
}

func TestShellProbeRejectsNonexistentReportedPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require POSIX")
	}

	dir := t.TempDir()
	shell := writeScript(t, dir, "fakeshell", "echo /nonexistent/reported/tool\n")

	_, ok := probeShell(context.Background(), shellSpec{path: shell}, "ghost")
	if ok {
		t.Fatal("probe accepted a path that does not exist")
	}
}

func TestVerifyTruncatesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require POSIX")
	}

	dir := t.TempDir()
	long := strings.Repeat("v", 300)
	tool := writeScript(t, dir, "chatty", "echo "+long+"\n")

	r := NewResolver(nil)
	out, err := r.Verify(context.Background(), tool)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) > verifyOutputLimit+3 {
		t.Fatalf("output length %d exceeds limit", len(out))
	}
	if !strings.HasPrefix(out, "vvv") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVerifyFailsOnNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require POSIX")
	}

	dir := t.TempDir()
	tool := writeScript(t, dir, "broken", "exit 3\n")

	r := NewResolver(nil)
	if _, err := r.Verify(context.Background(), tool); err == nil {
		t.Fatal("expected verification error")
	}
}

func TestIsPowerShell(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"pwsh", true},
		{"powershell", true},
		{`C:\Program Files\PowerShell\7\pwsh.exe`, true},
		{"/usr/bin/pwsh", true},
		{"/bin/zsh", false},
		{"bash", false},
	}
	for _, tc := range cases {
		if got := isPowerShell(tc.path); got != tc.want {
			t.Errorf("isPowerShell(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/usr/bin/claude\n", "/usr/bin/claude"},
		{"/usr/bin/claude\r\n", "/usr/bin/claude"},
		{"  /usr/bin/claude  \nnoise\n", "/usr/bin/claude"},
		{"", ""},
		{"\n\n", ""},
	}
	for _, tc := range cases {
		if got := firstLine(tc.in); got != tc.want {
			t.Errorf("firstLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
