// Package execpath locates backend executables across heterogeneous shell
// environments and plans the final command invocation, including the
// zero-install npx fallback.
//
// Resolution deliberately goes through the user's interactive login shell
// first: version managers (nvm, asdf, volta) extend PATH in shell rc files,
// so a bare LookPath from a GUI-launched parent often misses tools that work
// fine in the user's terminal.
package execpath

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"flowsmith/internal/config"
	"flowsmith/internal/logging"
	"flowsmith/internal/types"
)

const (
	// shellProbeTimeout bounds PowerShell-family probes and direct
	// version-flag probes.
	shellProbeTimeout = 15 * time.Second
	// whichProbeTimeout bounds POSIX `which` probes, which are cheaper.
	whichProbeTimeout = 10 * time.Second
	// verifyOutputLimit truncates captured --version output.
	verifyOutputLimit = 200
)

type probeState int

const (
	stateUnchecked probeState = iota
	stateFound
	stateAbsent
)

type cacheEntry struct {
	state probeState
	path  string
}

// Resolver finds executables by name. Outcomes (found and absent alike) are
// memoized for the process lifetime; ClearCache forces re-resolution, e.g.
// after the user installs a tool.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
	shell *config.ShellConfig
}

// NewResolver builds a resolver. shell may be nil ("not configured").
func NewResolver(shell *config.ShellConfig) *Resolver {
	return &Resolver{
		cache: make(map[string]cacheEntry),
		shell: shell,
	}
}

// Resolve returns the absolute path of tool, or the bare tool name when only
// a direct PATH probe succeeded. ok is false when every attempt failed.
func (r *Resolver) Resolve(ctx context.Context, tool string) (path string, ok bool) {
	r.mu.Lock()
	if entry, hit := r.cache[tool]; hit && entry.state != stateUnchecked {
		r.mu.Unlock()
		return entry.path, entry.state == stateFound
	}
	r.mu.Unlock()

	// Probing happens outside the lock; concurrent duplicate probes are
	// harmless and converge on the same cached answer.
	path, ok = r.resolveUncached(ctx, tool)

	r.mu.Lock()
	if ok {
		r.cache[tool] = cacheEntry{state: stateFound, path: path}
	} else {
		r.cache[tool] = cacheEntry{state: stateAbsent}
	}
	r.mu.Unlock()

	if ok {
		logging.Resolver("resolved %s -> %s", tool, path)
	} else {
		logging.Resolver("tool %s not found in any shell or on PATH", tool)
	}
	return path, ok
}

// ClearCache discards all memoized outcomes.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]cacheEntry)
	r.mu.Unlock()
	logging.ResolverDebug("path cache cleared")
}

type shellSpec struct {
	path string
	args []string
}

func (r *Resolver) resolveUncached(ctx context.Context, tool string) (string, bool) {
	for _, sh := range r.candidateShells() {
		if p, ok := probeShell(ctx, sh, tool); ok {
			return p, true
		}
	}
	if probeDirect(ctx, tool) {
		// PATH-relative: the OS will re-resolve it at spawn time.
		return tool, true
	}
	return "", false
}

// candidateShells returns the configured shell when present, otherwise the
// platform fallback list.
func (r *Resolver) candidateShells() []shellSpec {
	if r.shell != nil && r.shell.Path != "" {
		return []shellSpec{{path: r.shell.Path, args: r.shell.Args}}
	}
	if runtime.GOOS == "windows" {
		return []shellSpec{{path: "pwsh"}, {path: "powershell"}}
	}
	return []shellSpec{{path: "zsh"}, {path: "bash"}}
}

// probeShell asks one shell where tool lives. Any failure (missing shell,
// non-zero exit, timeout, path that does not exist) is a negative result,
// never an error.
func probeShell(ctx context.Context, sh shellSpec, tool string) (string, bool) {
	var args []string
	timeout := whichProbeTimeout
	if isPowerShell(sh.path) {
		// Get-Command with -CommandType Application skips wrapper scripts
		// and aliases that would not survive a direct spawn.
		query := fmt.Sprintf(
			"Get-Command %s -CommandType Application | Select-Object -First 1 -ExpandProperty Source", tool)
		args = append(append([]string{}, sh.args...), "-Command", query)
		timeout = shellProbeTimeout
	} else {
		// Interactive login mode so rc files extend PATH before `which` runs.
		args = append(append([]string{}, sh.args...), "-i", "-l", "-c", fmt.Sprintf("which %s", tool))
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, sh.path, args...).Output()
	if err != nil {
		logging.ResolverDebug("shell probe %s for %s failed: %v", sh.path, tool, err)
		return "", false
	}

	line := firstLine(string(out))
	if line == "" || !filepath.IsAbs(line) {
		return "", false
	}
	if _, err := os.Stat(line); err != nil {
		logging.ResolverDebug("shell probe %s reported %s but it does not exist", sh.path, line)
		return "", false
	}
	return line, true
}

// probeDirect checks whether tool is spawnable from the inherited PATH,
// using a version flag as the liveness probe.
func probeDirect(ctx context.Context, tool string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, shellProbeTimeout)
	defer cancel()

	err := exec.CommandContext(probeCtx, tool, "--version").Run()
	return err == nil
}

// Verify confirms a resolved path is actually executable by invoking its
// version flag, returning the (truncated) output.
func (r *Resolver) Verify(ctx context.Context, path string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, shellProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, path, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("verification of %s failed: %w", path, err)
	}
	return types.Truncate(strings.TrimSpace(string(out)), verifyOutputLimit), nil
}

// isPowerShell matches pwsh and powershell by basename, with or without .exe.
// Both separator styles are handled so configured Windows paths work verbatim.
func isPowerShell(shellPath string) bool {
	base := shellPath
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")
	return base == "pwsh" || base == "powershell"
}

func firstLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
