package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"flowsmith/internal/types"
)

const stderrDetailLimit = 500

// npxNotFoundMarker appears on stderr when npx cannot locate the requested
// package binary; the spawn itself succeeded, so it needs its own check.
const npxNotFoundMarker = "could not determine executable to run"

// classifyStartError maps a Start failure onto the error taxonomy.
func classifyStartError(command string, err error) *types.ExecError {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, syscall.ENOENT) {
		return types.NewExecError(types.ErrCommandNotFound,
			fmt.Sprintf("executable not found: %s", command), err.Error())
	}
	return types.NewExecError(types.ErrUnknown,
		fmt.Sprintf("failed to start %s", command), err.Error())
}

// classifyExit maps a non-zero exit onto the error taxonomy. Flags set by the
// supervisor before it signalled the child take precedence over anything the
// child reported.
func classifyExit(m *managed, err error, stderr string) *types.ExecError {
	cancelled, timedOut := m.state()

	switch {
	case cancelled:
		return types.NewExecError(types.ErrUnknown, "execution cancelled", "")
	case timedOut:
		return types.NewExecError(types.ErrTimeout,
			"execution timed out", types.Truncate(stderr, stderrDetailLimit))
	case strings.Contains(stderr, npxNotFoundMarker):
		return types.NewExecError(types.ErrCommandNotFound,
			"npx could not locate the requested package binary",
			types.Truncate(stderr, stderrDetailLimit))
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return types.NewExecError(types.ErrUnknown,
			fmt.Sprintf("process exited with code %d", ee.ExitCode()),
			types.Truncate(stderr, stderrDetailLimit))
	}
	return types.NewExecError(types.ErrUnknown, "process failed",
		types.Truncate(firstNonEmpty(err.Error(), stderr), stderrDetailLimit))
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
