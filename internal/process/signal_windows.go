//go:build windows

package process

import (
	"os"
)

// signalStop has no graceful equivalent of SIGTERM for console children on
// Windows, so it kills directly and the escalation timer becomes a no-op.
func signalStop(p *os.Process) error {
	return p.Kill()
}
