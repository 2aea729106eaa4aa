//go:build !windows

package process

import (
	"os"
	"syscall"
)

// signalStop requests a graceful shutdown. SIGTERM lets the CLI flush partial
// output before the supervisor escalates to SIGKILL.
func signalStop(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
