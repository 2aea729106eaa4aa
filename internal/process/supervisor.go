// Package process runs backend subprocesses under supervision: stdin feeding,
// ordered stdout chunk delivery, bounded stderr capture, timeout escalation
// (graceful stop, then forced kill) and by-request cancellation.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flowsmith/internal/logging"
	"flowsmith/internal/types"
)

const (
	// killGrace is how long a process gets between the graceful stop signal
	// and the forced kill.
	killGrace = 500 * time.Millisecond

	// stderrCap bounds captured stderr so a runaway child cannot exhaust
	// memory through its error stream.
	stderrCap = 64 * 1024

	// chunkSize is the stdout read granularity handed to chunk callbacks.
	chunkSize = 4096
)

// RunSpec describes one supervised execution.
type RunSpec struct {
	Command string
	Args    []string
	Dir     string

	// Stdin, when non-empty, is written to the child and the pipe closed.
	Stdin string

	// Timeout of zero means unbounded.
	Timeout time.Duration

	// RequestID keys the cancellation registry. Generated when empty.
	RequestID string
}

// Outcome reports a finished execution.
type Outcome struct {
	Stderr   string
	Duration time.Duration
}

type managed struct {
	cmd       *exec.Cmd
	started   time.Time
	killTimer *time.Timer

	mu        sync.Mutex
	cancelled bool
	timedOut  bool
}

func (m *managed) markCancelled() {
	m.mu.Lock()
	m.cancelled = true
	m.mu.Unlock()
}

func (m *managed) markTimedOut() {
	m.mu.Lock()
	m.timedOut = true
	m.mu.Unlock()
}

func (m *managed) state() (cancelled, timedOut bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled, m.timedOut
}

// terminate asks the child to stop, escalating to a forced kill after
// killGrace. Safe to call more than once.
func (m *managed) terminate() {
	if m.cmd.Process == nil {
		return
	}
	if err := signalStop(m.cmd.Process); err != nil {
		// The graceful path is gone; kill outright.
		_ = m.cmd.Process.Kill()
		return
	}
	m.mu.Lock()
	if m.killTimer == nil {
		m.killTimer = time.AfterFunc(killGrace, func() {
			_ = m.cmd.Process.Kill()
		})
	}
	m.mu.Unlock()
}

func (m *managed) stopKillTimer() {
	m.mu.Lock()
	if m.killTimer != nil {
		m.killTimer.Stop()
	}
	m.mu.Unlock()
}

// Supervisor owns every in-flight backend subprocess, keyed by request ID.
type Supervisor struct {
	mu    sync.Mutex
	procs map[string]*managed
}

// NewSupervisor builds an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{procs: make(map[string]*managed)}
}

// Run starts the command and blocks until it exits. Stdout is delivered to
// onChunk in read order from a single goroutine; onChunk may be nil. The
// returned error, when non-nil, is always a *types.ExecError.
func (s *Supervisor) Run(ctx context.Context, spec RunSpec, onChunk func([]byte)) (Outcome, error) {
	if spec.RequestID == "" {
		spec.RequestID = uuid.NewString()
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, limit: stderrCap}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Outcome{}, types.NewExecError(types.ErrUnknown, "failed to open stdout pipe", err.Error())
	}

	m := &managed{cmd: cmd, started: time.Now()}

	if err := cmd.Start(); err != nil {
		return Outcome{}, classifyStartError(spec.Command, err)
	}
	logging.Process("started %s (request %s, pid %d)", spec.Command, spec.RequestID, cmd.Process.Pid)

	s.register(spec.RequestID, m)
	defer s.unregister(spec.RequestID)

	var timeoutTimer *time.Timer
	if spec.Timeout > 0 {
		timeoutTimer = time.AfterFunc(spec.Timeout, func() {
			logging.ProcessWarn("request %s exceeded %s, stopping pid %d",
				spec.RequestID, spec.Timeout, cmd.Process.Pid)
			m.markTimedOut()
			m.terminate()
		})
		defer timeoutTimer.Stop()
	}

	// Honor caller context cancellation the same way as an explicit Cancel.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			m.markCancelled()
			m.terminate()
		case <-watchDone:
		}
	}()

	g := new(errgroup.Group)
	g.Go(func() error {
		buf := make([]byte, chunkSize)
		for {
			n, readErr := stdout.Read(buf)
			if n > 0 && onChunk != nil {
				onChunk(append([]byte(nil), buf[:n]...))
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					return nil
				}
				return readErr
			}
		}
	})

	// Stdout must be drained before Wait closes the pipe.
	readErr := g.Wait()
	waitErr := cmd.Wait()
	m.stopKillTimer()

	outcome := Outcome{
		Stderr:   stderr.String(),
		Duration: time.Since(m.started),
	}

	if waitErr == nil && readErr == nil {
		logging.ProcessDebug("request %s finished in %s", spec.RequestID, outcome.Duration)
		return outcome, nil
	}
	if waitErr == nil {
		waitErr = readErr
	}
	return outcome, classifyExit(m, waitErr, outcome.Stderr)
}

// Cancel stops the process registered under requestID. It reports the elapsed
// runtime and whether anything was actually cancelled; unknown IDs are a
// no-op.
func (s *Supervisor) Cancel(requestID string) (time.Duration, bool) {
	s.mu.Lock()
	m, ok := s.procs[requestID]
	s.mu.Unlock()
	if !ok {
		logging.ProcessDebug("cancel for unknown request %s ignored", requestID)
		return 0, false
	}

	elapsed := time.Since(m.started)
	logging.Process("cancelling request %s after %s", requestID, elapsed)
	m.markCancelled()
	m.terminate()
	s.unregister(requestID)
	return elapsed, true
}

// InFlight returns the number of currently supervised processes.
func (s *Supervisor) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

func (s *Supervisor) register(id string, m *managed) {
	s.mu.Lock()
	s.procs[id] = m
	s.mu.Unlock()
}

func (s *Supervisor) unregister(id string) {
	s.mu.Lock()
	delete(s.procs, id)
	s.mu.Unlock()
}

// limitedWriter keeps the first limit bytes and silently drops the rest.
type limitedWriter struct {
	w     io.Writer
	limit int
	n     int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.n >= lw.limit {
		return len(p), nil
	}
	remain := lw.limit - lw.n
	if len(p) > remain {
		if _, err := lw.w.Write(p[:remain]); err != nil {
			return 0, err
		}
		lw.n = lw.limit
		return len(p), nil
	}
	n, err := lw.w.Write(p)
	lw.n += n
	return len(p), err
}
