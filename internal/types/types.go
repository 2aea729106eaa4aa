// Package types holds the shared data model for flowsmith: the provider
// enum, execution requests/results, streaming updates, and the structured
// error taxonomy that every backend pipeline reports through.
package types

import (
	"fmt"
	"time"
)

// Provider identifies one of the interchangeable AI execution backends.
type Provider string

const (
	// ProviderClaude is the Claude Code CLI subprocess backend.
	ProviderClaude Provider = "claude"
	// ProviderCodex is the Codex CLI subprocess backend.
	ProviderCodex Provider = "codex"
	// ProviderGemini is the in-process Gemini backend (google.golang.org/genai).
	ProviderGemini Provider = "gemini"
)

// Valid reports whether p names a known backend.
func (p Provider) Valid() bool {
	switch p {
	case ProviderClaude, ProviderCodex, ProviderGemini:
		return true
	}
	return false
}

// ErrorCode classifies an execution failure. The set is closed: every failure
// a caller can observe maps onto exactly one of these.
type ErrorCode string

const (
	// ErrCommandNotFound means the backend tool and its zero-install fallback
	// were both unresolvable or unspawnable.
	ErrCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	// ErrTimeout means the wall-clock limit for the request was exceeded.
	ErrTimeout ErrorCode = "TIMEOUT"
	// ErrParse means no usable output could be interpreted from the backend.
	ErrParse ErrorCode = "PARSE_ERROR"
	// ErrModelNotSupported means the in-process backend rejected the model.
	ErrModelNotSupported ErrorCode = "MODEL_NOT_SUPPORTED"
	// ErrUnknown covers any other non-zero exit or unexpected failure.
	ErrUnknown ErrorCode = "UNKNOWN_ERROR"
)

// ExecError is the structured error carried inside an ExecutionResult.
// Callers can detect it with errors.As.
type ExecError struct {
	Code    ErrorCode
	Message string
	// Detail carries raw supporting material (a stderr excerpt, the offending
	// output) and may be empty.
	Detail string
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewExecError builds an ExecError without detail.
func NewExecError(code ErrorCode, format string, args ...interface{}) *ExecError {
	return &ExecError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// DefaultTimeout is the conventional limit for callers that do not pick one.
// A zero Timeout on ExecutionRequest means unbounded.
const DefaultTimeout = 60 * time.Second

// ExecutionRequest describes one prompt execution against one backend.
type ExecutionRequest struct {
	// Prompt is the full text delivered to the backend's input.
	Prompt string

	// Provider selects the backend pipeline.
	Provider Provider

	// Timeout bounds the whole execution. Zero means unbounded.
	Timeout time.Duration

	// RequestID is the cancellation key. Must be unique among concurrently
	// live requests; the router fills in a UUID when empty.
	RequestID string

	// WorkingDir is passed through verbatim to the spawned process.
	WorkingDir string

	// Model overrides the backend's configured default model alias.
	Model string

	// ReasoningEffort is a backend-specific selector (Codex CLI
	// model_reasoning_effort); ignored by backends without the concept.
	ReasoningEffort string

	// AllowedTools restricts which tools the backend may invoke.
	// Only honored by backends with a tool allow-list flag.
	AllowedTools []string

	// ResumeSessionID continues a prior conversation on backends whose wire
	// format defines a resume record. Ignored (with a warning) elsewhere.
	ResumeSessionID string
}

// ExecutionResult is the uniform terminal outcome of a request.
// Every failure path produces the same shape with Success=false.
type ExecutionResult struct {
	Success bool

	// Output is the final extracted text. On failure it holds whatever
	// partial text accumulated before the error so callers can show
	// "here is what we got before it failed".
	Output string

	// Err is set iff Success is false.
	Err *ExecError

	// Duration is the wall-clock execution time.
	Duration time.Duration

	// SessionID is the backend-assigned continuation token, when the backend
	// emitted one.
	SessionID string
}

// UpdateKind tags a StreamUpdate's content.
type UpdateKind string

const (
	// UpdateText is a plain narrative/answer text delta.
	UpdateText UpdateKind = "text"
	// UpdateTool is a synthesized tool-activity marker.
	UpdateTool UpdateKind = "tool"
)

// StreamUpdate is emitted zero or more times before the terminal
// ExecutionResult. Display and Explanatory are monotonically growing
// snapshots: Display includes synthesized tool-activity markers,
// Explanatory is the same text with those markers stripped.
type StreamUpdate struct {
	Chunk       string
	Display     string
	Explanatory string
	Kind        UpdateKind
}

// ProgressFunc receives streaming updates in strict chunk arrival order.
type ProgressFunc func(StreamUpdate)

// Truncate shortens s to max bytes, appending "..." when it cuts.
// Used wherever raw process output is embedded in errors or logs.
func Truncate(s string, max int) string {
	if len(s) <= max || max < 4 {
		return s
	}
	return s[:max-3] + "..."
}
