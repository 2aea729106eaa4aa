// Package provider routes execution requests to one of the interchangeable
// backends: the Claude Code CLI, the Codex CLI (both supervised subprocesses)
// or the in-process Gemini API client. Whatever happens inside a backend, the
// caller always gets back the same ExecutionResult shape.
package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"flowsmith/internal/config"
	"flowsmith/internal/execpath"
	"flowsmith/internal/logging"
	"flowsmith/internal/process"
	"flowsmith/internal/types"
)

// Router owns the shared backend machinery: one resolver/planner pair, one
// process supervisor, one lazy Gemini client, and the cancellation registry
// spanning both subprocess and in-process requests.
type Router struct {
	cfg        *config.UserConfig
	resolver   *execpath.Resolver
	planner    *execpath.Planner
	supervisor *process.Supervisor

	geminiMu      sync.Mutex
	geminiClient  *genai.Client
	geminiCancels map[string]context.CancelFunc
}

// NewRouter builds a router over cfg. cfg must be non-nil.
func NewRouter(cfg *config.UserConfig) *Router {
	resolver := execpath.NewResolver(cfg.Shell)
	return &Router{
		cfg:           cfg,
		resolver:      resolver,
		planner:       execpath.NewPlanner(resolver),
		supervisor:    process.NewSupervisor(),
		geminiCancels: make(map[string]context.CancelFunc),
	}
}

// Execute runs the request to completion without streaming callbacks.
func (r *Router) Execute(ctx context.Context, req types.ExecutionRequest) types.ExecutionResult {
	return r.ExecuteStreaming(ctx, req, nil)
}

// ExecuteStreaming runs the request, delivering progress updates in chunk
// arrival order, and returns the terminal result. Failures never surface as
// a bare error: they arrive inside the result with Success=false.
func (r *Router) ExecuteStreaming(ctx context.Context, req types.ExecutionRequest, progress types.ProgressFunc) types.ExecutionResult {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Provider == "" {
		req.Provider = r.defaultProvider()
	}

	if req.Prompt == "" {
		return failure(types.NewExecError(types.ErrUnknown, "empty prompt"), 0)
	}
	if !req.Provider.Valid() {
		return failure(types.NewExecError(types.ErrUnknown, "unknown provider %q", req.Provider), 0)
	}

	logging.Provider("dispatching request %s to %s", req.RequestID, req.Provider)
	switch req.Provider {
	case types.ProviderClaude:
		return r.runClaude(ctx, req, progress)
	case types.ProviderCodex:
		return r.runCodex(ctx, req, progress)
	default:
		return r.runGemini(ctx, req, progress)
	}
}

// Cancel stops the request registered under requestID, whichever backend is
// running it. Unknown IDs are a no-op and return false.
func (r *Router) Cancel(requestID string) bool {
	if elapsed, ok := r.supervisor.Cancel(requestID); ok {
		logging.Provider("cancelled subprocess request %s after %s", requestID, elapsed)
		return true
	}

	r.geminiMu.Lock()
	cancel, ok := r.geminiCancels[requestID]
	r.geminiMu.Unlock()
	if !ok {
		return false
	}
	logging.Provider("cancelled in-process request %s", requestID)
	cancel()
	return true
}

// Reset clears the resolver cache so the next request re-probes tool
// locations, e.g. after the user installed a CLI mid-session.
func (r *Router) Reset() {
	r.resolver.ClearCache()
}

// Availability describes one backend's readiness.
type Availability struct {
	Available bool
	Path      string
	Version   string
	Detail    string
}

// CheckAvailability probes every backend without executing a prompt.
func (r *Router) CheckAvailability(ctx context.Context) map[types.Provider]Availability {
	return map[types.Provider]Availability{
		types.ProviderClaude: r.cliAvailability(ctx, claudeTool),
		types.ProviderCodex:  r.cliAvailability(ctx, codexTool),
		types.ProviderGemini: r.geminiAvailability(),
	}
}

func (r *Router) cliAvailability(ctx context.Context, tool string) Availability {
	if path, ok := r.resolver.Resolve(ctx, tool); ok {
		av := Availability{Available: true, Path: path}
		if version, err := r.resolver.Verify(ctx, path); err == nil {
			av.Version = version
		} else {
			av.Detail = fmt.Sprintf("resolved but verification failed: %v", err)
		}
		return av
	}
	if _, ok := r.resolver.Resolve(ctx, "npx"); ok {
		return Availability{Available: true, Detail: "not installed; will run via npx"}
	}
	return Availability{Detail: "not found in any shell or on PATH"}
}

func (r *Router) geminiAvailability() Availability {
	if r.cfg.GeminiAPIKey() == "" {
		return Availability{Detail: "no API key (set GEMINI_API_KEY or gemini.api_key)"}
	}
	return Availability{
		Available: true,
		Detail:    "models: " + strings.Join(config.SupportedGeminiModels, ", "),
	}
}

func (r *Router) defaultProvider() types.Provider {
	if p := types.Provider(r.cfg.Provider); p.Valid() {
		return p
	}
	return types.ProviderClaude
}

// effectiveTimeout applies the precedence: per-request beats per-backend
// config beats unbounded.
func effectiveTimeout(reqTimeout time.Duration, cfgSeconds int) time.Duration {
	if reqTimeout > 0 {
		return reqTimeout
	}
	if cfgSeconds > 0 {
		return time.Duration(cfgSeconds) * time.Second
	}
	return 0
}

func failure(err *types.ExecError, duration time.Duration) types.ExecutionResult {
	return types.ExecutionResult{Err: err, Duration: duration}
}
