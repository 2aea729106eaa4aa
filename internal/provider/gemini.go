package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"flowsmith/internal/config"
	"flowsmith/internal/extract"
	"flowsmith/internal/logging"
	"flowsmith/internal/stream"
	"flowsmith/internal/types"
)

func (r *Router) geminiTimeoutSeconds() int {
	if r.cfg.Gemini != nil {
		return r.cfg.Gemini.Timeout
	}
	return 0
}

// gemini returns the shared API client, creating it on first use so that a
// config without an API key never pays for (or fails at) client construction.
func (r *Router) gemini(ctx context.Context, apiKey string) (*genai.Client, error) {
	r.geminiMu.Lock()
	defer r.geminiMu.Unlock()
	if r.geminiClient != nil {
		return r.geminiClient, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	r.geminiClient = client
	return client, nil
}

func (r *Router) registerGeminiCancel(requestID string, cancel context.CancelFunc) {
	r.geminiMu.Lock()
	r.geminiCancels[requestID] = cancel
	r.geminiMu.Unlock()
}

func (r *Router) unregisterGeminiCancel(requestID string) {
	r.geminiMu.Lock()
	delete(r.geminiCancels, requestID)
	r.geminiMu.Unlock()
}

func (r *Router) runGemini(ctx context.Context, req types.ExecutionRequest, progress types.ProgressFunc) types.ExecutionResult {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = r.cfg.GeminiModel()
	}
	if !config.GeminiModelSupported(model) {
		return failure(types.NewExecError(types.ErrModelNotSupported,
			"model %q is not supported by the gemini backend", model), time.Since(start))
	}

	if req.ResumeSessionID != "" {
		logging.ProviderWarn("gemini backend has no session resume, ignoring session %s", req.ResumeSessionID)
	}
	if len(req.AllowedTools) > 0 {
		logging.ProviderWarn("gemini backend has no tool allow-list, ignoring %d entries", len(req.AllowedTools))
	}

	apiKey := r.cfg.GeminiAPIKey()
	if apiKey == "" {
		return failure(types.NewExecError(types.ErrUnknown,
			"no API key configured for gemini (set GEMINI_API_KEY)"), time.Since(start))
	}

	client, err := r.gemini(ctx, apiKey)
	if err != nil {
		return failure(&types.ExecError{
			Code:    types.ErrUnknown,
			Message: "failed to create gemini client",
			Detail:  err.Error(),
		}, time.Since(start))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if timeout := effectiveTimeout(req.Timeout, r.geminiTimeoutSeconds()); timeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, timeout)
		defer tcancel()
	}

	r.registerGeminiCancel(req.RequestID, cancel)
	defer r.unregisterGeminiCancel(req.RequestID)

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	var acc stream.Accumulator
	for resp, streamErr := range client.Models.GenerateContentStream(runCtx, model, contents, nil) {
		if streamErr != nil {
			return types.ExecutionResult{
				Output:   acc.Explanatory(),
				Err:      classifyGeminiError(runCtx, streamErr),
				Duration: time.Since(start),
			}
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		acc.AddText(text)
		if progress != nil {
			progress(types.StreamUpdate{
				Chunk:       text,
				Display:     acc.Display(),
				Explanatory: acc.Explanatory(),
				Kind:        types.UpdateText,
			})
		}
	}

	out := acc.Explanatory()
	if strings.TrimSpace(out) == "" {
		return failure(types.NewExecError(types.ErrParse, "model returned no text"), time.Since(start))
	}

	return types.ExecutionResult{
		Success:  true,
		Output:   extract.Isolate(out),
		Duration: time.Since(start),
	}
}

// classifyGeminiError distinguishes our own context signals from real API
// failures.
func classifyGeminiError(ctx context.Context, err error) *types.ExecError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return types.NewExecError(types.ErrTimeout, "execution timed out")
	case errors.Is(ctx.Err(), context.Canceled):
		return types.NewExecError(types.ErrUnknown, "execution cancelled")
	default:
		return &types.ExecError{
			Code:    types.ErrUnknown,
			Message: "gemini api error",
			Detail:  types.Truncate(err.Error(), 500),
		}
	}
}
