package provider

import (
	"context"
	"errors"
	"strings"

	"flowsmith/internal/config"
	"flowsmith/internal/extract"
	"flowsmith/internal/logging"
	"flowsmith/internal/process"
	"flowsmith/internal/stream"
	"flowsmith/internal/types"
)

const (
	claudeTool    = "claude"
	claudePackage = "@anthropic-ai/claude-code"
)

// claudeArgs builds the CLI argument list. The prompt travels over stdin, so
// -p takes no positional argument.
func claudeArgs(cfg *config.UserConfig, req types.ExecutionRequest) []string {
	model := req.Model
	if model == "" {
		model = cfg.ClaudeModel()
	}

	args := []string{
		"-p",
		"--output-format", "stream-json",
		"--verbose",
		"--model", model,
		"--dangerously-skip-permissions",
	}

	tools := req.AllowedTools
	if len(tools) == 0 && cfg.ClaudeCLI != nil {
		tools = cfg.ClaudeCLI.AllowedTools
	}
	if len(tools) > 0 {
		args = append(args, "--allowedTools", strings.Join(tools, ","))
	}

	if req.ResumeSessionID != "" {
		args = append(args, "--resume", req.ResumeSessionID)
	}
	return args
}

func claudeTimeoutSeconds(cfg *config.UserConfig) int {
	if cfg.ClaudeCLI != nil {
		return cfg.ClaudeCLI.Timeout
	}
	return 0
}

func (r *Router) runClaude(ctx context.Context, req types.ExecutionRequest, progress types.ProgressFunc) types.ExecutionResult {
	if req.ReasoningEffort != "" {
		logging.ProviderDebug("claude backend has no reasoning effort control, ignoring %q", req.ReasoningEffort)
	}

	parser := stream.NewClaudeParser(progress)
	inv := r.planner.Plan(ctx, claudeTool, claudePackage, claudeArgs(r.cfg, req))

	outcome, err := r.supervisor.Run(ctx, process.RunSpec{
		Command:   inv.Command,
		Args:      inv.Args,
		Dir:       req.WorkingDir,
		Stdin:     req.Prompt,
		Timeout:   effectiveTimeout(req.Timeout, claudeTimeoutSeconds(r.cfg)),
		RequestID: req.RequestID,
	}, parser.Consume)
	parser.Close()

	return finishCLI(parser, outcome, err)
}

// finishCLI converts a finished subprocess plus its parsed stream into the
// uniform result. Partial accumulated text survives every failure path so
// callers can show what arrived before things went wrong.
func finishCLI(parser *stream.Parser, outcome process.Outcome, err error) types.ExecutionResult {
	res := types.ExecutionResult{
		Duration:  outcome.Duration,
		SessionID: parser.SessionID(),
		Output:    parser.Explanatory(),
	}

	if err != nil {
		var ee *types.ExecError
		if !errors.As(err, &ee) {
			ee = types.NewExecError(types.ErrUnknown, "%v", err)
		}
		res.Err = ee
		return res
	}

	if msg := parser.StreamErr(); msg != "" {
		res.Err = types.NewExecError(types.ErrUnknown, "backend reported an error: %s", msg)
		return res
	}

	base := parser.FinalResult()
	if base == "" {
		base = parser.Explanatory()
	}
	if strings.TrimSpace(base) == "" {
		if parser.SawEvent() {
			res.Err = types.NewExecError(types.ErrParse, "backend produced no response text")
		} else {
			res.Err = &types.ExecError{
				Code:    types.ErrParse,
				Message: "no parseable output from backend",
				Detail:  types.Truncate(outcome.Stderr, 500),
			}
		}
		return res
	}

	res.Success = true
	res.Output = extract.Isolate(base)
	return res
}
