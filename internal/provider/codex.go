package provider

import (
	"context"

	"flowsmith/internal/config"
	"flowsmith/internal/logging"
	"flowsmith/internal/process"
	"flowsmith/internal/stream"
	"flowsmith/internal/types"
)

const (
	codexTool    = "codex"
	codexPackage = "@openai/codex"
)

// codexArgs builds the CLI argument list. Resume is positional (exec resume
// <id>) and the trailing "-" tells the CLI to read the prompt from stdin.
func codexArgs(cfg *config.UserConfig, req types.ExecutionRequest) []string {
	args := []string{"exec"}
	if req.ResumeSessionID != "" {
		args = append(args, "resume", req.ResumeSessionID)
	}

	model := req.Model
	if model == "" {
		model = cfg.CodexModel()
	}
	args = append(args, "--json", "--skip-git-repo-check", "--model", model)

	effort := req.ReasoningEffort
	if effort == "" && cfg.CodexCLI != nil {
		effort = cfg.CodexCLI.ReasoningEffort
	}
	if effort != "" {
		args = append(args, "-c", "model_reasoning_effort="+effort)
	}

	return append(args, "-")
}

func codexTimeoutSeconds(cfg *config.UserConfig) int {
	if cfg.CodexCLI != nil {
		return cfg.CodexCLI.Timeout
	}
	return 0
}

func (r *Router) runCodex(ctx context.Context, req types.ExecutionRequest, progress types.ProgressFunc) types.ExecutionResult {
	if len(req.AllowedTools) > 0 {
		logging.ProviderWarn("codex backend has no tool allow-list flag, ignoring %d entries", len(req.AllowedTools))
	}

	parser := stream.NewCodexParser(progress)
	inv := r.planner.Plan(ctx, codexTool, codexPackage, codexArgs(r.cfg, req))

	outcome, err := r.supervisor.Run(ctx, process.RunSpec{
		Command:   inv.Command,
		Args:      inv.Args,
		Dir:       req.WorkingDir,
		Stdin:     req.Prompt,
		Timeout:   effectiveTimeout(req.Timeout, codexTimeoutSeconds(r.cfg)),
		RequestID: req.RequestID,
	}, parser.Consume)
	parser.Close()

	return finishCLI(parser, outcome, err)
}
