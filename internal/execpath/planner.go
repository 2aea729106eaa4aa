package execpath

import (
	"context"

	"flowsmith/internal/logging"
)

// npxRunner runs npm packages without a global install. Prepending -y skips
// the interactive install prompt, which would hang a headless spawn.
const npxRunner = "npx"

// Invocation is a fully planned command line, ready for the supervisor.
type Invocation struct {
	Command string
	Args    []string
}

// Planner turns a tool name into a concrete invocation, falling back to npx
// when the tool itself is not installed.
type Planner struct {
	resolver *Resolver
}

// NewPlanner builds a planner on top of an existing resolver so both share
// one path cache.
func NewPlanner(r *Resolver) *Planner {
	return &Planner{resolver: r}
}

// Plan resolves tool and returns the invocation to spawn. pkg is the npm
// package that provides tool for the npx fallback.
//
// When neither tool nor npx resolves, Plan still returns a bare npx
// invocation rather than failing here: the supervisor's spawn error carries
// the precise COMMAND_NOT_FOUND classification.
func (p *Planner) Plan(ctx context.Context, tool, pkg string, args []string) Invocation {
	if path, ok := p.resolver.Resolve(ctx, tool); ok {
		return Invocation{Command: path, Args: args}
	}

	fallback := append([]string{"-y", pkg}, args...)
	if runner, ok := p.resolver.Resolve(ctx, npxRunner); ok {
		logging.Resolver("%s not installed, falling back to %s %s", tool, npxRunner, pkg)
		return Invocation{Command: runner, Args: fallback}
	}

	logging.ResolverDebug("neither %s nor %s resolved, spawning bare %s", tool, npxRunner, npxRunner)
	return Invocation{Command: npxRunner, Args: fallback}
}
