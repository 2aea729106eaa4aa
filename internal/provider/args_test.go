package provider

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"flowsmith/internal/config"
	"flowsmith/internal/types"
)

func TestClaudeArgs(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.UserConfig
		req  types.ExecutionRequest
		want []string
	}{
		{
			name: "defaults",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{},
			want: []string{
				"-p", "--output-format", "stream-json", "--verbose",
				"--model", "sonnet", "--dangerously-skip-permissions",
			},
		},
		{
			name: "request model beats config model",
			cfg:  &config.UserConfig{ClaudeCLI: &config.ClaudeCLIConfig{Model: "opus"}},
			req:  types.ExecutionRequest{Model: "haiku"},
			want: []string{
				"-p", "--output-format", "stream-json", "--verbose",
				"--model", "haiku", "--dangerously-skip-permissions",
			},
		},
		{
			name: "allowed tools are comma joined",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{AllowedTools: []string{"Read", "Grep"}},
			want: []string{
				"-p", "--output-format", "stream-json", "--verbose",
				"--model", "sonnet", "--dangerously-skip-permissions",
				"--allowedTools", "Read,Grep",
			},
		},
		{
			name: "config tools apply when request has none",
			cfg: &config.UserConfig{
				ClaudeCLI: &config.ClaudeCLIConfig{AllowedTools: []string{"Bash"}},
			},
			req: types.ExecutionRequest{},
			want: []string{
				"-p", "--output-format", "stream-json", "--verbose",
				"--model", "sonnet", "--dangerously-skip-permissions",
				"--allowedTools", "Bash",
			},
		},
		{
			name: "resume appends the session flag",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{ResumeSessionID: "sess-9"},
			want: []string{
				"-p", "--output-format", "stream-json", "--verbose",
				"--model", "sonnet", "--dangerously-skip-permissions",
				"--resume", "sess-9",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := claudeArgs(tc.cfg, tc.req)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodexArgs(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.UserConfig
		req  types.ExecutionRequest
		want []string
	}{
		{
			name: "defaults",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{},
			want: []string{
				"exec", "--json", "--skip-git-repo-check",
				"--model", "gpt-5.1-codex-max", "-",
			},
		},
		{
			name: "reasoning effort from request",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{ReasoningEffort: "high"},
			want: []string{
				"exec", "--json", "--skip-git-repo-check",
				"--model", "gpt-5.1-codex-max",
				"-c", "model_reasoning_effort=high", "-",
			},
		},
		{
			name: "reasoning effort from config",
			cfg: &config.UserConfig{
				CodexCLI: &config.CodexCLIConfig{ReasoningEffort: "low", Model: "o4-mini"},
			},
			req: types.ExecutionRequest{},
			want: []string{
				"exec", "--json", "--skip-git-repo-check",
				"--model", "o4-mini",
				"-c", "model_reasoning_effort=low", "-",
			},
		},
		{
			name: "resume is positional before flags",
			cfg:  &config.UserConfig{},
			req:  types.ExecutionRequest{ResumeSessionID: "th-3"},
			want: []string{
				"exec", "resume", "th-3", "--json", "--skip-git-repo-check",
				"--model", "gpt-5.1-codex-max", "-",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codexArgs(tc.cfg, tc.req)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEffectiveTimeout(t *testing.T) {
	cases := []struct {
		req  time.Duration
		cfg  int
		want time.Duration
	}{
		{2 * time.Second, 30, 2 * time.Second},
		{0, 30, 30 * time.Second},
		{0, 0, 0},
		{time.Millisecond, 0, time.Millisecond},
	}
	for _, tc := range cases {
		if got := effectiveTimeout(tc.req, tc.cfg); got != tc.want {
			t.Errorf("effectiveTimeout(%s, %d) = %s, want %s", tc.req, tc.cfg, got, tc.want)
		}
	}
}
