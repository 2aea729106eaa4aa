// Package config holds user configuration for flowsmith, loaded from
// ~/.flowsmith/config.json with environment-variable overrides applied on
// top. Absence of the file is not an error; every field has a usable default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// ClaudeCLIConfig configures the Claude Code CLI backend.
//
// The CLI is used as a subprocess LLM API, not as an agent: flowsmith asks
// for stream-json output and treats the process as a single completion.
type ClaudeCLIConfig struct {
	// Model alias: "sonnet", "opus", "haiku", or a full model name.
	Model string `json:"model,omitempty"`

	// Timeout in seconds applied when a request does not carry its own.
	Timeout int `json:"timeout,omitempty"`

	// AllowedTools restricts the CLI's tool use (--allowedTools).
	AllowedTools []string `json:"allowed_tools,omitempty"`
}

// CodexCLIConfig configures the Codex CLI backend.
type CodexCLIConfig struct {
	// Model: "gpt-5.1-codex-max" (default), "gpt-5.1-codex-mini", "o4-mini", ...
	Model string `json:"model,omitempty"`

	// ReasoningEffort maps to `-c model_reasoning_effort=...`.
	// Values seen in the wild: "low", "medium", "high", "xhigh".
	ReasoningEffort string `json:"reasoning_effort,omitempty"`

	// Timeout in seconds applied when a request does not carry its own.
	Timeout int `json:"timeout,omitempty"`
}

// GeminiConfig configures the in-process Gemini backend.
type GeminiConfig struct {
	// APIKey falls back to GEMINI_API_KEY / GOOGLE_API_KEY when empty.
	APIKey string `json:"api_key,omitempty"`

	// Model: see SupportedGeminiModels.
	Model string `json:"model,omitempty"`

	// Timeout in seconds applied when a request does not carry its own.
	Timeout int `json:"timeout,omitempty"`
}

// ShellConfig describes the host's preferred interactive shell, used by the
// executable resolver to inherit user PATH customizations (nvm, asdf, ...).
// A nil ShellConfig means "not configured" and is a valid answer.
type ShellConfig struct {
	Path string   `json:"path,omitempty"`
	Args []string `json:"args,omitempty"`
}

// UserConfig is the single source of configuration truth.
type UserConfig struct {
	// Provider is the default backend: "claude", "codex", or "gemini".
	Provider string `json:"provider,omitempty"`

	ClaudeCLI *ClaudeCLIConfig `json:"claude_cli,omitempty"`
	CodexCLI  *CodexCLIConfig  `json:"codex_cli,omitempty"`
	Gemini    *GeminiConfig    `json:"gemini,omitempty"`

	// Shell overrides the default interactive shell used for PATH probing.
	Shell *ShellConfig `json:"shell,omitempty"`
}

// Backend model defaults.
const (
	DefaultClaudeModel = "sonnet"
	DefaultCodexModel  = "gpt-5.1-codex-max"
	DefaultGeminiModel = "gemini-3-flash-preview"
)

// SupportedGeminiModels is the closed set the in-process backend accepts.
// Requests naming anything else fail with MODEL_NOT_SUPPORTED.
var SupportedGeminiModels = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
}

// GeminiModelSupported reports whether the in-process backend knows model.
func GeminiModelSupported(model string) bool {
	for _, m := range SupportedGeminiModels {
		if m == model {
			return true
		}
	}
	return false
}

// DefaultUserConfigPath returns ~/.flowsmith/config.json.
func DefaultUserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".flowsmith", "config.json")
	}
	return filepath.Join(home, ".flowsmith", "config.json")
}

// envOverrides are applied on top of whatever the config file provided.
type envOverrides struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	Provider     string `env:"FLOWSMITH_PROVIDER"`
	ClaudeModel  string `env:"FLOWSMITH_CLAUDE_MODEL"`
	CodexModel   string `env:"FLOWSMITH_CODEX_MODEL"`
	GeminiModel  string `env:"FLOWSMITH_GEMINI_MODEL"`
	Shell        string `env:"SHELL"`
}

// Load reads the config file at path (DefaultUserConfigPath when empty) and
// applies environment overrides. A missing file yields a default config.
func Load(path string) (*UserConfig, error) {
	if path == "" {
		path = DefaultUserConfigPath()
	}

	cfg := &UserConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file: defaults + env only.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *UserConfig) applyEnvOverrides() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if c.Provider == "" && ov.Provider != "" {
		c.Provider = ov.Provider
	}
	if ov.ClaudeModel != "" {
		c.ensureClaude().Model = ov.ClaudeModel
	}
	if ov.CodexModel != "" {
		c.ensureCodex().Model = ov.CodexModel
	}
	if ov.GeminiModel != "" {
		c.ensureGemini().Model = ov.GeminiModel
	}

	gem := c.ensureGemini()
	if gem.APIKey == "" {
		if ov.GeminiAPIKey != "" {
			gem.APIKey = ov.GeminiAPIKey
		} else if ov.GoogleAPIKey != "" {
			gem.APIKey = ov.GoogleAPIKey
		}
	}

	// $SHELL is only meaningful on POSIX platforms.
	if c.Shell == nil && ov.Shell != "" && runtime.GOOS != "windows" {
		c.Shell = &ShellConfig{Path: ov.Shell}
	}
	return nil
}

func (c *UserConfig) ensureClaude() *ClaudeCLIConfig {
	if c.ClaudeCLI == nil {
		c.ClaudeCLI = &ClaudeCLIConfig{}
	}
	return c.ClaudeCLI
}

func (c *UserConfig) ensureCodex() *CodexCLIConfig {
	if c.CodexCLI == nil {
		c.CodexCLI = &CodexCLIConfig{}
	}
	return c.CodexCLI
}

func (c *UserConfig) ensureGemini() *GeminiConfig {
	if c.Gemini == nil {
		c.Gemini = &GeminiConfig{}
	}
	return c.Gemini
}

// ClaudeModel returns the effective Claude model alias.
func (c *UserConfig) ClaudeModel() string {
	if c.ClaudeCLI != nil && c.ClaudeCLI.Model != "" {
		return c.ClaudeCLI.Model
	}
	return DefaultClaudeModel
}

// CodexModel returns the effective Codex model.
func (c *UserConfig) CodexModel() string {
	if c.CodexCLI != nil && c.CodexCLI.Model != "" {
		return c.CodexCLI.Model
	}
	return DefaultCodexModel
}

// GeminiModel returns the effective Gemini model.
func (c *UserConfig) GeminiModel() string {
	if c.Gemini != nil && c.Gemini.Model != "" {
		return c.Gemini.Model
	}
	return DefaultGeminiModel
}

// GeminiAPIKey returns the configured API key, possibly empty.
func (c *UserConfig) GeminiAPIKey() string {
	if c.Gemini != nil {
		return c.Gemini.APIKey
	}
	return ""
}
