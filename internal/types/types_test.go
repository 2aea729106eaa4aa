package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderValid(t *testing.T) {
	tests := []struct {
		provider Provider
		want     bool
	}{
		{ProviderClaude, true},
		{ProviderCodex, true},
		{ProviderGemini, true},
		{Provider(""), false},
		{Provider("chatgpt"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if got := tt.provider.Valid(); got != tt.want {
				t.Errorf("Provider(%q).Valid() = %v, want %v", tt.provider, got, tt.want)
			}
		})
	}
}

func TestExecErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *ExecError
		want string
	}{
		{
			name: "without detail",
			err:  &ExecError{Code: ErrTimeout, Message: "timed out after 50ms"},
			want: "TIMEOUT: timed out after 50ms",
		},
		{
			name: "with detail",
			err:  &ExecError{Code: ErrUnknown, Message: "exit code 2", Detail: "boom"},
			want: "UNKNOWN_ERROR: exit code 2 (boom)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecErrorDetectableWithErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("pipeline failed: %w", NewExecError(ErrCommandNotFound, "claude not found"))

	var execErr *ExecError
	if !errors.As(wrapped, &execErr) {
		t.Fatal("errors.As failed to unwrap *ExecError")
	}
	if execErr.Code != ErrCommandNotFound {
		t.Errorf("Code = %q, want %q", execErr.Code, ErrCommandNotFound)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"tiny max unchanged", "hello", 2, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
