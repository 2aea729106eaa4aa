package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"flowsmith/internal/provider"
	"flowsmith/internal/types"
)

var (
	runProvider string
	runModel    string
	runEffort   string
	runStream   bool
	runTimeout  time.Duration
	runResume   string
	runCwd      string
	runTools    []string
)

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Execute a prompt against a backend",
	Long: `Execute a prompt and print the isolated response. The prompt comes from
the argument, or from stdin when the argument is "-" or absent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecute,
}

func init() {
	runCmd.Flags().StringVarP(&runProvider, "provider", "p", "",
		"backend to use: claude, codex or gemini (default from config)")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "",
		"model override for the chosen backend")
	runCmd.Flags().StringVar(&runEffort, "effort", "",
		"reasoning effort (codex only): low, medium, high, xhigh")
	runCmd.Flags().BoolVar(&runStream, "stream", false,
		"print text as it arrives instead of only the final response")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", types.DefaultTimeout,
		"execution timeout, 0 for unbounded")
	runCmd.Flags().StringVar(&runResume, "resume", "",
		"session ID to continue (claude and codex only)")
	runCmd.Flags().StringVar(&runCwd, "cwd", "",
		"working directory for the backend process")
	runCmd.Flags().StringSliceVar(&runTools, "allow-tool", nil,
		"tool the backend may use, repeatable (claude only)")
}

func runExecute(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	router := provider.NewRouter(cfg)
	req := types.ExecutionRequest{
		Prompt:          prompt,
		Provider:        types.Provider(runProvider),
		Timeout:         runTimeout,
		WorkingDir:      runCwd,
		Model:           runModel,
		ReasoningEffort: runEffort,
		AllowedTools:    runTools,
		ResumeSessionID: runResume,
	}

	var res types.ExecutionResult
	if runStream {
		res = router.ExecuteStreaming(ctx, req, func(u types.StreamUpdate) {
			fmt.Print(u.Chunk)
		})
		fmt.Println()
	} else {
		res = router.Execute(ctx, req)
	}

	if res.SessionID != "" {
		fmt.Fprintf(os.Stderr, "session: %s\n", res.SessionID)
	}

	if !res.Success {
		if res.Output != "" {
			// Show what arrived before the failure.
			fmt.Fprintln(os.Stderr, res.Output)
		}
		return fmt.Errorf("%s", res.Err)
	}

	if !runStream {
		fmt.Println(res.Output)
	}
	return nil
}

func readPrompt(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no prompt given (pass an argument or pipe stdin)")
	}
	return string(data), nil
}
