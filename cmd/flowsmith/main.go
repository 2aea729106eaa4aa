// flowsmith runs prompts against interchangeable AI execution backends: the
// Claude Code CLI, the Codex CLI, or the Gemini API, with a uniform result
// shape and uniform failure taxonomy across all three.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowsmith/internal/config"
	"flowsmith/internal/logging"
)

var version = "0.3.0"

var (
	flagConfig  string
	flagVerbose bool

	cfg *config.UserConfig
)

var rootCmd = &cobra.Command{
	Use:   "flowsmith",
	Short: "Run prompts against interchangeable AI execution backends",
	Long: `flowsmith dispatches a prompt to one of three backends (the Claude Code
CLI, the Codex CLI, or the Gemini API), streams progress as it arrives, and
isolates the final structured response from the model's explanatory prose.

CLI backends that are not installed are run through npx automatically.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		logging.Boot("config loaded (default provider=%q)", cfg.Provider)
		return nil
	},
}

func setupLogging() error {
	zcfg := zap.NewDevelopmentConfig()
	if flagVerbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logging.SetLogger(logger)
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file path (default ~/.flowsmith/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")

	rootCmd.AddCommand(runCmd, checkCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
