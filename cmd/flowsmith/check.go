package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flowsmith/internal/provider"
	"flowsmith/internal/types"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe backend availability without running a prompt",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "output format: text or yaml")
}

// checkReport is the yaml-facing shape of one backend probe.
type checkReport struct {
	Available bool   `yaml:"available"`
	Path      string `yaml:"path,omitempty"`
	Version   string `yaml:"version,omitempty"`
	Detail    string `yaml:"detail,omitempty"`
}

var checkOrder = []types.Provider{
	types.ProviderClaude,
	types.ProviderCodex,
	types.ProviderGemini,
}

func runCheck(cmd *cobra.Command, args []string) error {
	router := provider.NewRouter(cfg)
	avail := router.CheckAvailability(context.Background())

	switch checkFormat {
	case "yaml":
		report := make(map[string]checkReport, len(avail))
		for p, av := range avail {
			report[string(p)] = checkReport{
				Available: av.Available,
				Path:      av.Path,
				Version:   av.Version,
				Detail:    av.Detail,
			}
		}
		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Print(string(out))
	case "text":
		for _, p := range checkOrder {
			av := avail[p]
			status := "unavailable"
			if av.Available {
				status = "available"
			}
			fmt.Printf("%-8s %s", p, status)
			if av.Path != "" {
				fmt.Printf("  %s", av.Path)
			}
			if av.Version != "" {
				fmt.Printf("  (%s)", av.Version)
			}
			if av.Detail != "" {
				fmt.Printf("  %s", av.Detail)
			}
			fmt.Println()
		}
	default:
		return fmt.Errorf("unknown format %q (want text or yaml)", checkFormat)
	}
	return nil
}
