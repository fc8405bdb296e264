// Package commands implements the strategos CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strategos",
		Short: "Strategos - Strategic Analysis Orchestration Engine",
		Long: `Strategos runs structured strategic-analysis journeys: ordered
sequences of analytical frameworks (Five Whys, PESTLE, Five Forces,
SWOT, Business Model Canvas) connected by context bridges, with every
framework output gated on schema validity and quality scoring.

Features:
  - Curated journeys for common strategic questions
  - CUE-validated framework inputs and outputs
  - Quality gates with weighted criterion scoring
  - Banded knowledge ledger across frameworks
  - Policy enforcement via OPA/rego
  - Durable sessions with pause and resume`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newJourneysCommand())
	rootCmd.AddCommand(newRegistryCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRunCommand(version))
	rootCmd.AddCommand(newResumeCommand(version))
	rootCmd.AddCommand(newSessionsCommand(version))
	rootCmd.AddCommand(newPoliciesCommand())
	rootCmd.AddCommand(newSmokeCommand())

	return rootCmd
}
