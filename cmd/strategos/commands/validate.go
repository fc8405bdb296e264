package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/module"
	"github.com/strategos-io/strategos/pkg/orchestrator"
	"github.com/strategos-io/strategos/pkg/policy"
	"github.com/strategos-io/strategos/pkg/telemetry"
)

func newValidateCommand() *cobra.Command {
	var policyPaths []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the journey catalog against registries and policies",
		Long: `Validate every registered journey for consistency:

  - each framework resolves to a module contract
  - consecutive frameworks have a registered bridge
  - declared dependencies respect the framework order
  - the summary builder exists
  - governance policies (built-in plus any loaded) pass`,
		Example: `  # Validate the built-in catalog
  strategos validate

  # Include custom governance policies
  strategos validate --policy ./policies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			modules, err := module.BuiltinRegistry()
			if err != nil {
				return err
			}
			bridges, err := bridge.BuiltinRegistry()
			if err != nil {
				return err
			}
			journeys, err := journey.BuiltinRegistry()
			if err != nil {
				return err
			}
			builders, err := orchestrator.NewBuilderRegistry(orchestrator.BuiltinBuilders())
			if err != nil {
				return err
			}

			issues := journey.NewValidator(modules, bridges, builders.Names()).ValidateAll(journeys)
			for _, issue := range issues {
				fmt.Printf("%s: journey %s: %s\n", issue.Severity, issue.JourneyID, issue.Message)
			}

			engine, err := policy.NewEngine(telemetry.Nop())
			if err != nil {
				return err
			}
			if len(policyPaths) > 0 {
				if err := engine.LoadPolicies(ctx, policyPaths); err != nil {
					return err
				}
			}

			blocked := 0
			for _, def := range journey.Builtins() {
				result, err := engine.EvaluateJourney(ctx, def)
				if err != nil {
					return err
				}
				for _, v := range result.Violations {
					fmt.Printf("error: journey %s: policy %s: %s\n", def.ID, v.Policy, v.Message)
				}
				for _, w := range result.Warnings {
					fmt.Printf("warning: journey %s: policy %s: %s\n", def.ID, w.Policy, w.Message)
				}
				if !result.Allowed {
					blocked++
				}
			}

			if journey.HasErrors(issues) || blocked > 0 {
				return fmt.Errorf("validation failed")
			}

			fmt.Printf("%d journeys valid\n", journeys.Len())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&policyPaths, "policy", nil, "additional policy files or directories")

	return cmd
}
