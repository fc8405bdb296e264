package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/strategos-io/strategos/pkg/orchestrator"
	"github.com/strategos-io/strategos/pkg/policy"
	"github.com/strategos-io/strategos/pkg/schema"
)

func newRunCommand(version string) *cobra.Command {
	var (
		business     schema.BusinessContext
		businessFile string
		keywords     []string
		problem      string
	)

	cmd := &cobra.Command{
		Use:   "run <journey-id>",
		Short: "Run a journey end to end",
		Long: `Start a journey for a business and run every framework in
sequence. Each framework output is validated against its schema and
scored against quality criteria before the next framework starts. The
session is persisted after every framework, so an interrupted run can
be resumed.`,
		Example: `  # Diagnose a problem
  strategos run problem-diagnosis \
      --name "Acme Analytics" --type saas --scale seed \
      --description "Self-serve product analytics for mid-market teams" \
      --problem "trial users drop off before activation"

  # Load the business context from a file
  strategos run startup-validation --business ./acme.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			journeyID := args[0]

			if businessFile != "" {
				loaded, err := loadBusinessContext(businessFile)
				if err != nil {
					return err
				}
				business = *loaded
			}
			if len(keywords) > 0 {
				business.Keywords = keywords
			}

			rt, err := newRuntime(ctx, version)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			decision, err := rt.engine.EvaluateRun(ctx, &policy.RunRequest{
				JourneyID:        journeyID,
				BusinessContext:  business,
				ProblemStatement: problem,
			})
			if err != nil {
				return err
			}
			for _, w := range decision.Warnings {
				rt.logger.Warn().Str("policy", w.Policy).Msg(w.Message)
			}
			if !decision.Allowed {
				for _, v := range decision.Violations {
					fmt.Fprintf(os.Stderr, "policy %s: %s\n", v.Policy, v.Message)
				}
				return fmt.Errorf("run blocked by policy")
			}

			runner, err := rt.newRunner()
			if err != nil {
				return err
			}
			rt.serveMetrics()

			sc, err := runner.StartJourney(ctx, journeyID, business, problem)
			if err != nil {
				return err
			}
			fmt.Printf("Session %s started\n", sc.SessionID)

			summary, err := runner.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("session %s: %w", sc.SessionID, err)
			}

			return printSummary(summary)
		},
	}

	cmd.Flags().StringVar(&business.Name, "name", "", "business name")
	cmd.Flags().StringVar(&business.Type, "type", "", "business type (e.g., saas, marketplace)")
	cmd.Flags().StringVar(&business.Scale, "scale", "", "business scale (e.g., seed, growth)")
	cmd.Flags().StringVar(&business.Description, "description", "", "business description")
	cmd.Flags().StringVar(&business.Industry, "industry", "", "industry")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "research keywords")
	cmd.Flags().StringVar(&problem, "problem", "", "problem statement for diagnostic journeys")
	cmd.Flags().StringVar(&businessFile, "business", "", "YAML or JSON file with the business context")

	return cmd
}

func newResumeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume a paused session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, version)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if _, err := rt.requireSQLite(); err != nil {
				return err
			}

			runner, err := rt.newRunner()
			if err != nil {
				return err
			}
			rt.serveMetrics()

			summary, err := runner.Resume(ctx, args[0])
			if err != nil {
				return err
			}
			return printSummary(summary)
		},
	}
}

// loadBusinessContext reads a business context document. YAML handles
// both formats since JSON is a YAML subset.
func loadBusinessContext(path string) (*schema.BusinessContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read business context %s: %w", path, err)
	}

	var business schema.BusinessContext
	if err := yaml.Unmarshal(data, &business); err != nil {
		return nil, fmt.Errorf("failed to parse business context %s: %w", path, err)
	}
	return &business, nil
}

func printSummary(summary *orchestrator.JourneySummary) error {
	if jsonOutput {
		return printJSON(summary)
	}

	fmt.Printf("\n%s\n%s\n\n", summary.Headline, strings.Repeat("=", len(summary.Headline)))
	fmt.Printf("Session:         %s\n", summary.SessionID)
	fmt.Printf("Journey:         %s\n", summary.JourneyID)
	fmt.Printf("Verified claims: %d\n", summary.VerifiedClaims)

	if len(summary.KeyInsights) > 0 {
		fmt.Println("\nKey insights:")
		for _, insight := range summary.KeyInsights {
			fmt.Printf("  - %s\n", insight)
		}
	}
	for name, text := range summary.Sections {
		fmt.Printf("\n%s:\n  %s\n", name, text)
	}
	return nil
}
