package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/config"
	"github.com/strategos-io/strategos/pkg/policy"
	"github.com/strategos-io/strategos/pkg/telemetry"
)

func newPoliciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Inspect governance policies",
	}

	cmd.AddCommand(newPoliciesListCommand())

	return cmd
}

func newPoliciesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and configured policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine, err := policy.NewEngine(telemetry.Nop())
			if err != nil {
				return err
			}
			if len(cfg.Policy.Paths) > 0 {
				if err := engine.LoadPolicies(ctx, cfg.Policy.Paths); err != nil {
					return err
				}
			}

			policies := engine.ListPolicies()
			if jsonOutput {
				return printJSON(policies)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSEVERITY\tENABLED\tDESCRIPTION")
			for _, p := range policies {
				fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", p.Name, p.Severity, p.Enabled, p.Description)
			}
			return w.Flush()
		},
	}
}
