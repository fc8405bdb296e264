package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/orchestrator"
)

func newSmokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run every journey against the mock providers",
		Long: `Run every registered journey end to end with the mock model and
research clients. A green smoke run means the module contracts,
bridges, schemas, and summary builders are mutually consistent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := orchestrator.RunSmoke(cmd.Context(), orchestrator.SmokeOptions{})
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := printJSON(results); err != nil {
					return err
				}
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "JOURNEY\tFRAMEWORKS\tRESULT\tDURATION")
				for _, r := range results {
					outcome := "ok"
					if !r.Passed {
						outcome = "FAIL: " + r.Error
					}
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.JourneyID, r.Frameworks, outcome, r.Duration.Round(time.Millisecond))
				}
				w.Flush()
			}

			for _, r := range results {
				if !r.Passed {
					return fmt.Errorf("smoke run failed")
				}
			}
			return nil
		},
	}
}
