package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/journey"
)

func newJourneysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journeys",
		Short: "Inspect the journey catalog",
	}

	cmd.AddCommand(newJourneysListCommand())
	cmd.AddCommand(newJourneysShowCommand())

	return cmd
}

func newJourneysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available journeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := journey.Builtins()

			if jsonOutput {
				return printJSON(defs)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tFRAMEWORKS\tNAME")
			for _, d := range defs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, d.Type, len(d.Frameworks), d.Name)
			}
			return w.Flush()
		},
	}
}

func newJourneysShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <journey-id>",
		Short: "Show a journey's frameworks, dependencies, and thresholds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := journey.BuiltinRegistry()
			if err != nil {
				return err
			}
			def, err := reg.Get(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(def)
			}

			fmt.Printf("%s (%s)\n", def.Name, def.ID)
			fmt.Printf("  Type:            %s\n", def.Type)
			if def.Description != "" {
				fmt.Printf("  Description:     %s\n", def.Description)
			}
			fmt.Printf("  Frameworks:      %s\n", strings.Join(def.Frameworks, " -> "))
			fmt.Printf("  Summary builder: %s\n", def.SummaryBuilder)
			fmt.Printf("  Readiness:       %d references, %d entities\n",
				def.DefaultReadiness.MinReferences, def.DefaultReadiness.MinEntities)
			for _, dep := range def.Dependencies {
				fmt.Printf("  Dependency:      %s before %s\n", dep.From, dep.To)
			}
			if len(def.InsightsConfig.RequiredSignals) > 0 {
				fmt.Printf("  Signals:         %s\n", strings.Join(def.InsightsConfig.RequiredSignals, ", "))
			}
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
