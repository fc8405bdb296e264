package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/module"
)

func newRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the framework and bridge registries",
	}

	cmd.AddCommand(newRegistryDocsCommand())

	return cmd
}

func newRegistryDocsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate markdown documentation for the registries",
		Long: `Generate a markdown catalog of every framework contract, context
bridge, and journey. Useful for reviewing what a build ships without
reading the source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := module.BuiltinRegistry()
			if err != nil {
				return err
			}
			bridges, err := bridge.BuiltinRegistry()
			if err != nil {
				return err
			}

			doc := renderRegistryDocs(modules, bridges, journey.Builtins())

			if output == "" {
				fmt.Print(doc)
				return nil
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func renderRegistryDocs(modules *module.Registry, bridges *bridge.Registry, journeys []*journey.Definition) string {
	var b strings.Builder

	b.WriteString("# Registry Catalog\n\n## Frameworks\n\n")
	for _, id := range modules.IDs() {
		c, err := modules.Get(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "### %s (`%s` v%s)\n\n", c.Name, c.ID, c.Version)
		if c.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", c.Description)
		}
		fmt.Fprintf(&b, "- Category: %s\n", c.Category)
		fmt.Fprintf(&b, "- Schemas: `%s` -> `%s`\n", c.InputSchema, c.OutputSchema)
		if len(c.RequiredDependencies) > 0 {
			fmt.Fprintf(&b, "- Requires: %s\n", strings.Join(c.RequiredDependencies, ", "))
		}
		if len(c.OptionalDependencies) > 0 {
			fmt.Fprintf(&b, "- Enriched by: %s\n", strings.Join(c.OptionalDependencies, ", "))
		}
		fmt.Fprintf(&b, "- Quality gate: %.1f across %d criteria\n\n", c.MinimumQualityScore, len(c.Criteria))
	}

	b.WriteString("## Bridges\n\n")
	for _, key := range bridges.Keys() {
		c, err := bridges.Get(key.From, key.To)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", key)
		if c.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", c.Description)
		}
		for _, rule := range c.Rules {
			fmt.Fprintf(&b, "- **%s**: %s (e.g. %s)\n", rule.ID, rule.Description, rule.Example)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Journeys\n\n")
	for _, d := range journeys {
		fmt.Fprintf(&b, "### %s (`%s`)\n\n", d.Name, d.ID)
		if d.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", d.Description)
		}
		fmt.Fprintf(&b, "- Sequence: %s\n", strings.Join(d.Frameworks, " -> "))
		fmt.Fprintf(&b, "- Summary builder: %s\n", d.SummaryBuilder)
		fmt.Fprintf(&b, "- Readiness: %d references, %d entities\n\n",
			d.DefaultReadiness.MinReferences, d.DefaultReadiness.MinEntities)
	}

	return b.String()
}
