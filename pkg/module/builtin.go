package module

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/quality"
)

// defaultMinimumScore is the quality gate applied to built-in
// frameworks: outputs below it are regenerated.
const defaultMinimumScore = 7.0

// modelExecute builds an execute function that delegates the analysis
// to the injected model client.
func modelExecute(frameworkID, outputSchema string) ExecuteFunc {
	return func(ctx context.Context, input json.RawMessage, caps providers.Capabilities) (json.RawMessage, error) {
		if caps.Model == nil {
			return nil, fmt.Errorf("no model client injected for %s", frameworkID)
		}
		return caps.Model.GenerateAnalysis(ctx, providers.AnalysisRequest{
			FrameworkID:  frameworkID,
			Input:        input,
			OutputSchema: outputSchema,
		})
	}
}

// Builtins returns the contracts for the five built-in frameworks.
func Builtins() []*Contract {
	return []*Contract{
		{
			ID:                  "five_whys",
			Name:                "Five Whys",
			Version:             "1.0.0",
			Description:         "Iterative root-cause diagnosis of an observed problem",
			Category:            CategoryAnalysis,
			InputSchema:         "five_whys.input",
			OutputSchema:        "five_whys.output",
			Criteria:            quality.FrameworkCriteria("five_whys"),
			MinimumQualityScore: defaultMinimumScore,
			Execute:             modelExecute("five_whys", "five_whys.output"),
		},
		{
			ID:                   "pestle",
			Name:                 "PESTLE Analysis",
			Version:              "1.0.0",
			Description:          "Macro-environment scan across political, economic, social, technological, legal, and environmental factors",
			Category:             CategoryAnalysis,
			InputSchema:          "pestle.input",
			OutputSchema:         "pestle.output",
			OptionalDependencies: []string{"five_whys"},
			Criteria:             quality.FrameworkCriteria("pestle"),
			MinimumQualityScore:  defaultMinimumScore,
			Execute:              modelExecute("pestle", "pestle.output"),
		},
		{
			ID:                   "five_forces",
			Name:                 "Porter's Five Forces",
			Version:              "1.0.0",
			Description:          "Structural assessment of competitive intensity and industry attractiveness",
			Category:             CategoryPositioning,
			InputSchema:          "five_forces.input",
			OutputSchema:         "five_forces.output",
			OptionalDependencies: []string{"pestle"},
			Criteria:             quality.FrameworkCriteria("five_forces"),
			MinimumQualityScore:  defaultMinimumScore,
			Execute:              modelExecute("five_forces", "five_forces.output"),
		},
		{
			ID:                   "swot",
			Name:                 "SWOT Analysis",
			Version:              "1.0.0",
			Description:          "Synthesis of internal strengths and weaknesses against external opportunities and threats",
			Category:             CategorySynthesis,
			InputSchema:          "swot.input",
			OutputSchema:         "swot.output",
			OptionalDependencies: []string{"five_forces", "pestle"},
			Criteria:             quality.FrameworkCriteria("swot"),
			MinimumQualityScore:  defaultMinimumScore,
			Execute:              modelExecute("swot", "swot.output"),
		},
		{
			ID:                   "bmc",
			Name:                 "Business Model Canvas",
			Version:              "1.0.0",
			Description:          "Nine-block business model design grounded in upstream analysis",
			Category:             CategoryDecision,
			InputSchema:          "bmc.input",
			OutputSchema:         "bmc.output",
			OptionalDependencies: []string{"swot", "five_forces", "pestle"},
			Criteria:             quality.FrameworkCriteria("bmc"),
			MinimumQualityScore:  defaultMinimumScore,
			Execute:              modelExecute("bmc", "bmc.output"),
		},
	}
}

// BuiltinRegistry builds a registry holding the built-in contracts.
func BuiltinRegistry() (*Registry, error) {
	return NewRegistry(Builtins()...)
}
