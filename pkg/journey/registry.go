package journey

import (
	"fmt"
)

// Registry is an immutable lookup table of journey definitions built
// once at process initialization.
type Registry struct {
	journeys map[string]*Definition
	byType   map[Type][]*Definition
	order    []string
}

// NewRegistry builds a registry from the given definitions. Every
// definition is structurally validated; a duplicate id is an error.
func NewRegistry(definitions ...*Definition) (*Registry, error) {
	r := &Registry{
		journeys: make(map[string]*Definition, len(definitions)),
		byType:   make(map[Type][]*Definition),
		order:    make([]string, 0, len(definitions)),
	}

	for _, d := range definitions {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid journey definition: %w", err)
		}
		if _, exists := r.journeys[d.ID]; exists {
			return nil, fmt.Errorf("duplicate journey id %s", d.ID)
		}
		r.journeys[d.ID] = d
		r.byType[d.Type] = append(r.byType[d.Type], d)
		r.order = append(r.order, d.ID)
	}

	return r, nil
}

// Get retrieves a definition by id.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.journeys[id]
	if !ok {
		return nil, fmt.Errorf("journey %s not registered", id)
	}
	return d, nil
}

// ByType returns the definitions of a given type.
func (r *Registry) ByType(t Type) []*Definition {
	return r.byType[t]
}

// IDs returns journey ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered journeys.
func (r *Registry) Len() int {
	return len(r.journeys)
}

// Builtins returns the built-in journey definitions.
func Builtins() []*Definition {
	return []*Definition{
		{
			ID:             "startup-validation",
			Type:           TypeStartupValidation,
			Name:           "Startup Validation",
			Description:    "Full diagnostic-to-design arc: root causes, macro scan, competitive structure, synthesis, and business model",
			Frameworks:     []string{"five_whys", "pestle", "five_forces", "swot", "bmc"},
			SummaryBuilder: "comprehensive",
			DefaultReadiness: Readiness{
				MinReferences: 3,
				MinEntities:   5,
			},
			InsightsConfig: InsightsConfig{
				RequiredSignals: []string{"rootCauses", "trendFactors", "competitiveForces", "swotFactors", "canvasBlocks"},
			},
			Dependencies: []Dependency{
				{From: "five_whys", To: "pestle"},
				{From: "pestle", To: "five_forces"},
				{From: "five_forces", To: "swot"},
				{From: "swot", To: "bmc"},
				{From: "five_whys", To: "swot"},
			},
		},
		{
			ID:             "market-entry",
			Type:           TypeMarketEntry,
			Name:           "Market Entry",
			Description:    "Macro environment and competitive structure feeding an entry-focused synthesis",
			Frameworks:     []string{"pestle", "five_forces", "swot"},
			SummaryBuilder: "market_entry",
			DefaultReadiness: Readiness{
				MinReferences: 3,
				MinEntities:   3,
			},
			InsightsConfig: InsightsConfig{
				RequiredSignals: []string{"trendFactors", "competitiveForces", "swotFactors"},
			},
			Dependencies: []Dependency{
				{From: "pestle", To: "five_forces"},
				{From: "five_forces", To: "swot"},
			},
		},
		{
			ID:             "competitive-strategy",
			Type:           TypeCompetitiveStrategy,
			Name:           "Competitive Strategy",
			Description:    "Competitive structure through synthesis into business model implications",
			Frameworks:     []string{"five_forces", "swot", "bmc"},
			SummaryBuilder: "competitive",
			DefaultReadiness: Readiness{
				MinReferences: 2,
				MinEntities:   3,
			},
			InsightsConfig: InsightsConfig{
				RequiredSignals: []string{"competitiveForces", "swotFactors", "canvasBlocks"},
			},
			Dependencies: []Dependency{
				{From: "five_forces", To: "swot"},
				{From: "swot", To: "bmc"},
			},
		},
		{
			ID:             "business-model-innovation",
			Type:           TypeBusinessModelInnovation,
			Name:           "Business Model Innovation",
			Description:    "Synthesis-driven redesign of the business model",
			Frameworks:     []string{"swot", "bmc"},
			SummaryBuilder: "business_model",
			DefaultReadiness: Readiness{
				MinReferences: 2,
				MinEntities:   2,
			},
			InsightsConfig: InsightsConfig{
				RequiredSignals: []string{"swotFactors", "canvasBlocks"},
			},
			Dependencies: []Dependency{
				{From: "swot", To: "bmc"},
			},
		},
		{
			ID:             "problem-diagnosis",
			Type:           TypeProblemDiagnosis,
			Name:           "Problem Diagnosis",
			Description:    "Root-cause diagnosis grounded in the macro environment",
			Frameworks:     []string{"five_whys", "pestle"},
			SummaryBuilder: "diagnostic",
			DefaultReadiness: Readiness{
				MinReferences: 1,
				MinEntities:   2,
			},
			InsightsConfig: InsightsConfig{
				RequiredSignals: []string{"rootCauses", "trendFactors"},
			},
			Dependencies: []Dependency{
				{From: "five_whys", To: "pestle"},
			},
		},
	}
}

// BuiltinRegistry builds a registry holding the built-in journeys.
func BuiltinRegistry() (*Registry, error) {
	return NewRegistry(Builtins()...)
}
