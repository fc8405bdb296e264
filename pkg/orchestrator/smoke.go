package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/module"
	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/schema"
	"github.com/strategos-io/strategos/pkg/telemetry"
)

// SmokeResult reports one journey's end-to-end outcome under the
// deterministic mock providers.
type SmokeResult struct {
	JourneyID  string        `json:"journeyId"`
	Frameworks int           `json:"frameworks"`
	Passed     bool          `json:"passed"`
	Error      string        `json:"error,omitempty"`
	Headline   string        `json:"headline,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// SmokeOptions configures a smoke run. Zero values use the built-in
// registries, mock providers, and an in-memory store.
type SmokeOptions struct {
	Journeys *journey.Registry
	Store    Store
	Logger   *telemetry.Logger
}

// RunSmoke executes every registered journey end to end against the
// mock model and research clients. It exercises the full gate
// sequence of each framework, so a green smoke run means the
// registries, bridges, schemas, and summary builders are mutually
// consistent.
func RunSmoke(ctx context.Context, opts SmokeOptions) ([]SmokeResult, error) {
	journeys := opts.Journeys
	if journeys == nil {
		var err error
		journeys, err = journey.BuiltinRegistry()
		if err != nil {
			return nil, err
		}
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.Nop()
	}

	modules, err := module.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	bridges, err := bridge.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	builders, err := NewBuilderRegistry(BuiltinBuilders())
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(RunnerOptions{
		Modules:  modules,
		Bridges:  bridges,
		Journeys: journeys,
		Schemas:  schema.NewRegistry(),
		Builders: builders,
		Capabilities: providers.Capabilities{
			Model:    providers.NewMockLLM(),
			Research: providers.NewMockResearch(),
		},
		Store:  store,
		Logger: logger,
		Config: RunnerConfig{
			MaxRetries:    1,
			BaseBackoff:   10 * time.Millisecond,
			MaxBackoff:    100 * time.Millisecond,
			ResearchLimit: 8,
		},
	})
	if err != nil {
		return nil, err
	}

	business := schema.BusinessContext{
		Name:        "Acme Analytics",
		Type:        "startup",
		Scale:       "seed",
		Description: "Self-serve product analytics for mid-market teams",
		Industry:    "saas",
		Keywords:    []string{"analytics", "activation"},
	}
	problem := "Trial users drop off before reaching the activation milestone"

	results := make([]SmokeResult, 0, journeys.Len())
	for _, id := range journeys.IDs() {
		def, err := journeys.Get(id)
		if err != nil {
			return nil, err
		}
		results = append(results, runOne(ctx, runner, def, business, problem))
	}
	return results, nil
}

func runOne(ctx context.Context, runner *Runner, def *journey.Definition, business schema.BusinessContext, problem string) SmokeResult {
	res := SmokeResult{JourneyID: def.ID, Frameworks: len(def.Frameworks)}
	started := time.Now()

	sc, err := runner.StartJourney(ctx, def.ID, business, problem)
	if err != nil {
		res.Error = fmt.Sprintf("start: %v", err)
		res.Duration = time.Since(started)
		return res
	}

	summary, err := runner.Run(ctx, sc)
	res.Duration = time.Since(started)
	if err != nil {
		res.Error = fmt.Sprintf("run: %v", err)
		return res
	}

	if err := checkSummary(summary, def, sc); err != nil {
		res.Error = fmt.Sprintf("summary: %v", err)
		return res
	}

	res.Passed = true
	res.Headline = summary.Headline
	return res
}

// checkSummary asserts the summary a builder returned is consistent
// with the journey and the final run state.
func checkSummary(summary *JourneySummary, def *journey.Definition, sc *StrategicContext) error {
	if summary.JourneyType != def.Type {
		return fmt.Errorf("journey type %s, want %s", summary.JourneyType, def.Type)
	}
	if summary.VersionNumber != sc.Version {
		return fmt.Errorf("version %d, want context version %d", summary.VersionNumber, sc.Version)
	}
	if len(summary.Frameworks) == 0 {
		return fmt.Errorf("no framework digests")
	}
	for _, fw := range def.Frameworks {
		if _, ok := summary.Frameworks[fw]; !ok {
			return fmt.Errorf("framework %s missing from digests", fw)
		}
	}
	if summary.CompletedAt.IsZero() {
		return fmt.Errorf("completedAt not set")
	}
	return nil
}
