// Package module defines the framework contract: schemas, execution,
// dependency declarations, and quality scoring wrapped into one
// addressable unit, plus the immutable registry that holds them.
package module

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

// Category classifies a framework by its role in a journey.
type Category string

// Framework categories.
const (
	CategoryPositioning Category = "positioning"
	CategoryAnalysis    Category = "analysis"
	CategorySynthesis   Category = "synthesis"
	CategoryDecision    Category = "decision"
	CategoryExecution   Category = "execution"
)

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryPositioning, CategoryAnalysis, CategorySynthesis, CategoryDecision, CategoryExecution:
		return true
	}
	return false
}

// ExecuteFunc runs a framework analysis. Input is already validated
// against the contract's input schema; the returned payload is
// validated against the output schema by the caller.
type ExecuteFunc func(ctx context.Context, input json.RawMessage, caps providers.Capabilities) (json.RawMessage, error)

// Contract is one framework's complete definition.
type Contract struct {
	// ID is the stable framework identifier used in journey
	// definitions and bridge keys.
	ID string

	// Name is the human-readable framework name.
	Name string

	// Version is the contract version.
	Version string

	// Description explains what the framework produces.
	Description string

	// Category is the framework's role classification.
	Category Category

	// InputSchema and OutputSchema name the registered schemas the
	// framework's payloads must conform to.
	InputSchema  string
	OutputSchema string

	// RequiredDependencies are framework ids that must complete before
	// this framework may run. Orchestration refuses to execute the
	// framework while any is missing.
	RequiredDependencies []string

	// OptionalDependencies are framework ids whose outputs enrich this
	// framework's input when present.
	OptionalDependencies []string

	// Criteria is the quality criteria set applied to outputs.
	Criteria []quality.Criterion

	// MinimumQualityScore is the gate an output must clear, 0-10.
	MinimumQualityScore float64

	// Execute runs the analysis.
	Execute ExecuteFunc
}

// Validate checks the contract's internal consistency.
func (c *Contract) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contract has no id")
	}
	if c.Name == "" {
		return fmt.Errorf("contract %s has no name", c.ID)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("contract %s has invalid category %q", c.ID, c.Category)
	}
	if c.InputSchema == "" || c.OutputSchema == "" {
		return fmt.Errorf("contract %s must declare input and output schemas", c.ID)
	}
	if c.MinimumQualityScore < 0 || c.MinimumQualityScore > 10 {
		return fmt.Errorf("contract %s minimum quality score %v out of range 0-10", c.ID, c.MinimumQualityScore)
	}
	if c.Execute == nil {
		return fmt.Errorf("contract %s has no execute function", c.ID)
	}
	if err := quality.ValidateWeights(c.Criteria); err != nil {
		return fmt.Errorf("contract %s criteria: %w", c.ID, err)
	}
	for _, dep := range c.RequiredDependencies {
		if dep == c.ID {
			return fmt.Errorf("contract %s depends on itself", c.ID)
		}
	}
	return nil
}

// ValidateInput validates a payload against the contract's input schema.
func (c *Contract) ValidateInput(reg *schema.Registry, payload json.RawMessage) schema.ValidationResult {
	return reg.ValidateJSON(c.InputSchema, payload)
}

// ValidateOutput validates a payload against the contract's output schema.
func (c *Contract) ValidateOutput(reg *schema.Registry, payload json.RawMessage) schema.ValidationResult {
	return reg.ValidateJSON(c.OutputSchema, payload)
}

// ScoreQuality assesses an output with the given scorer against the
// contract's criteria.
func (c *Contract) ScoreQuality(ctx context.Context, scorer quality.Scorer, output json.RawMessage) (*quality.Assessment, error) {
	return scorer.Score(ctx, c.ID, output, c.Criteria)
}
