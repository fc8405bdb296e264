// Package journey declares ordered framework sequences, their
// inter-framework dependencies, and the static validation that keeps
// registries, bridges, and journeys consistent.
package journey

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Type classifies a journey by the strategic question it answers.
type Type string

// Journey types.
const (
	TypeStartupValidation       Type = "startup_validation"
	TypeMarketEntry             Type = "market_entry"
	TypeCompetitiveStrategy     Type = "competitive_strategy"
	TypeBusinessModelInnovation Type = "business_model_innovation"
	TypeProblemDiagnosis        Type = "problem_diagnosis"
)

// Valid reports whether the type is a known value.
func (t Type) Valid() bool {
	switch t {
	case TypeStartupValidation, TypeMarketEntry, TypeCompetitiveStrategy,
		TypeBusinessModelInnovation, TypeProblemDiagnosis:
		return true
	}
	return false
}

// Dependency is a data-flow constraint between two frameworks beyond
// simple adjacency: From must complete before To runs.
type Dependency struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Readiness is the minimum evidence volume a journey requires before
// proceeding.
type Readiness struct {
	// MinReferences is the minimum citation count.
	MinReferences int `json:"minReferences" validate:"gte=0"`

	// MinEntities is the minimum count of named entities in research.
	MinEntities int `json:"minEntities" validate:"gte=0"`
}

// InsightsConfig names the upstream signals a journey expects to
// accumulate.
type InsightsConfig struct {
	// RequiredSignals are insight keys the journey run should populate.
	RequiredSignals []string `json:"requiredSignals,omitempty"`
}

// Definition is one journey: an ordered framework sequence with
// dependencies and the summarizer applied on completion.
type Definition struct {
	// ID is the stable journey identifier.
	ID string `json:"id" validate:"required"`

	// Type classifies the journey.
	Type Type `json:"type" validate:"required"`

	// Name is the human-readable journey name.
	Name string `json:"name" validate:"required"`

	// Description explains what the journey produces.
	Description string `json:"description"`

	// Frameworks is the ordered framework sequence. Order encodes the
	// default execution order and is checked against Dependencies.
	Frameworks []string `json:"frameworks" validate:"required,min=1,unique,dive,required"`

	// SummaryBuilder names the builder invoked on completion.
	SummaryBuilder string `json:"summaryBuilder" validate:"required"`

	// DefaultReadiness are the evidence thresholds for the journey.
	DefaultReadiness Readiness `json:"defaultReadiness"`

	// InsightsConfig names the signals the journey accumulates.
	InsightsConfig InsightsConfig `json:"insightsConfig"`

	// Dependencies are data-flow constraints between frameworks.
	Dependencies []Dependency `json:"dependencies,omitempty" validate:"dive"`
}

var validate = validator.New()

// Validate checks the definition's structural well-formedness. Cross
// checks against registries belong to the Validator.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("journey %s: %w", d.ID, err)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("journey %s has unknown type %q", d.ID, d.Type)
	}
	return nil
}

// FrameworkIndex returns the position of a framework in the declared
// order, or -1 when absent.
func (d *Definition) FrameworkIndex(id string) int {
	for i, fw := range d.Frameworks {
		if fw == id {
			return i
		}
	}
	return -1
}
