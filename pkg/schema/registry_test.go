package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func validFiveWhysInput() FiveWhysInput {
	return FiveWhysInput{
		BusinessContext: BusinessContext{
			Name:        "Acme Analytics",
			Type:        "saas",
			Scale:       "startup",
			Description: "Self-serve product analytics for mid-market teams",
			Industry:    "software",
		},
		ProblemStatement: "Trial-to-paid conversion dropped from 9% to 4% over two quarters",
	}
}

func TestNewRegistryCompilesBuiltins(t *testing.T) {
	r := NewRegistry()

	want := []string{
		"five_whys.input", "five_whys.output",
		"pestle.input", "pestle.output",
		"five_forces.input", "five_forces.output",
		"swot.input", "swot.output",
		"bmc.input", "bmc.output",
	}

	for _, name := range want {
		if _, ok := r.Get(name); !ok {
			t.Errorf("expected built-in schema %s to be registered", name)
		}
	}

	if got := len(r.Names()); got != len(want) {
		t.Errorf("expected %d schemas, got %d", len(want), got)
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	r := NewRegistry()

	result := r.Validate("five_whys.input", validFiveWhysInput())
	if !result.Valid {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestValidateRejectsMissingField(t *testing.T) {
	r := NewRegistry()

	in := validFiveWhysInput()
	in.ProblemStatement = ""

	result := r.Validate("five_whys.input", in)
	if result.Valid {
		t.Fatal("expected validation to fail for empty problem statement")
	}
	if len(result.Errors) == 0 {
		t.Error("expected at least one error message")
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	r := NewRegistry()

	result := r.Validate("nonexistent.input", validFiveWhysInput())
	if result.Valid {
		t.Fatal("expected validation to fail for unknown schema")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "not found") {
		t.Errorf("expected not-found error, got %v", result.Errors)
	}
}

func TestValidateJSONMalformedPayload(t *testing.T) {
	r := NewRegistry()

	result := r.ValidateJSON("five_whys.input", json.RawMessage(`{"businessContext":`))
	if result.Valid {
		t.Fatal("expected validation to fail for malformed JSON")
	}
	if !strings.Contains(result.Errors[0], "invalid JSON") {
		t.Errorf("expected invalid JSON error, got %v", result.Errors)
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	r := NewRegistry()

	// Both intensity and drivers violate the schema.
	raw := json.RawMessage(`{
		"supplierPower":        {"intensity": 15, "drivers": []},
		"buyerPower":           {"intensity": 5, "drivers": ["few vendors"]},
		"competitiveRivalry":   {"intensity": 5, "drivers": ["fragmented market"]},
		"threatOfSubstitution": {"intensity": 5, "drivers": ["spreadsheets"]},
		"threatOfNewEntry":     {"intensity": 5, "drivers": ["low capital needs"]},
		"overallAttractiveness": 6,
		"summary": "moderately attractive"
	}`)

	result := r.ValidateJSON("five_forces.output", raw)
	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	if len(result.Errors) < 2 {
		t.Errorf("expected multiple errors collected, got %v", result.Errors)
	}
}

func TestValidateOutputBounds(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name      string
		schema    string
		payload   string
		wantValid bool
	}{
		{
			name:   "root cause depth in range",
			schema: "five_whys.output",
			payload: `{
				"problemRestatement": "conversion decline",
				"rootCauses": [{"id": "rc-1", "statement": "onboarding friction", "whyChain": ["why1", "why2", "why3"], "depth": 3, "confidence": 0.8}],
				"summary": "onboarding is the bottleneck"
			}`,
			wantValid: true,
		},
		{
			name:   "root cause depth out of range",
			schema: "five_whys.output",
			payload: `{
				"problemRestatement": "conversion decline",
				"rootCauses": [{"id": "rc-1", "statement": "onboarding friction", "whyChain": ["why1"], "depth": 9, "confidence": 0.8}],
				"summary": "onboarding is the bottleneck"
			}`,
			wantValid: false,
		},
		{
			name:   "confidence above one",
			schema: "five_whys.output",
			payload: `{
				"problemRestatement": "conversion decline",
				"rootCauses": [{"id": "rc-1", "statement": "onboarding friction", "whyChain": ["why1"], "depth": 1, "confidence": 1.2}],
				"summary": "onboarding is the bottleneck"
			}`,
			wantValid: false,
		},
		{
			name:   "unknown trend category",
			schema: "pestle.output",
			payload: `{
				"factors": [{"id": "f-1", "category": "astrological", "title": "t", "description": "d", "severity": "high", "direction": "worsening", "timeHorizonMonths": 12}],
				"summary": "s"
			}`,
			wantValid: false,
		},
		{
			name:   "empty factor list",
			schema: "pestle.output",
			payload: `{"factors": [], "summary": "s"}`,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.ValidateJSON(tt.schema, json.RawMessage(tt.payload))
			if result.Valid != tt.wantValid {
				t.Errorf("got valid=%v want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
		})
	}
}

func TestValidateJSONKeepsIntegersIntegral(t *testing.T) {
	r := NewRegistry()

	// Raw JSON integers must unify with int constraints; a decode
	// through interface{} would widen them to floats and reject every
	// int-bearing payload.
	tests := []struct {
		name    string
		schema  string
		payload string
	}{
		{
			name:   "five_whys depth",
			schema: "five_whys.output",
			payload: `{
				"problemRestatement": "conversion decline",
				"rootCauses": [{"id": "rc-1", "statement": "onboarding friction", "whyChain": ["why1", "why2", "why3"], "depth": 3, "confidence": 0.8}],
				"summary": "onboarding is the bottleneck"
			}`,
		},
		{
			name:   "pestle time horizon",
			schema: "pestle.output",
			payload: `{
				"factors": [{"id": "f-1", "category": "legal", "title": "residency rules", "description": "d", "severity": "high", "direction": "worsening", "timeHorizonMonths": 12}],
				"summary": "s"
			}`,
		},
		{
			name:   "five_forces intensities",
			schema: "five_forces.output",
			payload: `{
				"supplierPower":        {"intensity": 3, "drivers": ["commodity infra"]},
				"buyerPower":           {"intensity": 7, "drivers": ["low switching costs"]},
				"competitiveRivalry":   {"intensity": 8, "drivers": ["crowded category"]},
				"threatOfSubstitution": {"intensity": 6, "drivers": ["spreadsheets"]},
				"threatOfNewEntry":     {"intensity": 5, "drivers": ["low capital"]},
				"overallAttractiveness": 4,
				"summary": "s"
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.ValidateJSON(tt.schema, json.RawMessage(tt.payload))
			if !result.Valid {
				t.Errorf("expected integer payload to validate, got %v", result.Errors)
			}
		})
	}
}

func TestValidateRoundTripsWireFormat(t *testing.T) {
	r := NewRegistry()

	in := validFiveWhysInput()
	in.Research = []Citation{{
		ID:          "cit-1",
		Title:       "State of SaaS onboarding",
		Source:      "industry-report",
		RetrievedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}

	result := r.Validate("five_whys.input", in)
	if !result.Valid {
		t.Errorf("expected struct with citation to validate, got %v", result.Errors)
	}
}

func TestRegisterRejectsBadSource(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("broken", "a: {{{"); err == nil {
		t.Error("expected compile error for malformed CUE")
	}
}
