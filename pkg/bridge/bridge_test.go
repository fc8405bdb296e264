package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/strategos-io/strategos/pkg/schema"
)

func testBridge(from, to string) *Contract {
	return &Contract{
		From:        from,
		To:          to,
		Description: "test bridge",
		Rules: []InterpretationRule{
			{ID: "r1", Description: "d1", Example: "e1"},
			{ID: "r2", Description: "d2", Example: "e2"},
		},
		Transform: func(_ context.Context, _, toInput json.RawMessage) (json.RawMessage, error) {
			return toInput, nil
		},
		ValidateSource: func(_ json.RawMessage) error { return nil },
	}
}

func TestNewRegistryRejectsDuplicatePair(t *testing.T) {
	_, err := NewRegistry(testBridge("a", "b"), testBridge("a", "b"))
	if err == nil {
		t.Fatal("expected error for duplicate bridge pair")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error %q does not mention duplicate", err)
	}
}

func TestRegistryPairDirectionMatters(t *testing.T) {
	r, err := NewRegistry(testBridge("a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Has("a", "b") {
		t.Error("expected bridge a -> b")
	}
	if r.Has("b", "a") {
		t.Error("reverse pair must not resolve")
	}
	if _, err := r.Get("b", "a"); err == nil {
		t.Error("expected error for reverse lookup")
	}
}

func TestContractValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Contract)
	}{
		{"missing from", func(c *Contract) { c.From = "" }},
		{"self bridge", func(c *Contract) { c.To = c.From }},
		{"too few rules", func(c *Contract) { c.Rules = c.Rules[:1] }},
		{"incomplete rule", func(c *Contract) { c.Rules[1].Example = "" }},
		{"no transform", func(c *Contract) { c.Transform = nil }},
		{"no source validator", func(c *Contract) { c.ValidateSource = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testBridge("a", "b")
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestBuiltinRegistryChainsFrameworks(t *testing.T) {
	r, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pairs := [][2]string{
		{"five_whys", "pestle"},
		{"pestle", "five_forces"},
		{"five_forces", "swot"},
		{"swot", "bmc"},
	}
	for _, p := range pairs {
		if !r.Has(p[0], p[1]) {
			t.Errorf("expected built-in bridge %s -> %s", p[0], p[1])
		}
	}
	if r.Len() != len(pairs) {
		t.Errorf("got %d bridges, want %d", r.Len(), len(pairs))
	}
}

func TestFiveWhysToPestleThemes(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("five_whys", "pestle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.FiveWhysOutput{
		ProblemRestatement: "activation failure",
		RootCauses: []schema.RootCause{
			{ID: "rc-1", Statement: "setup needs engineering time", WhyChain: []string{"w"}, Depth: 1, Confidence: 0.8},
			{ID: "rc-2", Statement: "speculative guess", WhyChain: []string{"w"}, Depth: 1, Confidence: 0.2},
		},
		Summary: "s",
	})
	in, _ := json.Marshal(schema.PestleInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	enriched, err := b.Transform(context.Background(), out, in)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	var result schema.PestleInput
	if err := json.Unmarshal(enriched, &result); err != nil {
		t.Fatalf("decode enriched input: %v", err)
	}
	if len(result.RootCauseThemes) != 1 {
		t.Fatalf("got %d themes, want 1 (low-confidence cause excluded)", len(result.RootCauseThemes))
	}
	if result.RootCauseThemes[0] != "setup needs engineering time" {
		t.Errorf("unexpected theme %q", result.RootCauseThemes[0])
	}
	if result.BusinessContext.Name != "n" {
		t.Error("enrichment must preserve the original input fields")
	}
}

func TestPestleToFiveForcesSignals(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("pestle", "five_forces")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.PestleOutput{
		Factors: []schema.TrendFactor{
			{ID: "pf-1", Category: schema.TrendLegal, Title: "residency rules", Description: "d", Severity: schema.SeverityHigh, Direction: "worsening", TimeHorizonMonths: 12},
			{ID: "pf-2", Category: schema.TrendSocial, Title: "minor shift", Description: "d", Severity: schema.SeverityLow, Direction: "stable", TimeHorizonMonths: 36},
		},
		Summary: "s",
	})
	in, _ := json.Marshal(schema.FiveForcesInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	enriched, err := b.Transform(context.Background(), out, in)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	var result schema.FiveForcesInput
	if err := json.Unmarshal(enriched, &result); err != nil {
		t.Fatalf("decode enriched input: %v", err)
	}
	if len(result.EntrySignals) != 1 {
		t.Fatalf("got %d signals, want 1 (low severity excluded)", len(result.EntrySignals))
	}
	sig := result.EntrySignals[0]
	if sig.SourceFactorID != "pf-1" {
		t.Errorf("signal source = %s, want pf-1", sig.SourceFactorID)
	}
	if sig.Force != "threat_of_new_entry" {
		t.Errorf("legal factor mapped to %s, want threat_of_new_entry", sig.Force)
	}
	if sig.Severity != schema.SeverityHigh {
		t.Errorf("severity %s did not carry through", sig.Severity)
	}
}

func TestFiveForcesToSwotPressures(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("five_forces", "swot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.FiveForcesOutput{
		SupplierPower:         schema.Force{Intensity: 3, Drivers: []string{"commodity infra"}},
		BuyerPower:            schema.Force{Intensity: 7, Drivers: []string{"low switching costs"}},
		CompetitiveRivalry:    schema.Force{Intensity: 8, Drivers: []string{"crowded category"}},
		ThreatOfSubstitution:  schema.Force{Intensity: 5, Drivers: []string{"spreadsheets"}},
		ThreatOfNewEntry:      schema.Force{Intensity: 4, Drivers: []string{"low capital"}},
		OverallAttractiveness: 4,
		Summary:               "s",
	})
	in, _ := json.Marshal(schema.SwotInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	enriched, err := b.Transform(context.Background(), out, in)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	var result schema.SwotInput
	if err := json.Unmarshal(enriched, &result); err != nil {
		t.Fatalf("decode enriched input: %v", err)
	}
	if len(result.CompetitivePressures) != 2 {
		t.Fatalf("got %d pressures, want 2 (intensity >= 6)", len(result.CompetitivePressures))
	}

	bySource := make(map[string]schema.CompetitivePressure)
	for _, p := range result.CompetitivePressures {
		bySource[p.SourceForce] = p
	}
	if p := bySource["buyer_power"]; p.Severity != schema.SeverityMedium {
		t.Errorf("intensity 7 mapped to %s, want medium", p.Severity)
	}
	if p := bySource["competitive_rivalry"]; p.Severity != schema.SeverityHigh {
		t.Errorf("intensity 8 mapped to %s, want high", p.Severity)
	}
}

func TestSwotToBmcConstraints(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("swot", "bmc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.SwotOutput{
		Strengths:  []schema.InternalFactor{{ID: "s-1", Statement: "integration coverage", Impact: schema.SeverityHigh}},
		Weaknesses: []schema.InternalFactor{{ID: "w-1", Statement: "manual onboarding", Impact: schema.SeverityLow}},
		Opportunities: []schema.ExternalFactor{
			{ID: "o-1", Statement: "warehouse-native demand", Likelihood: schema.SeverityMedium, Impact: schema.SeverityHigh},
		},
		Threats:   []schema.ExternalFactor{{ID: "t-1", Statement: "native platform alternative", Likelihood: schema.SeverityHigh, Impact: schema.SeverityHigh}},
		Synthesis: "s",
	})
	in, _ := json.Marshal(schema.BmcInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	enriched, err := b.Transform(context.Background(), out, in)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	var result schema.BmcInput
	if err := json.Unmarshal(enriched, &result); err != nil {
		t.Fatalf("decode enriched input: %v", err)
	}

	// s-1, o-1, t-1 are high impact; w-1 is low and excluded.
	if len(result.DesignConstraints) != 3 {
		t.Fatalf("got %d constraints, want 3", len(result.DesignConstraints))
	}

	blocks := make(map[string]string)
	for _, c := range result.DesignConstraints {
		blocks[c.SourceFactorID] = c.Block
	}
	want := map[string]string{
		"s-1": "keyResources",
		"o-1": "valuePropositions",
		"t-1": "revenueStreams",
	}
	for id, block := range want {
		if blocks[id] != block {
			t.Errorf("factor %s constrained block %s, want %s", id, blocks[id], block)
		}
	}
}

func TestApplyRejectsInvalidSource(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("five_whys", "pestle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.FiveWhysOutput{ProblemRestatement: "p", Summary: "s"})
	in, _ := json.Marshal(schema.PestleInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	if _, err := b.Apply(context.Background(), out, in); err == nil {
		t.Fatal("expected apply to reject output with no root causes")
	} else if !strings.Contains(err.Error(), "source invalid") {
		t.Errorf("error %q does not mention source invalid", err)
	}
}

func TestApplyEnforcesPostCondition(t *testing.T) {
	c := testBridge("a", "b")
	c.ValidateTransformation = func(_, _ json.RawMessage) error {
		return errors.New("enrichment dropped")
	}

	_, err := c.Apply(context.Background(), json.RawMessage(`{}`), json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected apply to fail post-condition")
	}
	if !strings.Contains(err.Error(), "post-condition") {
		t.Errorf("error %q does not mention post-condition", err)
	}
}

func TestApplyRunsBuiltinChain(t *testing.T) {
	r, _ := BuiltinRegistry()
	b, err := r.Get("pestle", "five_forces")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, _ := json.Marshal(schema.PestleOutput{
		Factors: []schema.TrendFactor{
			{ID: "pf-1", Category: schema.TrendPolitical, Title: "tariff risk", Description: "d", Severity: schema.SeverityHigh, Direction: "worsening", TimeHorizonMonths: 6},
		},
		Summary: "s",
	})
	in, _ := json.Marshal(schema.FiveForcesInput{
		BusinessContext: schema.BusinessContext{Name: "n", Type: "t", Scale: "s", Description: "d"},
	})

	enriched, err := b.Apply(context.Background(), out, in)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	var result schema.FiveForcesInput
	if err := json.Unmarshal(enriched, &result); err != nil {
		t.Fatalf("decode enriched input: %v", err)
	}
	if len(result.EntrySignals) != 1 {
		t.Fatalf("got %d signals, want 1", len(result.EntrySignals))
	}
}
