package journey

import (
	"strings"
	"testing"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/module"
)

// builderNames mirrors the summary builders the orchestrator registers.
var builderNames = []string{"comprehensive", "market_entry", "competitive", "business_model", "diagnostic"}

func testValidator(t *testing.T) *Validator {
	t.Helper()
	modules, err := module.BuiltinRegistry()
	if err != nil {
		t.Fatalf("module registry: %v", err)
	}
	bridges, err := bridge.BuiltinRegistry()
	if err != nil {
		t.Fatalf("bridge registry: %v", err)
	}
	return NewValidator(modules, bridges, builderNames)
}

func errorMessages(issues []Issue) []string {
	var msgs []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.Message)
		}
	}
	return msgs
}

func containsMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestBuiltinJourneysValidateCleanly(t *testing.T) {
	v := testValidator(t)
	reg, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("journey registry: %v", err)
	}

	issues := v.ValidateAll(reg)
	if HasErrors(issues) {
		t.Errorf("built-in journeys have errors: %v", errorMessages(issues))
	}
}

func TestValidatorReportsOrderingViolation(t *testing.T) {
	v := testValidator(t)

	d := &Definition{
		ID:               "backwards",
		Type:             TypeProblemDiagnosis,
		Name:             "Backwards",
		Frameworks:       []string{"five_whys", "bmc"},
		SummaryBuilder:   "diagnostic",
		DefaultReadiness: Readiness{MinReferences: 1},
		Dependencies:     []Dependency{{From: "bmc", To: "five_whys"}},
	}

	issues := v.ValidateDefinition(d)
	msgs := errorMessages(issues)
	if !containsMessage(msgs, "ordering violation") {
		t.Errorf("expected an ordering-violation error, got %v", msgs)
	}

	// It must be an error, not a warning.
	for _, i := range issues {
		if strings.Contains(i.Message, "ordering violation") && i.Severity != SeverityError {
			t.Errorf("ordering violation reported as %s", i.Severity)
		}
	}
}

func TestValidatorReportsUnknownFramework(t *testing.T) {
	v := testValidator(t)

	d := &Definition{
		ID:               "unknown-fw",
		Type:             TypeProblemDiagnosis,
		Name:             "Unknown",
		Frameworks:       []string{"five_whys", "crystal_ball"},
		SummaryBuilder:   "diagnostic",
		DefaultReadiness: Readiness{MinReferences: 1},
	}

	msgs := errorMessages(v.ValidateDefinition(d))
	if !containsMessage(msgs, "crystal_ball is not registered") {
		t.Errorf("expected unknown framework error, got %v", msgs)
	}
}

func TestValidatorReportsMissingBridge(t *testing.T) {
	v := testValidator(t)

	// five_whys -> bmc has no registered bridge.
	d := &Definition{
		ID:               "no-bridge",
		Type:             TypeProblemDiagnosis,
		Name:             "No Bridge",
		Frameworks:       []string{"five_whys", "bmc"},
		SummaryBuilder:   "diagnostic",
		DefaultReadiness: Readiness{MinReferences: 1},
	}

	msgs := errorMessages(v.ValidateDefinition(d))
	if !containsMessage(msgs, "no bridge registered") {
		t.Errorf("expected missing bridge error, got %v", msgs)
	}
}

func TestValidatorReportsUnknownBuilder(t *testing.T) {
	v := testValidator(t)

	d := Builtins()[0]
	copied := *d
	copied.ID = "bad-builder"
	copied.SummaryBuilder = "nonexistent"

	msgs := errorMessages(v.ValidateDefinition(&copied))
	if !containsMessage(msgs, "summary builder nonexistent does not exist") {
		t.Errorf("expected unknown builder error, got %v", msgs)
	}
}

func TestValidatorWarnsOnZeroReadiness(t *testing.T) {
	v := testValidator(t)

	d := &Definition{
		ID:             "no-readiness",
		Type:           TypeProblemDiagnosis,
		Name:           "No Readiness",
		Frameworks:     []string{"five_whys", "pestle"},
		SummaryBuilder: "diagnostic",
	}

	issues := v.ValidateDefinition(d)
	if HasErrors(issues) {
		t.Fatalf("expected no errors, got %v", errorMessages(issues))
	}

	found := false
	for _, i := range issues {
		if i.Severity == SeverityWarning && strings.Contains(i.Message, "readiness") {
			found = true
		}
	}
	if !found {
		t.Error("expected a readiness warning")
	}
}

func TestValidatorReportsUnsatisfiableRequiredDependency(t *testing.T) {
	bridges, err := bridge.BuiltinRegistry()
	if err != nil {
		t.Fatalf("bridge registry: %v", err)
	}

	// Rebuild the built-in contracts with swot requiring pestle.
	contracts := module.Builtins()
	for _, c := range contracts {
		if c.ID == "swot" {
			c.RequiredDependencies = []string{"pestle"}
		}
	}
	modules, err := module.NewRegistry(contracts...)
	if err != nil {
		t.Fatalf("module registry with requirement: %v", err)
	}

	v := NewValidator(modules, bridges, builderNames)

	// swot runs without pestle ever appearing before it.
	d := &Definition{
		ID:               "missing-required",
		Type:             TypeBusinessModelInnovation,
		Name:             "Missing Required",
		Frameworks:       []string{"swot", "bmc"},
		SummaryBuilder:   "business_model",
		DefaultReadiness: Readiness{MinReferences: 1},
	}

	msgs := errorMessages(v.ValidateDefinition(d))
	if !containsMessage(msgs, "requires pestle") {
		t.Errorf("expected unsatisfiable requirement error, got %v", msgs)
	}
}

func TestRegistryRejectsDuplicateJourney(t *testing.T) {
	d := Builtins()[0]
	if _, err := NewRegistry(d, d); err == nil {
		t.Error("expected error for duplicate journey id")
	}
}

func TestRegistryByType(t *testing.T) {
	reg, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.ByType(TypeMarketEntry)
	if len(got) != 1 || got[0].ID != "market-entry" {
		t.Errorf("ByType(market_entry) = %v", got)
	}
}
