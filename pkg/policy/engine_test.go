package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/schema"
)

func validRunRequest() *RunRequest {
	return &RunRequest{
		JourneyID: "problem-diagnosis",
		BusinessContext: schema.BusinessContext{
			Name:        "Acme Analytics",
			Type:        "startup",
			Scale:       "seed",
			Description: "Self-serve product analytics for mid-market teams",
		},
		ProblemStatement: "trial users drop off before activation",
	}
}

func TestBuiltinPoliciesCompile(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	policies := engine.ListPolicies()
	if len(policies) != 3 {
		t.Errorf("got %d policies, want 3 built-ins", len(policies))
	}
	for _, p := range policies {
		if !p.Enabled {
			t.Errorf("policy %s should be enabled by default", p.Name)
		}
	}
}

func TestBuiltinJourneysPassPolicies(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	for _, def := range journey.Builtins() {
		result, err := engine.EvaluateJourney(context.Background(), def)
		if err != nil {
			t.Fatalf("EvaluateJourney(%s): %v", def.ID, err)
		}
		if !result.Allowed {
			t.Errorf("journey %s blocked: %+v", def.ID, result.Violations)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("journey %s warnings: %+v", def.ID, result.Warnings)
		}
		if len(result.EvaluatedPolicies) != 3 {
			t.Errorf("journey %s evaluated %d policies, want 3", def.ID, len(result.EvaluatedPolicies))
		}
	}
}

func TestJourneyShapeViolations(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	frameworks := make([]string, 9)
	for i := range frameworks {
		frameworks[i] = fmt.Sprintf("framework_%d", i)
	}
	def := &journey.Definition{
		ID:             "oversized",
		Type:           journey.TypeProblemDiagnosis,
		Name:           "Oversized",
		Frameworks:     frameworks,
		SummaryBuilder: "diagnostic",
		DefaultReadiness: journey.Readiness{
			MinReferences: 1,
			MinEntities:   1,
		},
	}

	result, err := engine.EvaluateJourney(context.Background(), def)
	if err != nil {
		t.Fatalf("EvaluateJourney: %v", err)
	}
	if result.Allowed {
		t.Error("expected oversized journey to be blocked")
	}

	found := false
	for _, v := range result.Violations {
		if v.Policy == "journey-shape" && v.Subject == "oversized" {
			found = true
		}
	}
	if !found {
		t.Errorf("violations %+v should include journey-shape for oversized", result.Violations)
	}
}

func TestZeroReadinessWarnsWithoutBlocking(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	def := &journey.Definition{
		ID:             "no-readiness",
		Type:           journey.TypeProblemDiagnosis,
		Name:           "No Readiness",
		Frameworks:     []string{"five_whys"},
		SummaryBuilder: "diagnostic",
	}

	result, err := engine.EvaluateJourney(context.Background(), def)
	if err != nil {
		t.Fatalf("EvaluateJourney: %v", err)
	}
	if !result.Allowed {
		t.Errorf("warnings must not block: %+v", result.Violations)
	}

	found := false
	for _, w := range result.Warnings {
		if w.Policy == "readiness-thresholds" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %+v should include readiness-thresholds", result.Warnings)
	}
}

func TestRunRequestPolicies(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx := context.Background()

	valid, err := engine.EvaluateRun(ctx, validRunRequest())
	if err != nil {
		t.Fatalf("EvaluateRun: %v", err)
	}
	if !valid.Allowed || len(valid.Warnings) != 0 {
		t.Errorf("valid request blocked or warned: %+v %+v", valid.Violations, valid.Warnings)
	}

	unnamed := validRunRequest()
	unnamed.BusinessContext.Name = ""
	blocked, err := engine.EvaluateRun(ctx, unnamed)
	if err != nil {
		t.Fatalf("EvaluateRun: %v", err)
	}
	if blocked.Allowed {
		t.Error("expected request without a business name to be blocked")
	}

	terse := validRunRequest()
	terse.BusinessContext.Description = "too short"
	warned, err := engine.EvaluateRun(ctx, terse)
	if err != nil {
		t.Fatalf("EvaluateRun: %v", err)
	}
	if !warned.Allowed {
		t.Errorf("short description should warn, not block: %+v", warned.Violations)
	}
	if len(warned.Warnings) == 0 {
		t.Error("expected a warning for a terse description")
	}
}

func TestDisablePolicy(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx := context.Background()

	if err := engine.DisablePolicy("run-request"); err != nil {
		t.Fatalf("DisablePolicy: %v", err)
	}

	unnamed := validRunRequest()
	unnamed.BusinessContext.Name = ""
	result, err := engine.EvaluateRun(ctx, unnamed)
	if err != nil {
		t.Fatalf("EvaluateRun: %v", err)
	}
	if !result.Allowed {
		t.Error("disabled policy should not block")
	}

	if err := engine.EnablePolicy("run-request"); err != nil {
		t.Fatalf("EnablePolicy: %v", err)
	}
	result, err = engine.EvaluateRun(ctx, unnamed)
	if err != nil {
		t.Fatalf("EvaluateRun: %v", err)
	}
	if result.Allowed {
		t.Error("re-enabled policy should block again")
	}

	if err := engine.DisablePolicy("nonexistent"); err == nil {
		t.Error("expected error disabling unknown policy")
	}
}

func TestLoadCustomPolicy(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	dir := t.TempDir()
	custom := `# Flags journeys that skip the diagnostic stage.
package custom.skip_diagnosis

import rego.v1

deny contains violation if {
	input.journey
	input.journey.frameworks[0] != "five_whys"
	violation := {
		"message": sprintf("journey %s does not start with a diagnostic stage", [input.journey.id]),
		"severity": "warning",
		"subject": input.journey.id,
	}
}
`
	path := filepath.Join(dir, "skip-diagnosis.rego")
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := engine.LoadPolicies(context.Background(), []string{path}); err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}

	loaded, err := engine.GetPolicy("skip-diagnosis")
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if loaded.Description == "" {
		t.Error("expected description extracted from leading comment")
	}

	def := &journey.Definition{
		ID:             "swot-first",
		Type:           journey.TypeBusinessModelInnovation,
		Name:           "Swot First",
		Frameworks:     []string{"swot", "bmc"},
		SummaryBuilder: "business_model",
		DefaultReadiness: journey.Readiness{
			MinReferences: 1,
			MinEntities:   1,
		},
	}
	result, err := engine.EvaluateJourney(context.Background(), def)
	if err != nil {
		t.Fatalf("EvaluateJourney: %v", err)
	}
	if !result.Allowed {
		t.Errorf("warning-severity custom policy should not block: %+v", result.Violations)
	}

	found := false
	for _, w := range result.Warnings {
		if w.Policy == "skip-diagnosis" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %+v should include the custom policy", result.Warnings)
	}
}

func TestSetPoliciesReplacesCustomsKeepsBuiltins(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	builtins := len(engine.ListPolicies())

	first := Policy{
		Name:     "first-custom",
		Rego:     "package custom.first\n\nimport rego.v1\n\ndeny contains \"no\" if { false }",
		Severity: SeverityWarning,
		Enabled:  true,
	}
	second := Policy{
		Name:     "second-custom",
		Rego:     "package custom.second\n\nimport rego.v1\n\ndeny contains \"no\" if { false }",
		Severity: SeverityWarning,
		Enabled:  true,
	}

	if err := engine.SetPolicies([]Policy{first}); err != nil {
		t.Fatalf("SetPolicies: %v", err)
	}
	if _, err := engine.GetPolicy("first-custom"); err != nil {
		t.Errorf("first-custom not loaded: %v", err)
	}

	if err := engine.SetPolicies([]Policy{second}); err != nil {
		t.Fatalf("SetPolicies: %v", err)
	}
	if _, err := engine.GetPolicy("first-custom"); err == nil {
		t.Error("first-custom should be replaced on reload")
	}
	if _, err := engine.GetPolicy("second-custom"); err != nil {
		t.Errorf("second-custom not loaded: %v", err)
	}
	if got := len(engine.ListPolicies()); got != builtins+1 {
		t.Errorf("got %d policies after reload, want %d", got, builtins+1)
	}
}

func TestLoadPolicyRejectsBadRego(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.rego")
	if err := os.WriteFile(path, []byte("this is not rego"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := engine.LoadPolicies(context.Background(), []string{path}); err == nil {
		t.Error("expected compile error for invalid rego")
	}
}
