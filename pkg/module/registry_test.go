package module

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/strategos-io/strategos/pkg/providers"
	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

func testContract(id string) *Contract {
	return &Contract{
		ID:                  id,
		Name:                "Test " + id,
		Version:             "1.0.0",
		Category:            CategoryAnalysis,
		InputSchema:         "five_whys.input",
		OutputSchema:        "five_whys.output",
		Criteria:            quality.UniversalCriteria(),
		MinimumQualityScore: 7.0,
		Execute: func(_ context.Context, _ json.RawMessage, _ providers.Capabilities) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
	}
}

func TestNewRegistryRejectsDuplicateID(t *testing.T) {
	_, err := NewRegistry(testContract("alpha"), testContract("alpha"))
	if err == nil {
		t.Fatal("expected error for duplicate module id")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error %q does not mention duplicate", err)
	}
}

func TestNewRegistryRejectsInvalidContract(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Contract)
	}{
		{"empty id", func(c *Contract) { c.ID = "" }},
		{"bad category", func(c *Contract) { c.Category = "cosmic" }},
		{"no execute", func(c *Contract) { c.Execute = nil }},
		{"no output schema", func(c *Contract) { c.OutputSchema = "" }},
		{"score out of range", func(c *Contract) { c.MinimumQualityScore = 11 }},
		{"weights do not sum", func(c *Contract) { c.Criteria = []quality.Criterion{{ID: "x", Weight: 0.5}} }},
		{"self dependency", func(c *Contract) { c.RequiredDependencies = []string{"alpha"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContract("alpha")
			tt.mutate(c)
			if _, err := NewRegistry(c); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}
}

func TestNewRegistryRejectsUnknownDependency(t *testing.T) {
	c := testContract("alpha")
	c.RequiredDependencies = []string{"ghost"}
	if _, err := NewRegistry(c); err == nil {
		t.Error("expected error for dependency on unregistered module")
	}

	c = testContract("alpha")
	c.OptionalDependencies = []string{"ghost"}
	if _, err := NewRegistry(c); err == nil {
		t.Error("expected error for optional dependency on unregistered module")
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(testContract("alpha"), testContract("beta"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Get("alpha"); err != nil {
		t.Errorf("expected alpha to resolve: %v", err)
	}
	if _, err := r.Get("ghost"); err == nil {
		t.Error("expected error for unknown module")
	}
	if !r.Has("beta") || r.Has("ghost") {
		t.Error("Has reports wrong membership")
	}
	if got := r.IDs(); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("IDs() = %v, want registration order", got)
	}
}

func TestBuiltinRegistry(t *testing.T) {
	r, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"five_whys", "pestle", "five_forces", "swot", "bmc"}
	if r.Len() != len(want) {
		t.Fatalf("got %d modules, want %d", r.Len(), len(want))
	}
	for _, id := range want {
		if !r.Has(id) {
			t.Errorf("expected built-in module %s", id)
		}
	}
}

func TestBuiltinContractsValidateAgainstSchemas(t *testing.T) {
	schemas := schema.NewRegistry()

	for _, c := range Builtins() {
		if _, ok := schemas.Get(c.InputSchema); !ok {
			t.Errorf("module %s input schema %s not registered", c.ID, c.InputSchema)
		}
		if _, ok := schemas.Get(c.OutputSchema); !ok {
			t.Errorf("module %s output schema %s not registered", c.ID, c.OutputSchema)
		}
	}
}

func TestBuiltinContractsCarryFrameworkCriteria(t *testing.T) {
	want := map[string]string{
		"five_whys":   "causal_depth",
		"pestle":      "category_coverage",
		"five_forces": "structural_grounding",
		"swot":        "internal_external_split",
		"bmc":         "block_coherence",
	}

	for _, c := range Builtins() {
		extra, ok := want[c.ID]
		if !ok {
			t.Errorf("unexpected built-in module %s", c.ID)
			continue
		}
		found := false
		for _, cr := range c.Criteria {
			if cr.ID == extra {
				found = true
			}
		}
		if !found {
			t.Errorf("module %s criteria missing %s", c.ID, extra)
		}
		if err := quality.ValidateWeights(c.Criteria); err != nil {
			t.Errorf("module %s criteria weights invalid: %v", c.ID, err)
		}
	}
}

func TestBuiltinExecuteDelegatesToModel(t *testing.T) {
	schemas := schema.NewRegistry()
	caps := providers.Capabilities{Model: providers.NewMockLLM()}

	r, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := r.Get("swot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := c.Execute(context.Background(), json.RawMessage(`{}`), caps)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	result := c.ValidateOutput(schemas, out)
	if !result.Valid {
		t.Errorf("built-in execute output fails its schema: %v", result.Errors)
	}
}

func TestExecuteWithoutModelFails(t *testing.T) {
	c := Builtins()[0]
	if _, err := c.Execute(context.Background(), json.RawMessage(`{}`), providers.Capabilities{}); err == nil {
		t.Error("expected error when no model client is injected")
	}
}
