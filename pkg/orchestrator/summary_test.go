package orchestrator

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

func TestBuilderRegistry(t *testing.T) {
	reg, err := NewBuilderRegistry(BuiltinBuilders())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"comprehensive", "market_entry", "competitive", "business_model", "diagnostic"}
	for _, name := range want {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("builder %s not registered: %v", name, err)
		}
	}
	if len(reg.Names()) != len(want) {
		t.Errorf("got %d builders, want %d", len(reg.Names()), len(want))
	}

	if _, err := reg.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown builder")
	}
}

func TestBuilderRegistryRejectsNil(t *testing.T) {
	if _, err := NewBuilderRegistry(map[string]BuilderFunc{"broken": nil}); err == nil {
		t.Error("expected error for nil builder")
	}
	if _, err := NewBuilderRegistry(map[string]BuilderFunc{"": BuiltinBuilders()["diagnostic"]}); err == nil {
		t.Error("expected error for empty builder name")
	}
}

func completedContext(t *testing.T) *StrategicContext {
	t.Helper()
	sc := NewStrategicContext(testDefinition(t), schema.BusinessContext{Name: "Acme Analytics"}, "trials stall")
	sc.MarkCompleted("five_whys", json.RawMessage(`{}`), &quality.Assessment{OverallScore: 8.0})
	sc.MarkCompleted("pestle", json.RawMessage(`{}`), &quality.Assessment{OverallScore: 7.5})
	sc.Insights.RootCauses = []schema.RootCause{{
		ID: "rc-1", Statement: "setup requires engineering time most trials lack",
		WhyChain: []string{"trials stall"}, Depth: 3, Confidence: 0.8,
	}}
	sc.Insights.TrendFactors = []schema.TrendFactor{{
		ID: "pf-1", Category: schema.TrendTechnological, Title: "Warehouse-native analytics shift",
		Description: "buyers expect direct warehouse connection", Severity: schema.SeverityHigh,
		Direction: "improving", TimeHorizonMonths: 12,
	}}
	sc.AddClaim("setup requires engineering time most trials lack", "five_whys", 0.8, false)
	return sc
}

func TestDiagnosticSummary(t *testing.T) {
	sc := completedContext(t)
	builder, err := NewBuilderRegistry(BuiltinBuilders())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, err := builder.Get("diagnostic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	completedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	summary, err := fn(sc, SessionMeta{VersionNumber: sc.Version, CompletedAt: completedAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.SessionID != sc.SessionID {
		t.Errorf("session id = %s, want %s", summary.SessionID, sc.SessionID)
	}
	if summary.Builder != "diagnostic" {
		t.Errorf("builder = %s, want diagnostic", summary.Builder)
	}
	if !strings.Contains(summary.Headline, "setup requires engineering time") {
		t.Errorf("headline %q should lead with the root cause", summary.Headline)
	}
	if len(summary.KeyInsights) != 2 {
		t.Errorf("got %d key insights, want 2 (root cause + high-severity factor)", len(summary.KeyInsights))
	}
	if summary.VerifiedClaims != 1 {
		t.Errorf("verified claims = %d, want 1", summary.VerifiedClaims)
	}
	if !summary.CompletedAt.Equal(completedAt) {
		t.Errorf("completed at = %v, want %v", summary.CompletedAt, completedAt)
	}
}

func TestSummaryCarriesJourneyTypeAndFrameworks(t *testing.T) {
	sc := completedContext(t)
	fn := BuiltinBuilders()["diagnostic"]

	summary, err := fn(sc, SessionMeta{VersionNumber: sc.Version, CompletedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.JourneyType != sc.JourneyType {
		t.Errorf("journey type = %s, want %s", summary.JourneyType, sc.JourneyType)
	}
	if len(summary.Frameworks) != 2 {
		t.Fatalf("got %d framework digests, want 2", len(summary.Frameworks))
	}
	digest, ok := summary.Frameworks["five_whys"]
	if !ok {
		t.Fatal("five_whys digest missing")
	}
	if digest.OverallScore != 8.0 {
		t.Errorf("five_whys digest score = %v, want 8", digest.OverallScore)
	}
	if _, ok := summary.Frameworks["pestle"]; !ok {
		t.Error("pestle digest missing")
	}
}

func TestSummaryRequiresCompletedFrameworks(t *testing.T) {
	sc := NewStrategicContext(testDefinition(t), schema.BusinessContext{Name: "Acme"}, "problem")
	fn := BuiltinBuilders()["comprehensive"]

	if _, err := fn(sc, SessionMeta{}); err == nil {
		t.Error("expected error building a summary with nothing completed")
	}
}

func TestMarketEntryHeadlineIncludesAttractiveness(t *testing.T) {
	sc := completedContext(t)
	sc.Insights.CompetitiveForces = &schema.FiveForcesOutput{OverallAttractiveness: 6, Summary: "moderate"}
	fn := BuiltinBuilders()["market_entry"]

	summary, err := fn(sc, SessionMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(summary.Headline, "6/10") {
		t.Errorf("headline %q should carry attractiveness", summary.Headline)
	}
	if summary.Sections["competition"] != "moderate" {
		t.Errorf("competition section = %q, want the forces summary", summary.Sections["competition"])
	}
}
