package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

// MockLLM is a deterministic LLMClient returning canned, schema-valid
// outputs. The smoke harness and tests use it to replay journeys
// without network calls. Failure injection simulates transient model
// errors for retry coverage.
type MockLLM struct {
	mu sync.Mutex

	// Outputs overrides the canned output for specific frameworks.
	Outputs map[string]json.RawMessage

	// Scores overrides the per-criterion score returned by
	// ScoreCriteria for specific frameworks. Zero means the default.
	Scores map[string]int

	// FailuresBefore makes GenerateAnalysis fail this many times per
	// framework before succeeding.
	FailuresBefore int

	// FailWith is the error returned by injected failures.
	FailWith error

	failures map[string]int
	calls    []string
}

// NewMockLLM creates a mock model client with canned outputs for all
// built-in frameworks.
func NewMockLLM() *MockLLM {
	return &MockLLM{
		Outputs:  make(map[string]json.RawMessage),
		Scores:   make(map[string]int),
		failures: make(map[string]int),
	}
}

// Calls returns the framework ids of all GenerateAnalysis invocations,
// including failed ones, in order.
func (m *MockLLM) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// GenerateAnalysis implements LLMClient.
func (m *MockLLM) GenerateAnalysis(ctx context.Context, req AnalysisRequest) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req.FrameworkID)

	if m.failures[req.FrameworkID] < m.FailuresBefore {
		m.failures[req.FrameworkID]++
		if m.FailWith != nil {
			return nil, m.FailWith
		}
		return nil, fmt.Errorf("injected model failure for %s", req.FrameworkID)
	}

	if out, ok := m.Outputs[req.FrameworkID]; ok {
		return out, nil
	}

	out, ok := cannedOutputs[req.FrameworkID]
	if !ok {
		return nil, fmt.Errorf("no canned output for framework %s", req.FrameworkID)
	}
	return out, nil
}

// ScoreCriteria implements LLMClient and quality.CriterionJudge.
func (m *MockLLM) ScoreCriteria(ctx context.Context, frameworkID string, _ json.RawMessage, criteria []quality.Criterion) ([]quality.CriterionScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	score := m.Scores[frameworkID]
	m.mu.Unlock()
	if score == 0 {
		score = 8
	}

	scores := make([]quality.CriterionScore, 0, len(criteria))
	for _, c := range criteria {
		scores = append(scores, quality.CriterionScore{
			CriterionID:   c.ID,
			Score:         score,
			Justification: "mock assessment",
		})
	}
	return scores, nil
}

// MockResearch is a deterministic ResearchClient returning canned
// citations.
type MockResearch struct {
	// Citations is returned by every search, truncated to the limit.
	Citations []schema.Citation

	// Err, when set, is returned by every search.
	Err error
}

// NewMockResearch creates a mock research client with canned citations
// from distinct sources, enough to satisfy any built-in journey's
// readiness thresholds.
func NewMockResearch() *MockResearch {
	retrieved := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return &MockResearch{
		Citations: []schema.Citation{
			{
				ID:          "cit-mock-1",
				Title:       "Industry landscape overview",
				Source:      "analyst-digest",
				Snippet:     "Mid-market adoption grew 40% year over year.",
				RetrievedAt: retrieved,
			},
			{
				ID:          "cit-mock-2",
				Title:       "Activation benchmarks for self-serve SaaS",
				Source:      "benchmark-report",
				Snippet:     "Median time to first dashboard is under ten minutes for top-quartile products.",
				RetrievedAt: retrieved,
			},
			{
				ID:          "cit-mock-3",
				Title:       "Data privacy regulation outlook",
				Source:      "regulatory-watch",
				Snippet:     "Three jurisdictions are drafting stricter rules on behavioral analytics.",
				RetrievedAt: retrieved,
			},
			{
				ID:          "cit-mock-4",
				Title:       "Competitor pricing moves",
				Source:      "market-news",
				Snippet:     "Two incumbents introduced free tiers aimed at trial-stage teams.",
				RetrievedAt: retrieved,
			},
			{
				ID:          "cit-mock-5",
				Title:       "Survey of onboarding friction in analytics tools",
				Source:      "user-research",
				Snippet:     "Instrumentation setup is the most cited reason for trial abandonment.",
				RetrievedAt: retrieved,
			},
		},
	}
}

// Search implements ResearchClient.
func (m *MockResearch) Search(ctx context.Context, _ string, limit int) ([]schema.Citation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && limit < len(m.Citations) {
		return m.Citations[:limit], nil
	}
	return m.Citations, nil
}

// cannedOutputs are schema-valid framework outputs for deterministic
// replay.
var cannedOutputs = map[string]json.RawMessage{
	"five_whys": json.RawMessage(`{
		"problemRestatement": "Trial users never reach the activation milestone that predicts conversion",
		"rootCauses": [{
			"id": "rc-1",
			"statement": "Onboarding assumes a configured data source, which most trials never connect",
			"whyChain": [
				"Conversion dropped because trials expire before users see value",
				"Users see no value because dashboards stay empty",
				"Dashboards stay empty because no data source is connected",
				"No data source is connected because setup requires engineering time trials do not get"
			],
			"depth": 4,
			"confidence": 0.8
		}],
		"summary": "The conversion decline traces to a data-connection prerequisite that trial users cannot satisfy alone"
	}`),
	"pestle": json.RawMessage(`{
		"factors": [
			{"id": "pf-1", "category": "technological", "title": "Warehouse-native analytics shift", "description": "Buyers increasingly expect analytics to run against their own warehouse rather than a vendor copy", "severity": "high", "direction": "worsening", "timeHorizonMonths": 18},
			{"id": "pf-2", "category": "legal", "title": "Data residency enforcement", "description": "EU enforcement of residency rules raises the cost of vendor-hosted data copies", "severity": "medium", "direction": "worsening", "timeHorizonMonths": 24}
		],
		"summary": "The macro environment pushes toward warehouse-native architectures and away from hosted data copies"
	}`),
	"five_forces": json.RawMessage(`{
		"supplierPower": {"intensity": 3, "drivers": ["commodity cloud infrastructure", "multiple warehouse vendors"]},
		"buyerPower": {"intensity": 7, "drivers": ["low switching costs in trial phase", "many alternatives"]},
		"competitiveRivalry": {"intensity": 8, "drivers": ["crowded category", "feature convergence"]},
		"threatOfSubstitution": {"intensity": 6, "drivers": ["in-house SQL dashboards", "spreadsheet workflows"]},
		"threatOfNewEntry": {"intensity": 5, "drivers": ["low capital requirements", "open-source building blocks"]},
		"overallAttractiveness": 4,
		"summary": "A crowded category with strong buyer power; differentiation must come from activation speed"
	}`),
	"swot": json.RawMessage(`{
		"strengths": [{"id": "s-1", "statement": "Deepest CRM integration coverage in the segment", "impact": "high"}],
		"weaknesses": [{"id": "w-1", "statement": "Activation depends on engineering-assisted data setup", "impact": "high"}],
		"opportunities": [{"id": "o-1", "statement": "Warehouse-native deployment would neutralize residency concerns", "sourceFactors": ["pf-1", "pf-2"], "likelihood": "medium", "impact": "high"}],
		"threats": [{"id": "t-1", "statement": "Feature-converged rivals compete on onboarding speed", "sourceFactors": ["pf-1"], "likelihood": "high", "impact": "high"}],
		"synthesis": "Integration depth is the durable strength; the activation bottleneck is the exposed flank rivals attack"
	}`),
	"bmc": json.RawMessage(`{
		"customerSegments": [{"id": "cs-1", "statement": "Mid-market product teams with a cloud warehouse already in place", "confidence": 0.8}],
		"valuePropositions": [{"id": "vp-1", "statement": "Activation-day analytics on the customer's own warehouse, no data copy", "confidence": 0.7, "linkedInsights": ["o-1", "rc-1"]}],
		"channels": [{"id": "ch-1", "statement": "Warehouse marketplace listings and partner co-selling", "confidence": 0.6}],
		"customerRelationships": [{"id": "cr-1", "statement": "Self-serve onboarding with usage-triggered success outreach", "confidence": 0.7}],
		"revenueStreams": [{"id": "rs-1", "statement": "Seat-based subscription with warehouse-volume expansion tier", "confidence": 0.6}],
		"keyResources": [{"id": "kr-1", "statement": "Warehouse-native query engine and integration catalog", "confidence": 0.8}],
		"keyActivities": [{"id": "ka-1", "statement": "Maintaining integration coverage and query performance", "confidence": 0.8}],
		"keyPartnerships": [{"id": "kp-1", "statement": "Cloud warehouse vendors and their marketplaces", "confidence": 0.7}],
		"costStructure": [{"id": "co-1", "statement": "Engineering payroll dominates; serving costs stay on customer infrastructure", "confidence": 0.7}],
		"coherenceNotes": ["Warehouse-native value proposition matches the partnership and cost structure choices"],
		"summary": "A warehouse-native pivot aligns the model around fast activation without hosted data copies"
	}`),
}
