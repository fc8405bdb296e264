// Package providers defines the external collaborator seams the
// orchestration core calls into. Every framework execution goes through
// an injected client rather than an ambient global, so runs can be
// replayed deterministically with the mock implementations.
package providers

import (
	"context"
	"encoding/json"

	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

// AnalysisRequest asks a model to produce a framework output.
type AnalysisRequest struct {
	// FrameworkID identifies the framework being executed.
	FrameworkID string `json:"frameworkId"`

	// Input is the validated framework input payload.
	Input json.RawMessage `json:"input"`

	// OutputSchema names the schema the output must conform to.
	OutputSchema string `json:"outputSchema"`
}

// LLMClient produces framework analyses and criterion scores.
type LLMClient interface {
	// GenerateAnalysis produces an output payload for the request. The
	// caller validates the payload against the declared output schema.
	GenerateAnalysis(ctx context.Context, req AnalysisRequest) (json.RawMessage, error)

	// ScoreCriteria assesses an output against quality criteria.
	ScoreCriteria(ctx context.Context, frameworkID string, output json.RawMessage, criteria []quality.Criterion) ([]quality.CriterionScore, error)
}

// ResearchClient retrieves external evidence for a business context.
type ResearchClient interface {
	// Search returns up to limit citations relevant to the query.
	Search(ctx context.Context, query string, limit int) ([]schema.Citation, error)
}

// Capabilities bundles the collaborators injected into a framework
// execution.
type Capabilities struct {
	Model    LLMClient
	Research ResearchClient
}
