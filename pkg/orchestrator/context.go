package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/quality"
	"github.com/strategos-io/strategos/pkg/schema"
)

// Insights is the accumulating bag of cross-framework findings, keyed
// by concern. Bridges and the orchestration loop populate it as
// frameworks complete.
type Insights struct {
	RootCauses           []schema.RootCause           `json:"rootCauses,omitempty"`
	TrendFactors         []schema.TrendFactor         `json:"trendFactors,omitempty"`
	EntrySignals         []schema.EntrySignal         `json:"entrySignals,omitempty"`
	CompetitiveForces    *schema.FiveForcesOutput     `json:"competitiveForces,omitempty"`
	CompetitivePressures []schema.CompetitivePressure `json:"competitivePressures,omitempty"`
	SwotFactors          *schema.SwotOutput           `json:"swotFactors,omitempty"`
	DesignConstraints    []schema.DesignConstraint    `json:"designConstraints,omitempty"`
	CanvasBlocks         *schema.BmcOutput            `json:"canvasBlocks,omitempty"`
	Synthesis            string                       `json:"synthesis,omitempty"`
}

// KnowledgeBand grades a claim by the confidence behind it.
type KnowledgeBand string

// Knowledge bands.
const (
	BandVerified  KnowledgeBand = "verified"
	BandContested KnowledgeBand = "contested"
	BandRejected  KnowledgeBand = "rejected"
)

// Confidence floors for knowledge banding.
const (
	verifiedConfidence  = 0.7
	contestedConfidence = 0.4

	// contradictedConfidence is the floor for a contradicted claim to
	// stay contested instead of rejected.
	contradictedConfidence = 0.6
)

// KnowledgeClaim is one banded entry in the journey's knowledge ledger.
type KnowledgeClaim struct {
	ID              string        `json:"id"`
	Statement       string        `json:"statement"`
	SourceFramework string        `json:"sourceFramework"`
	Confidence      float64       `json:"confidence"`
	Band            KnowledgeBand `json:"band"`
	Contradicted    bool          `json:"contradicted,omitempty"`
	RecordedAt      time.Time     `json:"recordedAt"`
}

// bandFor derives the knowledge band from confidence and contradiction
// status. Contradicted claims never rise above contested.
func bandFor(confidence float64, contradicted bool) KnowledgeBand {
	if contradicted {
		if confidence >= contradictedConfidence {
			return BandContested
		}
		return BandRejected
	}
	switch {
	case confidence >= verifiedConfidence:
		return BandVerified
	case confidence >= contestedConfidence:
		return BandContested
	default:
		return BandRejected
	}
}

// StrategicContext is the accumulating envelope for one journey run.
// It is created when a journey starts, mutated only by the
// orchestration loop driving it, and persisted after each framework
// completes so a paused or failed run can be resumed from last-good
// state.
type StrategicContext struct {
	// SessionID uniquely identifies this run.
	SessionID string `json:"sessionId"`

	// JourneyID and JourneyType identify the journey being run.
	JourneyID   string       `json:"journeyId"`
	JourneyType journey.Type `json:"journeyType"`

	// BusinessContext is the business under analysis.
	BusinessContext schema.BusinessContext `json:"businessContext"`

	// ProblemStatement seeds diagnostic frameworks.
	ProblemStatement string `json:"problemStatement,omitempty"`

	// CurrentFrameworkIndex is the position in the journey's sequence
	// the run will execute next.
	CurrentFrameworkIndex int `json:"currentFrameworkIndex"`

	// CompletedFrameworks lists framework ids that cleared their gates,
	// in completion order.
	CompletedFrameworks []string `json:"completedFrameworks"`

	// Outputs holds each completed framework's validated output.
	Outputs map[string]json.RawMessage `json:"outputs,omitempty"`

	// Assessments holds each completed framework's quality assessment.
	Assessments map[string]*quality.Assessment `json:"assessments,omitempty"`

	// Insights is the cross-framework findings bag.
	Insights Insights `json:"insights"`

	// Research is the shared market research for the run.
	Research []schema.Citation `json:"research,omitempty"`

	// Knowledge is the banded claim ledger accumulated across
	// frameworks.
	Knowledge []KnowledgeClaim `json:"knowledge,omitempty"`

	// Status is the run's state machine value.
	Status Status `json:"status"`

	// LastError records the failure that stopped the run, if any.
	LastError string `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version increments on every persisted mutation.
	Version int `json:"version"`
}

// NewStrategicContext creates the envelope for a new run.
func NewStrategicContext(def *journey.Definition, business schema.BusinessContext, problem string) *StrategicContext {
	now := time.Now().UTC()
	return &StrategicContext{
		SessionID:        uuid.New().String(),
		JourneyID:        def.ID,
		JourneyType:      def.Type,
		BusinessContext:  business,
		ProblemStatement: problem,
		Outputs:          make(map[string]json.RawMessage),
		Assessments:      make(map[string]*quality.Assessment),
		Status:           StatusInitializing,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
}

// HasCompleted reports whether a framework finished in this run.
func (sc *StrategicContext) HasCompleted(frameworkID string) bool {
	for _, fw := range sc.CompletedFrameworks {
		if fw == frameworkID {
			return true
		}
	}
	return false
}

// MarkCompleted records a framework's gated output and advances the
// run position.
func (sc *StrategicContext) MarkCompleted(frameworkID string, output json.RawMessage, assessment *quality.Assessment) {
	if sc.Outputs == nil {
		sc.Outputs = make(map[string]json.RawMessage)
	}
	if sc.Assessments == nil {
		sc.Assessments = make(map[string]*quality.Assessment)
	}
	sc.Outputs[frameworkID] = output
	sc.Assessments[frameworkID] = assessment
	sc.CompletedFrameworks = append(sc.CompletedFrameworks, frameworkID)
	sc.CurrentFrameworkIndex++
	sc.touch()
}

// SetStatus applies a state machine transition.
func (sc *StrategicContext) SetStatus(to Status) error {
	next, err := sc.Status.Transition(to)
	if err != nil {
		return NewValidationError(fmt.Sprintf("session %s", sc.SessionID), err)
	}
	sc.Status = next
	sc.touch()
	return nil
}

// AddClaim appends a banded claim to the knowledge ledger. Claims with
// the same normalized statement are deduplicated, keeping the higher
// confidence.
func (sc *StrategicContext) AddClaim(statement, sourceFramework string, confidence float64, contradicted bool) {
	normalized := strings.ToLower(strings.TrimSpace(statement))
	for i := range sc.Knowledge {
		if strings.ToLower(strings.TrimSpace(sc.Knowledge[i].Statement)) == normalized {
			if confidence > sc.Knowledge[i].Confidence {
				sc.Knowledge[i].Confidence = confidence
				sc.Knowledge[i].Band = bandFor(confidence, sc.Knowledge[i].Contradicted || contradicted)
			}
			if contradicted {
				sc.Knowledge[i].Contradicted = true
				sc.Knowledge[i].Band = bandFor(sc.Knowledge[i].Confidence, true)
			}
			return
		}
	}

	sc.Knowledge = append(sc.Knowledge, KnowledgeClaim{
		ID:              uuid.New().String(),
		Statement:       statement,
		SourceFramework: sourceFramework,
		Confidence:      confidence,
		Band:            bandFor(confidence, contradicted),
		Contradicted:    contradicted,
		RecordedAt:      time.Now().UTC(),
	})
}

// ClaimsInBand returns ledger claims holding the given band.
func (sc *StrategicContext) ClaimsInBand(band KnowledgeBand) []KnowledgeClaim {
	var out []KnowledgeClaim
	for _, c := range sc.Knowledge {
		if c.Band == band {
			out = append(out, c)
		}
	}
	return out
}

func (sc *StrategicContext) touch() {
	sc.UpdatedAt = time.Now().UTC()
	sc.Version++
}
