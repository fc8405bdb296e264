package orchestrator

import (
	"fmt"
	"time"

	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/quality"
)

// SessionMeta is the completion metadata handed to summary builders.
type SessionMeta struct {
	VersionNumber int       `json:"versionNumber"`
	CompletedAt   time.Time `json:"completedAt"`
}

// FrameworkDigest is one completed framework's entry in a summary.
type FrameworkDigest struct {
	OverallScore   float64                `json:"overallScore"`
	Recommendation quality.Recommendation `json:"recommendation"`
}

// JourneySummary is the final artifact of a completed journey.
type JourneySummary struct {
	SessionID     string       `json:"sessionId"`
	JourneyID     string       `json:"journeyId"`
	JourneyType   journey.Type `json:"journeyType"`
	Builder       string       `json:"builder"`
	VersionNumber int          `json:"versionNumber"`
	CompletedAt   time.Time    `json:"completedAt"`

	// Frameworks maps each completed framework to its gate outcome.
	Frameworks map[string]FrameworkDigest `json:"frameworks"`

	// Headline is the one-sentence takeaway.
	Headline string `json:"headline"`

	// KeyInsights are the most load-bearing findings across frameworks.
	KeyInsights []string `json:"keyInsights"`

	// Sections maps concern names to narrative text.
	Sections map[string]string `json:"sections,omitempty"`

	// VerifiedClaims counts ledger claims in the verified band.
	VerifiedClaims int `json:"verifiedClaims"`
}

// BuilderFunc assembles a summary from a completed run.
type BuilderFunc func(sc *StrategicContext, meta SessionMeta) (*JourneySummary, error)

// BuilderRegistry is an immutable lookup of summary builders keyed by
// name. Construction fails on duplicates so a journey referencing a
// builder resolves or the process never starts.
type BuilderRegistry struct {
	builders map[string]BuilderFunc
	names    []string
}

// NewBuilderRegistry builds a registry from named builders.
func NewBuilderRegistry(builders map[string]BuilderFunc) (*BuilderRegistry, error) {
	r := &BuilderRegistry{builders: make(map[string]BuilderFunc, len(builders))}
	for name, fn := range builders {
		if name == "" {
			return nil, fmt.Errorf("summary builder with empty name")
		}
		if fn == nil {
			return nil, fmt.Errorf("summary builder %s is nil", name)
		}
		r.builders[name] = fn
		r.names = append(r.names, name)
	}
	return r, nil
}

// Get retrieves a builder by name.
func (r *BuilderRegistry) Get(name string) (BuilderFunc, error) {
	fn, ok := r.builders[name]
	if !ok {
		return nil, NewNotFoundError(fmt.Sprintf("summary builder %s not registered", name), nil)
	}
	return fn, nil
}

// Names returns the registered builder names.
func (r *BuilderRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// BuiltinBuilders returns the summary builders for the built-in
// journeys.
func BuiltinBuilders() map[string]BuilderFunc {
	return map[string]BuilderFunc{
		"comprehensive":  buildSummary("comprehensive", comprehensiveHeadline),
		"market_entry":   buildSummary("market_entry", marketEntryHeadline),
		"competitive":    buildSummary("competitive", competitiveHeadline),
		"business_model": buildSummary("business_model", businessModelHeadline),
		"diagnostic":     buildSummary("diagnostic", diagnosticHeadline),
	}
}

// buildSummary assembles the common summary shell; the headline
// function supplies the journey-specific takeaway.
func buildSummary(name string, headline func(sc *StrategicContext) string) BuilderFunc {
	return func(sc *StrategicContext, meta SessionMeta) (*JourneySummary, error) {
		if len(sc.CompletedFrameworks) == 0 {
			return nil, NewInternalError("summary requested with no completed frameworks", nil)
		}

		s := &JourneySummary{
			SessionID:     sc.SessionID,
			JourneyID:     sc.JourneyID,
			JourneyType:   sc.JourneyType,
			Builder:       name,
			VersionNumber: meta.VersionNumber,
			CompletedAt:   meta.CompletedAt,
			Headline:      headline(sc),
			Frameworks:    make(map[string]FrameworkDigest, len(sc.CompletedFrameworks)),
			Sections:      make(map[string]string),
		}

		for _, fw := range sc.CompletedFrameworks {
			digest := FrameworkDigest{}
			if a, ok := sc.Assessments[fw]; ok && a != nil {
				digest.OverallScore = a.OverallScore
				digest.Recommendation = a.Recommendation
			}
			s.Frameworks[fw] = digest
		}

		for _, rc := range sc.Insights.RootCauses {
			s.KeyInsights = append(s.KeyInsights, "root cause: "+rc.Statement)
		}
		for _, tf := range sc.Insights.TrendFactors {
			if tf.Severity == "high" {
				s.KeyInsights = append(s.KeyInsights, "macro factor: "+tf.Title)
			}
		}
		if sc.Insights.SwotFactors != nil && sc.Insights.SwotFactors.Synthesis != "" {
			s.Sections["synthesis"] = sc.Insights.SwotFactors.Synthesis
		}
		if sc.Insights.CanvasBlocks != nil && sc.Insights.CanvasBlocks.Summary != "" {
			s.Sections["businessModel"] = sc.Insights.CanvasBlocks.Summary
		}
		if sc.Insights.CompetitiveForces != nil {
			s.Sections["competition"] = sc.Insights.CompetitiveForces.Summary
		}

		s.VerifiedClaims = len(sc.ClaimsInBand(BandVerified))

		return s, nil
	}
}

func comprehensiveHeadline(sc *StrategicContext) string {
	return fmt.Sprintf("Validated %s across %d frameworks from diagnosis to business model",
		sc.BusinessContext.Name, len(sc.CompletedFrameworks))
}

func marketEntryHeadline(sc *StrategicContext) string {
	attractiveness := "unassessed"
	if sc.Insights.CompetitiveForces != nil {
		attractiveness = fmt.Sprintf("%d/10", sc.Insights.CompetitiveForces.OverallAttractiveness)
	}
	return fmt.Sprintf("Market entry picture for %s: industry attractiveness %s",
		sc.BusinessContext.Name, attractiveness)
}

func competitiveHeadline(sc *StrategicContext) string {
	return fmt.Sprintf("Competitive position of %s translated into business model implications",
		sc.BusinessContext.Name)
}

func businessModelHeadline(sc *StrategicContext) string {
	return fmt.Sprintf("Business model redesign for %s grounded in synthesis",
		sc.BusinessContext.Name)
}

func diagnosticHeadline(sc *StrategicContext) string {
	if len(sc.Insights.RootCauses) > 0 {
		return "Diagnosis: " + sc.Insights.RootCauses[0].Statement
	}
	return fmt.Sprintf("Diagnosis for %s", sc.BusinessContext.Name)
}
