package schema

import "time"

// BusinessContext describes the business under analysis. It is part of
// every framework's input.
type BusinessContext struct {
	// Name is the business name.
	Name string `json:"name"`

	// Type is the business type (e.g., "saas", "marketplace").
	Type string `json:"type"`

	// Scale is the business scale.
	Scale string `json:"scale"`

	// Description is a free-form description of the business.
	Description string `json:"description"`

	// Industry is the industry the business operates in.
	Industry string `json:"industry,omitempty"`

	// Keywords are optional search keywords for research retrieval.
	Keywords []string `json:"keywords,omitempty"`
}

// Citation is a reference to an external evidence source.
type Citation struct {
	// ID is the unique identifier for this citation.
	ID string `json:"id"`

	// Title is the title of the cited source.
	Title string `json:"title"`

	// URL is the source location, if any.
	URL string `json:"url,omitempty"`

	// Source names the publisher or origin.
	Source string `json:"source"`

	// Snippet is the quoted passage supporting the claim.
	Snippet string `json:"snippet,omitempty"`

	// RetrievedAt is when the citation was collected.
	RetrievedAt time.Time `json:"retrievedAt"`
}

// Evidence attributes a statement to the analysis pass that produced it.
type Evidence struct {
	// FrameworkID is the framework that produced the statement.
	FrameworkID string `json:"frameworkId"`

	// Statement is the supporting statement.
	Statement string `json:"statement"`

	// Citations are the external references backing the statement.
	Citations []Citation `json:"citations,omitempty"`
}

// FiveWhysInput is the input payload for the root-cause analysis module.
type FiveWhysInput struct {
	BusinessContext BusinessContext `json:"businessContext"`

	// ProblemStatement is the observed problem to diagnose.
	ProblemStatement string `json:"problemStatement"`

	// Research is shared market research available to the module.
	Research []Citation `json:"research,omitempty"`
}

// RootCause is a single diagnosed cause with its why-chain.
type RootCause struct {
	ID string `json:"id"`

	// Statement is the root cause as a declarative sentence.
	Statement string `json:"statement"`

	// WhyChain is the ordered chain of "why" answers leading here.
	WhyChain []string `json:"whyChain"`

	// Depth is the number of why-steps taken (len(WhyChain)).
	Depth int `json:"depth"`

	// Confidence is the module's confidence in this cause, 0..1.
	Confidence float64 `json:"confidence"`

	Evidence []Evidence `json:"evidence,omitempty"`
}

// FiveWhysOutput is the output payload for the root-cause analysis module.
type FiveWhysOutput struct {
	// ProblemRestatement is the sharpened problem statement.
	ProblemRestatement string `json:"problemRestatement"`

	RootCauses []RootCause `json:"rootCauses"`

	Summary string `json:"summary"`
}

// TrendCategory classifies a macro-environment factor.
type TrendCategory string

// Macro-environment factor categories.
const (
	TrendPolitical     TrendCategory = "political"
	TrendEconomic      TrendCategory = "economic"
	TrendSocial        TrendCategory = "social"
	TrendTechnological TrendCategory = "technological"
	TrendLegal         TrendCategory = "legal"
	TrendEnvironmental TrendCategory = "environmental"
)

// Severity grades the impact of a factor or signal.
type Severity string

// Severity levels.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// PestleInput is the input payload for the macro-environment scan module.
type PestleInput struct {
	BusinessContext BusinessContext `json:"businessContext"`

	// FocusAreas optionally narrows the scan to specific categories.
	FocusAreas []TrendCategory `json:"focusAreas,omitempty"`

	// RootCauseThemes is the bridge enrichment from upstream root-cause
	// analysis: themes the scan should pay attention to.
	RootCauseThemes []string `json:"rootCauseThemes,omitempty"`

	Research []Citation `json:"research,omitempty"`
}

// TrendFactor is a single macro-environment factor.
type TrendFactor struct {
	ID          string        `json:"id"`
	Category    TrendCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`

	// Direction indicates whether the factor is improving, stable, or
	// worsening for the business.
	Direction string `json:"direction"`

	// TimeHorizonMonths is the expected window in which the factor bites.
	TimeHorizonMonths int `json:"timeHorizonMonths"`

	Evidence []Evidence `json:"evidence,omitempty"`
}

// PestleOutput is the output payload for the macro-environment scan module.
type PestleOutput struct {
	Factors []TrendFactor `json:"factors"`
	Summary string        `json:"summary"`
}

// EntrySignal is a bridge-produced signal about structural barriers,
// derived from macro-environment factors for the competitive-forces module.
type EntrySignal struct {
	// SourceFactorID is the trend factor the signal was derived from.
	SourceFactorID string `json:"sourceFactorId"`

	// Force names the competitive force the signal informs.
	Force string `json:"force"`

	// Rationale states the cognitive mapping applied.
	Rationale string `json:"rationale"`

	Severity Severity `json:"severity"`
}

// FiveForcesInput is the input payload for the competitive-forces module.
type FiveForcesInput struct {
	BusinessContext BusinessContext `json:"businessContext"`

	// EntrySignals is the bridge enrichment from the macro scan.
	EntrySignals []EntrySignal `json:"entrySignals,omitempty"`

	Research []Citation `json:"research,omitempty"`
}

// Force is the assessment of a single competitive force.
type Force struct {
	// Intensity is the force strength on a 1-10 scale.
	Intensity int `json:"intensity"`

	// Drivers are the structural drivers behind the intensity.
	Drivers []string `json:"drivers"`

	Evidence []Evidence `json:"evidence,omitempty"`
}

// FiveForcesOutput is the output payload for the competitive-forces module.
type FiveForcesOutput struct {
	SupplierPower        Force `json:"supplierPower"`
	BuyerPower           Force `json:"buyerPower"`
	CompetitiveRivalry   Force `json:"competitiveRivalry"`
	ThreatOfSubstitution Force `json:"threatOfSubstitution"`
	ThreatOfNewEntry     Force `json:"threatOfNewEntry"`

	// OverallAttractiveness summarizes industry attractiveness, 1-10.
	OverallAttractiveness int `json:"overallAttractiveness"`

	Summary string `json:"summary"`
}

// SwotInput is the input payload for the SWOT synthesis module.
type SwotInput struct {
	BusinessContext BusinessContext `json:"businessContext"`

	// CompetitivePressures is the bridge enrichment from the forces
	// analysis: pressures reframed as internal/external exposure.
	CompetitivePressures []CompetitivePressure `json:"competitivePressures,omitempty"`

	Research []Citation `json:"research,omitempty"`
}

// CompetitivePressure is a bridge-produced reframing of a competitive
// force into exposure the SWOT synthesis must account for.
type CompetitivePressure struct {
	// SourceForce names the originating competitive force.
	SourceForce string `json:"sourceForce"`

	// Exposure states what the pressure means for the business.
	Exposure string `json:"exposure"`

	Severity Severity `json:"severity"`
}

// InternalFactor is a strength or weakness.
type InternalFactor struct {
	ID        string     `json:"id"`
	Statement string     `json:"statement"`
	Impact    Severity   `json:"impact"`
	Evidence  []Evidence `json:"evidence,omitempty"`
}

// ExternalFactor is an opportunity or threat.
type ExternalFactor struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`

	// SourceFactors are the upstream factor or pressure identifiers this
	// factor was derived from. Bridges assert these are non-empty for
	// derived factors.
	SourceFactors []string `json:"sourceFactors,omitempty"`

	Likelihood Severity   `json:"likelihood"`
	Impact     Severity   `json:"impact"`
	Evidence   []Evidence `json:"evidence,omitempty"`
}

// SwotOutput is the output payload for the SWOT synthesis module.
type SwotOutput struct {
	Strengths     []InternalFactor `json:"strengths"`
	Weaknesses    []InternalFactor `json:"weaknesses"`
	Opportunities []ExternalFactor `json:"opportunities"`
	Threats       []ExternalFactor `json:"threats"`

	// Synthesis is the cross-quadrant narrative.
	Synthesis string `json:"synthesis"`
}

// DesignConstraint is a bridge-produced constraint on business-model
// design, derived from SWOT factors.
type DesignConstraint struct {
	// SourceFactorID is the SWOT factor the constraint was derived from.
	SourceFactorID string `json:"sourceFactorId"`

	// Block names the canvas block the constraint applies to.
	Block string `json:"block"`

	// Constraint states the design rule.
	Constraint string `json:"constraint"`
}

// BmcInput is the input payload for the business-model canvas module.
type BmcInput struct {
	BusinessContext BusinessContext `json:"businessContext"`

	// DesignConstraints is the bridge enrichment from the SWOT synthesis.
	DesignConstraints []DesignConstraint `json:"designConstraints,omitempty"`

	Research []Citation `json:"research,omitempty"`
}

// CanvasEntry is one entry in a canvas block.
type CanvasEntry struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`

	// Confidence is the module's confidence in the entry, 0..1.
	Confidence float64 `json:"confidence"`

	// LinkedInsights references upstream insight identifiers that
	// motivated the entry.
	LinkedInsights []string `json:"linkedInsights,omitempty"`
}

// BmcOutput is the output payload for the business-model canvas module.
type BmcOutput struct {
	CustomerSegments      []CanvasEntry `json:"customerSegments"`
	ValuePropositions     []CanvasEntry `json:"valuePropositions"`
	Channels              []CanvasEntry `json:"channels"`
	CustomerRelationships []CanvasEntry `json:"customerRelationships"`
	RevenueStreams        []CanvasEntry `json:"revenueStreams"`
	KeyResources          []CanvasEntry `json:"keyResources"`
	KeyActivities         []CanvasEntry `json:"keyActivities"`
	KeyPartnerships       []CanvasEntry `json:"keyPartnerships"`
	CostStructure         []CanvasEntry `json:"costStructure"`

	// CoherenceNotes records cross-block consistency observations.
	CoherenceNotes []string `json:"coherenceNotes,omitempty"`

	Summary string `json:"summary"`
}
