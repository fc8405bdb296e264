package quality

import (
	"fmt"
	"time"
)

// Recommendation is the gate decision derived from an overall score.
type Recommendation string

// Gate decisions.
const (
	// RecommendationAccept means the output clears the quality gate.
	RecommendationAccept Recommendation = "accept"

	// RecommendationReview means the output is usable but should be
	// reviewed before downstream consumption.
	RecommendationReview Recommendation = "review"

	// RecommendationReject means the output must be regenerated.
	RecommendationReject Recommendation = "reject"
)

// Score thresholds for gate decisions. Boundaries are inclusive: a 7.0
// is an accept and a 5.0 is a review.
const (
	AcceptThreshold = 7.0
	ReviewThreshold = 5.0

	// redFlagScore is the per-criterion score below which the
	// criterion's red flags are surfaced in the assessment.
	redFlagScore = 5
)

// CriterionScore is one criterion's assessed score with justification.
type CriterionScore struct {
	// CriterionID references the scored criterion.
	CriterionID string `json:"criterionId"`

	// Score is the assessed score on a 1-10 scale.
	Score int `json:"score"`

	// Justification explains the score in rubric terms.
	Justification string `json:"justification,omitempty"`

	// Improvements suggests what would raise the score.
	Improvements []string `json:"improvements,omitempty"`
}

// Assessment is the full quality result for one framework output.
type Assessment struct {
	// FrameworkID is the framework whose output was assessed.
	FrameworkID string `json:"frameworkId"`

	// Scores are the per-criterion results.
	Scores []CriterionScore `json:"scores"`

	// OverallScore is the weighted sum of per-criterion scores.
	OverallScore float64 `json:"overallScore"`

	// Recommendation is the gate decision for OverallScore.
	Recommendation Recommendation `json:"recommendation"`

	// RedFlags lists the red flags of criteria scoring below 5.
	RedFlags []string `json:"redFlags,omitempty"`

	// AssessedAt is when the assessment was produced.
	AssessedAt time.Time `json:"assessedAt"`
}

// Passes reports whether the assessment clears the given minimum score.
func (a *Assessment) Passes(minimum float64) bool {
	return a.OverallScore >= minimum
}

// RecommendationFor maps an overall score to a gate decision.
func RecommendationFor(score float64) Recommendation {
	switch {
	case score >= AcceptThreshold:
		return RecommendationAccept
	case score >= ReviewThreshold:
		return RecommendationReview
	default:
		return RecommendationReject
	}
}

// CalculateOverallScore computes the weighted average of per-criterion
// scores, sum(score*weight)/sum(weight). Every criterion must be scored
// exactly once and every score must reference a known criterion.
func CalculateOverallScore(criteria []Criterion, scores []CriterionScore) (float64, error) {
	if err := ValidateWeights(criteria); err != nil {
		return 0, err
	}

	weights := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		weights[c.ID] = c.Weight
	}

	seen := make(map[string]bool, len(scores))
	total := 0.0
	weightSum := 0.0
	for _, s := range scores {
		w, ok := weights[s.CriterionID]
		if !ok {
			return 0, fmt.Errorf("score references unknown criterion %s", s.CriterionID)
		}
		if seen[s.CriterionID] {
			return 0, fmt.Errorf("criterion %s scored more than once", s.CriterionID)
		}
		if s.Score < 1 || s.Score > 10 {
			return 0, fmt.Errorf("criterion %s score %d out of range 1-10", s.CriterionID, s.Score)
		}
		seen[s.CriterionID] = true
		total += float64(s.Score) * w
		weightSum += w
	}

	if len(seen) != len(criteria) {
		return 0, fmt.Errorf("scored %d of %d criteria", len(seen), len(criteria))
	}

	return total / weightSum, nil
}

// BuildAssessment assembles a full assessment from per-criterion
// scores: overall score, recommendation, and red flags for criteria
// scoring below 5.
func BuildAssessment(frameworkID string, criteria []Criterion, scores []CriterionScore) (*Assessment, error) {
	overall, err := CalculateOverallScore(criteria, scores)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}

	var redFlags []string
	for _, s := range scores {
		if s.Score < redFlagScore {
			redFlags = append(redFlags, byID[s.CriterionID].RedFlags...)
		}
	}

	return &Assessment{
		FrameworkID:    frameworkID,
		Scores:         scores,
		OverallScore:   overall,
		Recommendation: RecommendationFor(overall),
		RedFlags:       redFlags,
		AssessedAt:     time.Now().UTC(),
	}, nil
}
