package quality

import (
	"math"
	"testing"
)

func testCriteria() []Criterion {
	return UniversalCriteria()
}

func scoresFor(specificity, evidence, actionability, consistency, completeness int) []CriterionScore {
	return []CriterionScore{
		{CriterionID: "specificity", Score: specificity},
		{CriterionID: "evidence", Score: evidence},
		{CriterionID: "actionability", Score: actionability},
		{CriterionID: "consistency", Score: consistency},
		{CriterionID: "completeness", Score: completeness},
	}
}

func TestUniversalCriteriaWeightsSumToOne(t *testing.T) {
	if err := ValidateWeights(UniversalCriteria()); err != nil {
		t.Errorf("universal criteria weights invalid: %v", err)
	}
}

func TestUniversalCriteriaRubricBands(t *testing.T) {
	for _, c := range UniversalCriteria() {
		if len(c.Rubric) != 4 {
			t.Errorf("criterion %s has %d rubric bands, want 4", c.ID, len(c.Rubric))
			continue
		}
		wantBands := []Band{{Min: 1, Max: 3}, {Min: 4, Max: 6}, {Min: 7, Max: 8}, {Min: 9, Max: 10}}
		for i, b := range c.Rubric {
			if b.Min != wantBands[i].Min || b.Max != wantBands[i].Max {
				t.Errorf("criterion %s band %d covers %d-%d, want %d-%d",
					c.ID, i, b.Min, b.Max, wantBands[i].Min, wantBands[i].Max)
			}
			if b.Description == "" {
				t.Errorf("criterion %s band %d has no description", c.ID, i)
			}
		}
	}
}

func TestFrameworkCriteriaAddFrameworkDimension(t *testing.T) {
	tests := []struct {
		frameworkID string
		extraID     string
	}{
		{"five_whys", "causal_depth"},
		{"pestle", "category_coverage"},
		{"five_forces", "structural_grounding"},
		{"swot", "internal_external_split"},
		{"bmc", "block_coherence"},
	}

	universal := len(UniversalCriteria())
	for _, tt := range tests {
		t.Run(tt.frameworkID, func(t *testing.T) {
			criteria := FrameworkCriteria(tt.frameworkID)
			if len(criteria) != universal+1 {
				t.Fatalf("got %d criteria, want %d", len(criteria), universal+1)
			}
			found := false
			for _, c := range criteria {
				if c.ID == tt.extraID {
					found = true
				}
			}
			if !found {
				t.Errorf("criteria missing %s", tt.extraID)
			}
			if err := ValidateWeights(criteria); err != nil {
				t.Errorf("re-weighted criteria invalid: %v", err)
			}
		})
	}
}

func TestFrameworkCriteriaUnknownFallsBack(t *testing.T) {
	got := FrameworkCriteria("ghost")
	if len(got) != len(UniversalCriteria()) {
		t.Errorf("got %d criteria for unknown framework, want the universal %d",
			len(got), len(UniversalCriteria()))
	}
}

func TestCalculateOverallScoreWeightedSum(t *testing.T) {
	// 9*0.25 + 8*0.20 + 7*0.25 + 8*0.15 + 9*0.15 = 8.1
	got, err := CalculateOverallScore(testCriteria(), scoresFor(9, 8, 7, 8, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-8.1) > 1e-9 {
		t.Errorf("got overall score %v, want 8.1", got)
	}
	if rec := RecommendationFor(got); rec != RecommendationAccept {
		t.Errorf("got recommendation %s, want accept", rec)
	}
}

func TestCalculateOverallScoreNormalizesByWeightSum(t *testing.T) {
	// Weights drift just inside the validation tolerance; dividing by
	// the weight sum keeps a uniform score exactly at that score.
	criteria := []Criterion{
		{ID: "a", Weight: 0.5},
		{ID: "b", Weight: 0.5 + 9e-10},
	}
	scores := []CriterionScore{
		{CriterionID: "a", Score: 10},
		{CriterionID: "b", Score: 10},
	}

	got, err := CalculateOverallScore(criteria, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-10) > 1e-10 {
		t.Errorf("got overall score %v, want 10 after normalizing by the weight sum", got)
	}
}

func TestRecommendationBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Recommendation
	}{
		{4.9, RecommendationReject},
		{5.0, RecommendationReview},
		{6.9, RecommendationReview},
		{7.0, RecommendationAccept},
		{10.0, RecommendationAccept},
		{1.0, RecommendationReject},
	}

	for _, tt := range tests {
		if got := RecommendationFor(tt.score); got != tt.want {
			t.Errorf("RecommendationFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestCalculateOverallScoreMonotonicity(t *testing.T) {
	lower, err := CalculateOverallScore(testCriteria(), scoresFor(5, 5, 5, 5, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	higher, err := CalculateOverallScore(testCriteria(), scoresFor(5, 6, 5, 5, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if higher <= lower {
		t.Errorf("raising one criterion score did not raise overall: %v <= %v", higher, lower)
	}
}

func TestCalculateOverallScoreRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		scores []CriterionScore
	}{
		{"unknown criterion", append(scoresFor(5, 5, 5, 5, 5)[:4], CriterionScore{CriterionID: "novelty", Score: 5})},
		{"duplicate criterion", append(scoresFor(5, 5, 5, 5, 5), CriterionScore{CriterionID: "evidence", Score: 8})},
		{"missing criterion", scoresFor(5, 5, 5, 5, 5)[:4]},
		{"score too high", scoresFor(11, 5, 5, 5, 5)},
		{"score too low", scoresFor(0, 5, 5, 5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CalculateOverallScore(testCriteria(), tt.scores); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		wantErr bool
	}{
		{"exact sum", []float64{0.25, 0.25, 0.5}, false},
		{"drifted but within tolerance", []float64{0.1, 0.2, 0.7}, false},
		{"under one", []float64{0.25, 0.25}, true},
		{"over one", []float64{0.6, 0.6}, true},
		{"zero weight", []float64{0.0, 1.0}, true},
		{"negative weight", []float64{-0.1, 1.1}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := make([]Criterion, len(tt.weights))
			for i, w := range tt.weights {
				criteria[i] = Criterion{ID: string(rune('a' + i)), Weight: w}
			}
			err := ValidateWeights(criteria)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildAssessmentRedFlags(t *testing.T) {
	a, err := BuildAssessment("swot", testCriteria(), scoresFor(4, 8, 8, 8, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.RedFlags) == 0 {
		t.Error("expected red flags for specificity scoring below 5")
	}
	if a.Recommendation != RecommendationAccept {
		t.Errorf("got recommendation %s, want accept", a.Recommendation)
	}

	clean, err := BuildAssessment("swot", testCriteria(), scoresFor(8, 8, 8, 8, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clean.RedFlags) != 0 {
		t.Errorf("expected no red flags, got %v", clean.RedFlags)
	}
}
