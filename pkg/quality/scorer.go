package quality

import (
	"context"
	"encoding/json"
	"fmt"
)

// Scorer assesses a framework output against a criteria set.
type Scorer interface {
	Score(ctx context.Context, frameworkID string, output json.RawMessage, criteria []Criterion) (*Assessment, error)
}

// CriterionJudge produces per-criterion scores for an output. The
// model-backed provider implements this so the scoring strategy stays
// deterministic and testable around it.
type CriterionJudge interface {
	ScoreCriteria(ctx context.Context, frameworkID string, output json.RawMessage, criteria []Criterion) ([]CriterionScore, error)
}

// JudgeScorer delegates per-criterion scoring to a judge and assembles
// the assessment locally.
type JudgeScorer struct {
	judge CriterionJudge
}

// NewJudgeScorer creates a scorer backed by the given judge.
func NewJudgeScorer(judge CriterionJudge) *JudgeScorer {
	return &JudgeScorer{judge: judge}
}

// Score implements Scorer.
func (s *JudgeScorer) Score(ctx context.Context, frameworkID string, output json.RawMessage, criteria []Criterion) (*Assessment, error) {
	scores, err := s.judge.ScoreCriteria(ctx, frameworkID, output, criteria)
	if err != nil {
		return nil, fmt.Errorf("judge scoring failed for %s: %w", frameworkID, err)
	}
	return BuildAssessment(frameworkID, criteria, scores)
}

// HeuristicScorer scores outputs with coarse structural heuristics. It
// is deterministic and needs no external collaborator, which makes it
// the scorer of choice for smoke checks and offline runs.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a heuristic scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score implements Scorer.
func (s *HeuristicScorer) Score(ctx context.Context, frameworkID string, output json.RawMessage, criteria []Criterion) (*Assessment, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("output is not a JSON object: %w", err)
	}

	stats := collectStats(payload)

	scores := make([]CriterionScore, 0, len(criteria))
	for _, c := range criteria {
		scores = append(scores, CriterionScore{
			CriterionID:   c.ID,
			Score:         s.scoreCriterion(c.ID, stats),
			Justification: "structural heuristic",
		})
	}

	return BuildAssessment(frameworkID, criteria, scores)
}

// payloadStats summarizes the structural shape of an output payload.
type payloadStats struct {
	totalFields     int
	populatedFields int
	statements      int
	avgStatementLen float64
	citations       int
	evidence        int
}

func (s *HeuristicScorer) scoreCriterion(id string, st payloadStats) int {
	switch id {
	case "completeness":
		if st.totalFields == 0 {
			return 1
		}
		ratio := float64(st.populatedFields) / float64(st.totalFields)
		switch {
		case ratio >= 0.95:
			return 8
		case ratio >= 0.75:
			return 6
		default:
			return 3
		}
	case "evidence":
		switch {
		case st.citations >= 3 || st.evidence >= 5:
			return 8
		case st.citations >= 1 || st.evidence >= 2:
			return 6
		default:
			return 3
		}
	case "specificity":
		switch {
		case st.avgStatementLen >= 60:
			return 8
		case st.avgStatementLen >= 30:
			return 6
		default:
			return 3
		}
	case "actionability", "consistency":
		// Not structurally measurable; score mid-band so the overall
		// result is driven by the measurable criteria.
		return 7
	default:
		return 7
	}
}

// collectStats walks the payload recursively counting statements,
// evidence entries, and citations.
func collectStats(payload map[string]interface{}) payloadStats {
	st := payloadStats{}
	totalLen := 0

	var walk func(v interface{}, key string)
	walk = func(v interface{}, key string) {
		switch val := v.(type) {
		case map[string]interface{}:
			for k, inner := range val {
				walk(inner, k)
			}
		case []interface{}:
			switch key {
			case "citations", "research":
				st.citations += len(val)
			case "evidence":
				st.evidence += len(val)
			}
			for _, inner := range val {
				walk(inner, key)
			}
		case string:
			if key == "statement" || key == "description" || key == "summary" || key == "synthesis" {
				st.statements++
				totalLen += len(val)
			}
		}
	}

	for k, v := range payload {
		st.totalFields++
		if !isEmptyValue(v) {
			st.populatedFields++
		}
		walk(v, k)
	}

	if st.statements > 0 {
		st.avgStatementLen = float64(totalLen) / float64(st.statements)
	}

	return st
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}
