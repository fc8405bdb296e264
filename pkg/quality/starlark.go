package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// StarlarkScorer runs a user-supplied Starlark script to score outputs.
// The script must define a function score(output, criteria) returning a
// dict of criterion id to integer score, optionally with a
// justification: score("id") or {"score": n, "justification": "..."}.
type StarlarkScorer struct {
	script  string
	timeout time.Duration
}

// NewStarlarkScorer creates a scorer around the given script. A zero
// timeout defaults to 30 seconds.
func NewStarlarkScorer(script string, timeout time.Duration) *StarlarkScorer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &StarlarkScorer{script: script, timeout: timeout}
}

// Score implements Scorer.
func (s *StarlarkScorer) Score(ctx context.Context, frameworkID string, output json.RawMessage, criteria []Criterion) (*Assessment, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type evalResult struct {
		scores []CriterionScore
		err    error
	}
	resultCh := make(chan evalResult, 1)

	thread := &starlark.Thread{
		Name: "quality-score",
		Print: func(_ *starlark.Thread, _ string) {
			// Scripts do not get stdout.
		},
	}

	go func() {
		scores, err := s.evaluate(thread, output, criteria)
		resultCh <- evalResult{scores: scores, err: err}
	}()

	select {
	case <-evalCtx.Done():
		thread.Cancel("timeout")
		return nil, fmt.Errorf("scoring script timed out after %v", s.timeout)
	case res := <-resultCh:
		if res.err != nil {
			return nil, res.err
		}
		return BuildAssessment(frameworkID, criteria, res.scores)
	}
}

func (s *StarlarkScorer) evaluate(thread *starlark.Thread, output json.RawMessage, criteria []Criterion) ([]CriterionScore, error) {
	var payload interface{}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	outputVal, err := toStarlarkValue(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to convert output: %w", err)
	}

	criteriaVal, err := criteriaToStarlark(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to convert criteria: %w", err)
	}

	predeclared := starlark.StringDict{
		"struct": starlarkstruct.Default,
	}

	globals, err := starlark.ExecFile(thread, "score.star", s.script, predeclared)
	if err != nil {
		return nil, fmt.Errorf("scoring script failed: %w", err)
	}

	scoreFn, ok := globals["score"]
	if !ok {
		return nil, fmt.Errorf("scoring script does not define score(output, criteria)")
	}

	result, err := starlark.Call(thread, scoreFn, starlark.Tuple{outputVal, criteriaVal}, nil)
	if err != nil {
		return nil, fmt.Errorf("score() failed: %w", err)
	}

	return scoresFromStarlark(result)
}

func criteriaToStarlark(criteria []Criterion) (starlark.Value, error) {
	items := make([]starlark.Value, 0, len(criteria))
	for _, c := range criteria {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		val, err := toStarlarkValue(decoded)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	return starlark.NewList(items), nil
}

// scoresFromStarlark converts the score() return value into criterion
// scores. Accepts either bare integers or {"score", "justification"}
// dicts per criterion.
func scoresFromStarlark(v starlark.Value) ([]CriterionScore, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("score() must return a dict, got %s", v.Type())
	}

	scores := make([]CriterionScore, 0, dict.Len())
	for _, item := range dict.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			return nil, fmt.Errorf("score() keys must be criterion ids")
		}

		cs := CriterionScore{CriterionID: string(key)}
		switch val := item[1].(type) {
		case starlark.Int:
			n, ok := val.Int64()
			if !ok {
				return nil, fmt.Errorf("score for %s too large", key)
			}
			cs.Score = int(n)
		case *starlark.Dict:
			n, justification, err := unpackScoreDict(val)
			if err != nil {
				return nil, fmt.Errorf("score for %s: %w", key, err)
			}
			cs.Score = n
			cs.Justification = justification
		default:
			return nil, fmt.Errorf("score for %s must be int or dict, got %s", key, item[1].Type())
		}

		scores = append(scores, cs)
	}

	return scores, nil
}

func unpackScoreDict(d *starlark.Dict) (int, string, error) {
	raw, found, err := d.Get(starlark.String("score"))
	if err != nil || !found {
		return 0, "", fmt.Errorf("missing score key")
	}
	n, ok := raw.(starlark.Int)
	if !ok {
		return 0, "", fmt.Errorf("score must be an int")
	}
	i, ok := n.Int64()
	if !ok {
		return 0, "", fmt.Errorf("score too large")
	}

	justification := ""
	if raw, found, _ := d.Get(starlark.String("justification")); found {
		if s, ok := raw.(starlark.String); ok {
			justification = string(s)
		}
	}

	return int(i), justification, nil
}

// toStarlarkValue converts a decoded JSON value to a Starlark value.
func toStarlarkValue(v interface{}) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case float64:
		if val == float64(int64(val)) {
			return starlark.MakeInt64(int64(val)), nil
		}
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []interface{}:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			converted, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return starlark.NewList(list), nil
	case map[string]interface{}:
		dict := starlark.NewDict(len(val))
		for k, inner := range val {
			converted, err := toStarlarkValue(inner)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
