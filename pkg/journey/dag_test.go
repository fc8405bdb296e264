package journey

import (
	"strings"
	"testing"
)

func chainDefinition(frameworks []string, deps []Dependency) *Definition {
	return &Definition{
		ID:             "test-journey",
		Type:           TypeProblemDiagnosis,
		Name:           "Test",
		Frameworks:     frameworks,
		SummaryBuilder: "diagnostic",
		Dependencies:   deps,
	}
}

func TestBuildGraphDerivesOrder(t *testing.T) {
	d := chainDefinition(
		[]string{"five_whys", "pestle", "five_forces"},
		[]Dependency{{From: "five_whys", To: "five_forces"}},
	)

	g, err := BuildGraph(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := g.Order()
	if len(order) != 3 {
		t.Fatalf("got %d frameworks in order, want 3", len(order))
	}

	pos := make(map[string]int)
	for i, fw := range order {
		pos[fw] = i
	}
	if pos["five_whys"] >= pos["pestle"] || pos["pestle"] >= pos["five_forces"] {
		t.Errorf("derived order %v violates the chain", order)
	}
}

func TestBuildGraphRejectsCycle(t *testing.T) {
	d := chainDefinition(
		[]string{"a", "b", "c"},
		[]Dependency{{From: "c", To: "a"}},
	)

	_, err := BuildGraph(d)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "circular") {
		t.Errorf("error %q does not mention circular dependency", err)
	}
}

func TestBuildGraphRejectsUndeclaredFramework(t *testing.T) {
	d := chainDefinition(
		[]string{"a", "b"},
		[]Dependency{{From: "a", To: "ghost"}},
	)

	if _, err := BuildGraph(d); err == nil {
		t.Fatal("expected error for undeclared framework")
	}
}

func TestBuildGraphRejectsSelfDependency(t *testing.T) {
	d := chainDefinition(
		[]string{"a", "b"},
		[]Dependency{{From: "a", To: "a"}},
	)

	if _, err := BuildGraph(d); err == nil {
		t.Fatal("expected error for self dependency")
	}
}

func TestCheckDeclaredOrderDetectsMismatch(t *testing.T) {
	d := chainDefinition(
		[]string{"a", "b", "c"},
		[]Dependency{{From: "a", To: "c"}},
	)

	g, err := BuildGraph(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.CheckDeclaredOrder([]string{"a", "b", "c"}); err != nil {
		t.Errorf("declared order should be consistent: %v", err)
	}
	if err := g.CheckDeclaredOrder([]string{"c", "b", "a"}); err == nil {
		t.Error("reversed order should be inconsistent")
	}
}

func TestGraphPredecessors(t *testing.T) {
	d := chainDefinition(
		[]string{"a", "b", "c"},
		[]Dependency{{From: "a", To: "c"}},
	)

	g, err := BuildGraph(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	preds := g.Predecessors("c")
	if len(preds) != 2 || preds[0] != "a" || preds[1] != "b" {
		t.Errorf("Predecessors(c) = %v, want [a b]", preds)
	}
	if got := g.Predecessors("a"); len(got) != 0 {
		t.Errorf("Predecessors(a) = %v, want none", got)
	}
}

func TestTopoSortDeterministic(t *testing.T) {
	d := chainDefinition([]string{"z", "m", "a"}, nil)

	first, err := BuildGraph(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := BuildGraph(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := first.Order(), second.Order()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order not deterministic: %v vs %v", a, b)
		}
	}
}
