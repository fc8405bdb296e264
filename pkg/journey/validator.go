package journey

import (
	"fmt"

	"github.com/strategos-io/strategos/pkg/bridge"
	"github.com/strategos-io/strategos/pkg/module"
)

// Severity grades a validation issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from registry validation.
type Issue struct {
	Severity  Severity `json:"severity"`
	JourneyID string   `json:"journeyId"`
	Message   string   `json:"message"`
}

// Validator cross-checks journey definitions against the module and
// bridge registries and the set of known summary builders.
type Validator struct {
	modules  *module.Registry
	bridges  *bridge.Registry
	builders map[string]bool
}

// NewValidator creates a validator. builderNames are the summary
// builders registered with the orchestrator.
func NewValidator(modules *module.Registry, bridges *bridge.Registry, builderNames []string) *Validator {
	builders := make(map[string]bool, len(builderNames))
	for _, name := range builderNames {
		builders[name] = true
	}
	return &Validator{modules: modules, bridges: bridges, builders: builders}
}

// ValidateAll validates every journey in the registry.
func (v *Validator) ValidateAll(reg *Registry) []Issue {
	var issues []Issue
	for _, id := range reg.IDs() {
		d, _ := reg.Get(id)
		issues = append(issues, v.ValidateDefinition(d)...)
	}
	return issues
}

// ValidateDefinition runs every consistency check on one definition.
func (v *Validator) ValidateDefinition(d *Definition) []Issue {
	var issues []Issue
	add := func(sev Severity, format string, args ...interface{}) {
		issues = append(issues, Issue{Severity: sev, JourneyID: d.ID, Message: fmt.Sprintf(format, args...)})
	}

	if err := d.Validate(); err != nil {
		add(SeverityError, "definition invalid: %v", err)
		return issues
	}

	// Every framework must exist.
	for _, fw := range d.Frameworks {
		if !v.modules.Has(fw) {
			add(SeverityError, "framework %s is not registered", fw)
		}
	}

	// The summary builder must resolve.
	if !v.builders[d.SummaryBuilder] {
		add(SeverityError, "summary builder %s does not exist", d.SummaryBuilder)
	}

	// Dependencies must reference members and respect declared order.
	for _, dep := range d.Dependencies {
		fromIdx := d.FrameworkIndex(dep.From)
		toIdx := d.FrameworkIndex(dep.To)
		if fromIdx < 0 {
			add(SeverityError, "dependency references framework %s not in the sequence", dep.From)
			continue
		}
		if toIdx < 0 {
			add(SeverityError, "dependency references framework %s not in the sequence", dep.To)
			continue
		}
		if fromIdx >= toIdx {
			add(SeverityError, "ordering violation: dependency %s -> %s but %s appears first in the sequence", dep.From, dep.To, dep.To)
		}
	}

	// Consecutive frameworks must be bridgeable.
	for i := 1; i < len(d.Frameworks); i++ {
		from, to := d.Frameworks[i-1], d.Frameworks[i]
		if !v.bridges.Has(from, to) {
			add(SeverityError, "no bridge registered for consecutive frameworks %s -> %s", from, to)
		}
	}

	// Module-declared required dependencies must be satisfiable by an
	// earlier framework in this sequence.
	for i, fw := range d.Frameworks {
		contract, err := v.modules.Get(fw)
		if err != nil {
			continue
		}
		for _, req := range contract.RequiredDependencies {
			reqIdx := d.FrameworkIndex(req)
			if reqIdx < 0 || reqIdx >= i {
				add(SeverityError, "framework %s requires %s to complete first, but the sequence never runs it before", fw, req)
			}
		}
	}

	// Zero readiness thresholds run without evidence floors.
	if d.DefaultReadiness.MinReferences == 0 && d.DefaultReadiness.MinEntities == 0 {
		add(SeverityWarning, "readiness thresholds are zero, journey will proceed without evidence")
	}

	// The dependency graph must be acyclic and consistent with the
	// declared sequence.
	graph, err := BuildGraph(d)
	if err != nil {
		add(SeverityError, "dependency graph: %v", err)
		return issues
	}
	if err := graph.CheckDeclaredOrder(d.Frameworks); err != nil {
		add(SeverityError, "declared order inconsistent with dependencies: %v", err)
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
