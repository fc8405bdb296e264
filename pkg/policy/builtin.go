package policy

import (
	"time"
)

// BuiltinPolicies returns the governance rules applied out of the box.
func BuiltinPolicies() []Policy {
	return []Policy{
		journeyShapePolicy(),
		readinessThresholdPolicy(),
		runRequestPolicy(),
	}
}

// journeyShapePolicy bounds journey definitions to a reviewable size
// and requires naming.
func journeyShapePolicy() Policy {
	return Policy{
		Name:        "journey-shape",
		Description: "Journeys must be named, keep a bounded framework sequence, and declare a summary builder",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"journeys", "governance"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package strategos.policies.journey_shape

import rego.v1

deny contains violation if {
	input.journey
	count(object.get(input.journey, "name", "")) == 0
	violation := {
		"message": sprintf("journey %s must have a name", [input.journey.id]),
		"severity": "error",
		"subject": input.journey.id,
	}
}

deny contains violation if {
	input.journey
	count(input.journey.frameworks) > 8
	violation := {
		"message": sprintf("journey %s runs %d frameworks, the limit is 8", [input.journey.id, count(input.journey.frameworks)]),
		"severity": "error",
		"subject": input.journey.id,
	}
}

deny contains violation if {
	input.journey
	count(object.get(input.journey, "summaryBuilder", "")) == 0
	violation := {
		"message": sprintf("journey %s must declare a summary builder", [input.journey.id]),
		"severity": "error",
		"subject": input.journey.id,
	}
}
`,
	}
}

// readinessThresholdPolicy flags journeys that skip evidence gating.
func readinessThresholdPolicy() Policy {
	return Policy{
		Name:        "readiness-thresholds",
		Description: "Journeys with zero readiness thresholds run on unverified evidence",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"journeys", "evidence"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package strategos.policies.readiness

import rego.v1

deny contains violation if {
	input.journey
	object.get(input.journey, ["defaultReadiness", "minReferences"], 0) == 0
	object.get(input.journey, ["defaultReadiness", "minEntities"], 0) == 0
	violation := {
		"message": sprintf("journey %s declares no readiness thresholds", [input.journey.id]),
		"severity": "warning",
		"subject": input.journey.id,
	}
}
`,
	}
}

// runRequestPolicy requires a described business before a run starts.
func runRequestPolicy() Policy {
	return Policy{
		Name:        "run-request",
		Description: "Start requests must name and describe the business being analyzed",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"runs", "governance"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package strategos.policies.run_request

import rego.v1

deny contains violation if {
	input.run
	count(object.get(input.run.businessContext, "name", "")) == 0
	violation := {
		"message": "run request must name the business",
		"severity": "error",
		"subject": input.run.journeyId,
	}
}

deny contains violation if {
	input.run
	count(object.get(input.run.businessContext, "description", "")) == 0
	violation := {
		"message": "run request must describe the business",
		"severity": "error",
		"subject": input.run.journeyId,
	}
}

deny contains violation if {
	input.run
	description := object.get(input.run.businessContext, "description", "")
	count(description) > 0
	count(description) < 20
	violation := {
		"message": "business description is too short to analyze",
		"severity": "warning",
		"subject": input.run.journeyId,
	}
}
`,
	}
}
