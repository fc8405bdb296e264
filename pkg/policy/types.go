package policy

import (
	"time"

	"github.com/strategos-io/strategos/pkg/journey"
	"github.com/strategos-io/strategos/pkg/schema"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed but do
	// not block a run.
	SeverityWarning Severity = "warning"

	// SeverityError is for violations that block the operation.
	SeverityError Severity = "error"
)

// Policy represents a governance rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional policy metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Violation represents a single policy violation.
type Violation struct {
	// Policy is the name of the policy that was violated.
	Policy string `json:"policy"`

	// Subject identifies what violated the policy, a journey id or a
	// session id.
	Subject string `json:"subject,omitempty"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`
}

// Result represents the outcome of a policy evaluation.
type Result struct {
	// Allowed is false when any error-severity violation fired.
	Allowed bool `json:"allowed"`

	// Violations lists blocking findings.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists non-blocking findings.
	Warnings []Violation `json:"warnings,omitempty"`

	// EvaluatedPolicies lists the names of policies that ran.
	EvaluatedPolicies []string `json:"evaluatedPolicies"`

	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// RunRequest is the policy view of a journey start request.
type RunRequest struct {
	JourneyID        string                 `json:"journeyId"`
	BusinessContext  schema.BusinessContext `json:"businessContext"`
	ProblemStatement string                 `json:"problemStatement,omitempty"`
}

// Input is the document handed to Rego evaluation. Exactly one of
// Journey or Run is set depending on the operation.
type Input struct {
	// Journey is a journey definition under review.
	Journey *journey.Definition `json:"journey,omitempty"`

	// Run is a start request under review.
	Run *RunRequest `json:"run,omitempty"`

	// Context provides evaluation metadata.
	Context *EvalContext `json:"context"`
}

// EvalContext provides context information for policy evaluation.
type EvalContext struct {
	// Environment is the deployment environment.
	Environment string `json:"environment,omitempty"`

	// Operation names what is being evaluated.
	Operation string `json:"operation,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
