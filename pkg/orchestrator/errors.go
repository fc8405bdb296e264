// Package orchestrator drives journey runs: it sequences frameworks,
// gates outputs on schema validity and quality, applies bridges between
// consecutive frameworks, and persists the accumulating strategic
// context after every module.
package orchestrator

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of an error for retry logic.
type ErrorClass string

const (
	// ErrorClassTransient indicates a temporary failure that may
	// succeed on retry. Examples: model timeouts, research outages.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassThrottled indicates rate limiting or quota exhaustion.
	// Retried with a longer backoff.
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassRetryable indicates an output-level failure where
	// re-invoking the module with adjusted parameters may help.
	// Example: a valid output below its quality gate.
	ErrorClassRetryable ErrorClass = "retryable"

	// ErrorClassPermanent indicates a non-recoverable error.
	// Examples: schema violations, missing bridges, unsatisfied
	// dependencies.
	ErrorClassPermanent ErrorClass = "permanent"
)

// Error codes.
const (
	ErrCodeSchemaValidation       = "SCHEMA_VALIDATION"
	ErrCodeQualityGate            = "QUALITY_GATE"
	ErrCodeMissingBridge          = "MISSING_BRIDGE"
	ErrCodeDependencyNotSatisfied = "DEPENDENCY_NOT_SATISFIED"
	ErrCodeExternalCall           = "EXTERNAL_CALL"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// OrchestrationError is a classified error with journey context.
type OrchestrationError struct {
	// Class is the error classification for retry logic.
	Class ErrorClass `json:"class"`

	// Code identifies the failure for programmatic handling.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Framework is the framework id involved, if any.
	Framework string `json:"framework,omitempty"`

	// Session is the journey session id, if known.
	Session string `json:"session,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`

	// Details carries additional context-specific information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *OrchestrationError) Error() string {
	base := fmt.Sprintf("[%s/%s] %s", e.Class, e.Code, e.Message)
	if e.Framework != "" {
		base = fmt.Sprintf("%s (framework=%s)", base, e.Framework)
	}
	if e.Err != nil {
		base = fmt.Sprintf("%s: %s", base, e.Err.Error())
	}
	return base
}

// Unwrap returns the underlying error.
func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// Is matches on class and code so errors.Is can test categories.
func (e *OrchestrationError) Is(target error) bool {
	t, ok := target.(*OrchestrationError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// WithFramework adds framework context to the error.
func (e *OrchestrationError) WithFramework(id string) *OrchestrationError {
	e.Framework = id
	return e
}

// WithSession adds session context to the error.
func (e *OrchestrationError) WithSession(id string) *OrchestrationError {
	e.Session = id
	return e
}

// WithDetail adds a detail field to the error context.
func (e *OrchestrationError) WithDetail(key string, value interface{}) *OrchestrationError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewSchemaValidationError reports a payload failing its schema. Never
// retried: the same input would fail the same way.
func NewSchemaValidationError(framework, direction string, violations []string) *OrchestrationError {
	return (&OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeSchemaValidation,
		Message: fmt.Sprintf("%s payload failed schema validation", direction),
	}).WithFramework(framework).WithDetail("violations", violations)
}

// NewQualityGateError reports a valid output below its quality gate.
// Retryable with adjusted generation.
func NewQualityGateError(framework string, score, minimum float64) *OrchestrationError {
	return (&OrchestrationError{
		Class:   ErrorClassRetryable,
		Code:    ErrCodeQualityGate,
		Message: fmt.Sprintf("quality score %.1f below gate %.1f", score, minimum),
	}).WithFramework(framework).WithDetail("score", score).WithDetail("minimum", minimum)
}

// NewMissingBridgeError reports an unbridgeable framework pair.
func NewMissingBridgeError(from, to string) *OrchestrationError {
	return &OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeMissingBridge,
		Message: fmt.Sprintf("no bridge registered for %s -> %s", from, to),
	}
}

// NewDependencyNotSatisfiedError reports a framework whose required
// upstream never completed. Raised before execute is invoked.
func NewDependencyNotSatisfiedError(framework, missing string) *OrchestrationError {
	return (&OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeDependencyNotSatisfied,
		Message: fmt.Sprintf("required dependency %s has not completed", missing),
	}).WithFramework(framework).WithDetail("missing", missing)
}

// NewExternalCallError reports a failed model or research call.
func NewExternalCallError(framework string, err error) *OrchestrationError {
	return (&OrchestrationError{
		Class:   ErrorClassTransient,
		Code:    ErrCodeExternalCall,
		Message: "external call failed",
		Err:     err,
	}).WithFramework(framework)
}

// NewNotFoundError reports a missing registry entry or record.
func NewNotFoundError(what string, err error) *OrchestrationError {
	return &OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeNotFound,
		Message: what,
		Err:     err,
	}
}

// NewValidationError reports invalid input to an operation.
func NewValidationError(message string, err error) *OrchestrationError {
	return &OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeValidation,
		Message: message,
		Err:     err,
	}
}

// NewInternalError reports an invariant violation.
func NewInternalError(message string, err error) *OrchestrationError {
	return &OrchestrationError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// IsRetryable returns true if the error may succeed on re-invocation.
func IsRetryable(err error) bool {
	var e *OrchestrationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassTransient || e.Class == ErrorClassThrottled || e.Class == ErrorClassRetryable
	}
	return false
}

// IsThrottled returns true if the error is classified as throttled.
func IsThrottled(err error) bool {
	var e *OrchestrationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassThrottled
	}
	return false
}

// IsPermanent returns true if the error is classified as permanent.
func IsPermanent(err error) bool {
	var e *OrchestrationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassPermanent
	}
	return false
}

// CodeOf extracts the error code, or empty for unclassified errors.
func CodeOf(err error) string {
	var e *OrchestrationError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
