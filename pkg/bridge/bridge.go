// Package bridge implements cognitive transforms between consecutive
// frameworks: one framework's validated output is interpreted, not
// copied, into an enrichment of the next framework's input.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// InterpretationRule documents one cognitive mapping a bridge applies.
type InterpretationRule struct {
	// ID is the stable rule identifier.
	ID string `json:"id"`

	// Description states the mapping in from/to terms.
	Description string `json:"description"`

	// Example is a worked instance of the rule.
	Example string `json:"example"`
}

// TransformFunc interprets a from-framework output and returns the
// to-framework input with the enrichment applied. Both payloads are
// schema-valid at the time of the call.
type TransformFunc func(ctx context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error)

// ValidateSourceFunc checks a from-framework output carries the
// material the transform interprets. It runs before Transform.
type ValidateSourceFunc func(fromOutput json.RawMessage) error

// ValidateTransformationFunc asserts post-conditions over an applied
// enrichment, such as every derived signal citing a source element.
type ValidateTransformationFunc func(fromOutput, enriched json.RawMessage) error

// Contract is one bridge's complete definition.
type Contract struct {
	// From and To are the framework ids the bridge connects.
	From string
	To   string

	// Description explains the interpretation the bridge performs.
	Description string

	// Rules are the cognitive mappings the transform applies.
	Rules []InterpretationRule

	// Transform applies the enrichment.
	Transform TransformFunc

	// ValidateSource gates Transform on the source output.
	ValidateSource ValidateSourceFunc

	// ValidateTransformation checks the enrichment afterwards.
	// Optional.
	ValidateTransformation ValidateTransformationFunc
}

// Apply runs the bridge end to end: source validation, transform,
// then post-condition checks when declared.
func (c *Contract) Apply(ctx context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error) {
	if err := c.ValidateSource(fromOutput); err != nil {
		return nil, fmt.Errorf("bridge %s -> %s source invalid: %w", c.From, c.To, err)
	}

	enriched, err := c.Transform(ctx, fromOutput, toInput)
	if err != nil {
		return nil, err
	}

	if c.ValidateTransformation != nil {
		if err := c.ValidateTransformation(fromOutput, enriched); err != nil {
			return nil, fmt.Errorf("bridge %s -> %s post-condition failed: %w", c.From, c.To, err)
		}
	}
	return enriched, nil
}

// Validate checks the contract's internal consistency.
func (c *Contract) Validate() error {
	if c.From == "" || c.To == "" {
		return fmt.Errorf("bridge must declare from and to frameworks")
	}
	if c.From == c.To {
		return fmt.Errorf("bridge %s -> %s connects a framework to itself", c.From, c.To)
	}
	if len(c.Rules) < 2 {
		return fmt.Errorf("bridge %s -> %s declares %d interpretation rules, need at least 2", c.From, c.To, len(c.Rules))
	}
	for _, r := range c.Rules {
		if r.ID == "" || r.Description == "" || r.Example == "" {
			return fmt.Errorf("bridge %s -> %s has an incomplete interpretation rule", c.From, c.To)
		}
	}
	if c.Transform == nil {
		return fmt.Errorf("bridge %s -> %s has no transform", c.From, c.To)
	}
	if c.ValidateSource == nil {
		return fmt.Errorf("bridge %s -> %s has no source validator", c.From, c.To)
	}
	return nil
}

// Key identifies a bridge by its ordered framework pair.
type Key struct {
	From string
	To   string
}

func (k Key) String() string {
	return k.From + " -> " + k.To
}

// Registry is an immutable lookup table of bridges keyed by ordered
// (from, to) pairs, built once at process initialization.
type Registry struct {
	bridges map[Key]*Contract
	order   []Key
}

// NewRegistry builds a registry from the given contracts. Every
// contract is validated; a duplicate pair is an error.
func NewRegistry(contracts ...*Contract) (*Registry, error) {
	r := &Registry{
		bridges: make(map[Key]*Contract, len(contracts)),
		order:   make([]Key, 0, len(contracts)),
	}

	for _, c := range contracts {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid bridge contract: %w", err)
		}
		key := Key{From: c.From, To: c.To}
		if _, exists := r.bridges[key]; exists {
			return nil, fmt.Errorf("duplicate bridge %s", key)
		}
		r.bridges[key] = c
		r.order = append(r.order, key)
	}

	return r, nil
}

// Get retrieves the bridge for an ordered framework pair.
func (r *Registry) Get(from, to string) (*Contract, error) {
	c, ok := r.bridges[Key{From: from, To: to}]
	if !ok {
		return nil, fmt.Errorf("no bridge registered for %s -> %s", from, to)
	}
	return c, nil
}

// Has reports whether a bridge exists for the ordered pair.
func (r *Registry) Has(from, to string) bool {
	_, ok := r.bridges[Key{From: from, To: to}]
	return ok
}

// Keys returns bridge keys in registration order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered bridges.
func (r *Registry) Len() int {
	return len(r.bridges)
}
