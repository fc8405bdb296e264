package module

import (
	"fmt"
)

// Registry is an immutable lookup table of framework contracts built
// once at process initialization. Construction fails on duplicate or
// invalid contracts rather than silently overwriting.
type Registry struct {
	modules map[string]*Contract
	order   []string
}

// NewRegistry builds a registry from the given contracts. Every
// contract is validated; a duplicate id is an error.
func NewRegistry(contracts ...*Contract) (*Registry, error) {
	r := &Registry{
		modules: make(map[string]*Contract, len(contracts)),
		order:   make([]string, 0, len(contracts)),
	}

	for _, c := range contracts {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid module contract: %w", err)
		}
		if _, exists := r.modules[c.ID]; exists {
			return nil, fmt.Errorf("duplicate module id %s", c.ID)
		}
		r.modules[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	// Dependencies may only reference registered modules.
	for _, c := range contracts {
		for _, dep := range c.RequiredDependencies {
			if _, ok := r.modules[dep]; !ok {
				return nil, fmt.Errorf("module %s requires unknown module %s", c.ID, dep)
			}
		}
		for _, dep := range c.OptionalDependencies {
			if _, ok := r.modules[dep]; !ok {
				return nil, fmt.Errorf("module %s optionally depends on unknown module %s", c.ID, dep)
			}
		}
	}

	return r, nil
}

// Get retrieves a contract by id.
func (r *Registry) Get(id string) (*Contract, error) {
	c, ok := r.modules[id]
	if !ok {
		return nil, fmt.Errorf("module %s not registered", id)
	}
	return c, nil
}

// Has reports whether a module id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.modules[id]
	return ok
}

// IDs returns module ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.modules)
}
