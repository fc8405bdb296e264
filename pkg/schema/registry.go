package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

// ValidationResult is the outcome of validating a payload against a schema.
// Errors lists every constraint violation found, not just the first.
type ValidationResult struct {
	// Valid is true when the payload satisfies the schema.
	Valid bool `json:"valid"`

	// Errors are human-readable violation messages.
	Errors []string `json:"errors,omitempty"`
}

// Registry manages compiled CUE schemas for framework payloads.
type Registry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewRegistry creates a schema registry with all built-in framework
// schemas compiled. Compilation failure of a built-in schema is a
// programming defect and panics.
func NewRegistry() *Registry {
	r := &Registry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}

	for name, src := range builtinSchemas() {
		if err := r.Register(name, src); err != nil {
			panic(fmt.Sprintf("schema: built-in schema %s: %v", name, err))
		}
	}

	return r
}

// Register compiles a CUE schema and stores it under the given name.
func (r *Registry) Register(name, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	val := r.ctx.CompileString(src)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	r.schemas[name] = val
	return nil
}

// Get retrieves a compiled schema by name.
func (r *Registry) Get(name string) (cue.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	val, ok := r.schemas[name]
	return val, ok
}

// Names returns all registered schema names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// Validate marshals data through its JSON wire form and unifies it with
// the named schema, returning every violation found. An unknown schema
// name is itself a validation error.
func (r *Registry) Validate(name string, data interface{}) ValidationResult {
	raw, err := json.Marshal(data)
	if err != nil {
		return ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("failed to encode payload: %v", err)}}
	}
	return r.ValidateJSON(name, raw)
}

// ValidateJSON validates a raw JSON payload against the named schema.
// Malformed JSON is reported as a validation error, never coerced.
func (r *Registry) ValidateJSON(name string, raw json.RawMessage) ValidationResult {
	sv, ok := r.Get(name)
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("schema %s not found", name)}}
	}

	// Build the CUE value straight from the JSON bytes. Decoding into
	// interface{} first would turn every JSON integer into a float64,
	// which no longer unifies with int constraints.
	expr, err := cuejson.Extract(name, raw)
	if err != nil {
		return ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}

	dataVal := r.ctx.BuildExpr(expr)
	if err := dataVal.Err(); err != nil {
		return ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("failed to encode payload: %v", err)}}
	}

	unified := sv.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return ValidationResult{Valid: false, Errors: violationMessages(err)}
	}

	return ValidationResult{Valid: true}
}

// violationMessages flattens a CUE error into one message per violation.
func violationMessages(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		path := cueerrors.Path(e)
		if len(path) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", joinPath(path), e.Error()))
		} else {
			msgs = append(msgs, e.Error())
		}
	}
	return msgs
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
