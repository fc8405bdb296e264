// Package schema provides the data contracts for analysis frameworks.
//
// Every framework module declares an input schema and an output schema.
// Schemas are written in CUE and compiled once into a Registry at process
// start; validation unifies a JSON payload with the compiled schema and
// reports every constraint violation rather than just the first.
//
// The Go types in types.go mirror the CUE definitions and carry the
// camelCase wire format used by the persistence layer and the summary
// builders. The CUE schemas are the source of truth at the module
// execution boundary; the Go types are a convenience for code that
// constructs or consumes validated payloads.
package schema
