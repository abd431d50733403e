// Package rngen provides a deterministic, seed-driven procedural text
// generator for names, phrases and other short strings.
//
// # Determinism
//
// Every random decision is drawn from a stream identified by a path of
// labels. A stream's seed is derived from the master seed and its full path,
// so the same master seed and configuration always yield the same output,
// independent of the order in which requests run or of other requests running
// concurrently.
//
// # Architecture
//
// A request is a plain configuration map naming a strategy:
//
//	{"strategy": "template", "template": "[title] $name", ...}
//
// The middleware resolves the request seed and root stream, then dispatches
// to the strategy registry. Strategies may dispatch nested configurations back
// through the registry, each on a child stream, within a recursion budget.
//
// Built-in strategies:
//   - wordlist: weighted or uniform draws from word lists
//   - syllable: prefix + middles + suffix assembly
//   - markov: token chains with per-transition temperature
//   - template: literal text with $alias and [token] substitution
//   - hybrid: ordered pipelines whose results feed a closing template
//
// Failures are returned as structured values with stable codes rather than
// panics, and can be serialized as {code, message, details}.
//
// # Packages
//
//   - stream: hierarchical seed derivation and draws
//   - engine: master seed and stream derivation with observers
//   - schema: configuration contracts and validation
//   - dataset: word lists, syllable sets and Markov models, loaded from JSON or YAML
//   - strategy: strategy interface, registry and the built-in implementations
//   - middleware: request lifecycle, listeners, metrics and batch generation
//   - debug: timeline recorder and plain-text debug report
//   - telemetry: NATS publication of lifecycle events
//   - sampling: output distribution surveys
//   - config: engine configuration loading and validation
//
// The rngen command in cmd/rngen exposes generation, validation, strategy
// introspection and surveys from the command line.
package rngen
