// Package errors provides standardized error handling for RNGEN.
//
// # Overview
//
// Two kinds of errors flow through the engine:
//
//   - GenerationError: the structured {code, message, details} failure every
//     strategy and the middleware return. Codes are stable strings that
//     collaborators match on to show contextual help; details carry plain
//     values only so the error can be serialized.
//   - ClassifiedError: internal failures (loading datasets, reading engine
//     configuration) wrapped with component and operation context.
//
// # Error Classification
//
// Both kinds share a three-class system:
//
//   - Invalid: malformed configuration or template content (fix the input)
//   - Resource: missing or malformed datasets (fix the data)
//   - Fatal: unrecoverable states (stop processing)
//
// # Nested Failures
//
// Composing strategies never flatten or discard a nested failure. The hybrid
// pipeline wraps a failing step with Nest, which stores the nested error's map
// form under details.nested. Template expansion uses Propagate, which keeps
// the nested code but records the token it passed through:
//
//	ge := errors.Nest(errors.CodeHybridStepError, "step 2 failed", nested,
//	    map[string]any{"index": 2, "alias": "body"})
//	errors.RootCode(ge) // the innermost code
//
// # Error Wrapping Pattern
//
// Internal errors follow the format:
//
//	"component.method: action failed: underlying error"
//
// created with Wrap, WrapInvalid, WrapResource or WrapFatal.
package errors
