// Package binding resolves declared fields against a properties source and
// assigns the converted values to instances built by a host framework.
//
// # Overview
//
// A host describes a bound type with a Spec: the source name plus one Field
// per (field identifier, property key) pair. Setup loads the source once,
// Resolve computes a Result for every field, and the returned Decorator
// wraps the host's native Target:
//
//	target, err := binding.Setup(binding.SetupParams[*Author]{
//	    Spec:     spec,
//	    Loader:   loader,
//	    Registry: convert.Default(),
//	    Native:   native,
//	    Reporter: reporter,
//	})
//
// Each Inject first runs the native step, then writes every resolved value
// through the field's Accessor. Fields that could not be resolved are sent
// to the host's ErrorReporter instead of aborting the remaining fields.
//
// # Errors
//
//   - source.ErrSourceNotFound: Setup fails and the type is not decorated.
//   - ErrNoConverter: no converter accepts the field type (reported).
//   - ErrNoValue: the property key is absent from the source (reported).
//   - ErrConversion: the raw value does not parse (reported and returned
//     from Inject).
package binding
