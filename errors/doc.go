// Package errors provides structured error types for the hostbridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: value path, Go/host type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseToNative, errors.KindTypeMismatch).
//		Path("param[0]", "age").
//		GoType("uint32").
//		HostType("string").
//		Detail("expected a number").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseToNative, path, "uint32", "string")
//	err := errors.RangeOverflow(errors.PhaseToNative, path, 4294967296, "u32")
//
// The conversion taxonomy maps onto kinds:
//
//	UnsupportedType       KindUnsupportedType (registration time, fatal)
//	ConversionError       KindTypeMismatch, KindRangeOverflow, KindEncoding, KindMissingField
//	HandleScopeViolation  KindScopeViolation
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
