// Package errors provides structured error types for the mirrorcheck library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the type reference, the dialect it was
// parsed under, a member access path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnresolvedSymbol).
//		Ref("zydis::Decoder").
//		Dialect("rust").
//		Detail("no debug entry matches").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnresolvedSymbol(errors.PhaseResolve, "ZydisDecoder", "c")
//	err := errors.NotAMember(errors.PhaseMeasure, path, "ZydisEncoderOperand", "regg")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
