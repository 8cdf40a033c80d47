// Package symtab resolves type references against compiled debug information.
//
// A Session wraps one object's DWARF data and answers layout questions: the
// exact storage size the producing compiler chose for a type, its recorded
// alignment, and the offsets of its members. This is the production
// implementation of mirrorcheck.Oracle.
//
// # Opening Sessions
//
// Open recognizes the common container formats and locates their debug
// sections:
//
//	sess, err := symtab.Open("target/debug/libzydis.so") // ELF, Mach-O, PE, wasm
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
// Hosts that already hold a dwarf.Data can build a session directly:
//
//	sess, err := symtab.New(dwarfData)
//
// # Dialects and Forcing
//
// Each Measure call names the dialect its reference was written in; the
// dialect selects which compile units may satisfy the lookup (rust references
// resolve in rust units, C references in C units, cxx sees everything).
//
// The reference text itself is parsed under the session's forced dialect.
// Sessions resolving generic binding names must be forced to the cxx mode up
// front, because the rust grammar reads "Option<usize>" as two comparisons:
//
//	sess.ForceDialect(mirrorcheck.DialectCxx)
//	m, err := sess.Measure("zydis::ffi::DecodedInstruction", mirrorcheck.DialectRust)
//
// An unforced session measuring a generic reference fails with a
// dialect_misconfigured error, which conformance runs treat as fatal.
//
// # Resolution Rules
//
// Qualified references ("zydis::ffi::Decoder") match their full path. Bare
// references ("ZydisDecoder") match any type with that name regardless of
// namespace. Types re-declared identically across units, the normal fate of
// any C header, resolve cleanly; entries that disagree on size make the
// reference ambiguous and the measurement fails rather than guessing.
//
// References may append member accesses ("ZydisEncoderOperand.reg"), which
// measure the storage of that member's type, walking through typedefs and
// anonymous struct and union layers as the source language would.
package symtab
