// Package mirrorcheck verifies that foreign-function "mirror" type
// declarations have byte-for-byte the same memory layout as the native types
// they stand in for.
//
// Bindings redeclare a native library's structs in another type system. When
// the two declarations drift, say through a reordered field or an upstream
// size change, the binding corrupts memory at runtime with no compile-time
// signal. mirrorcheck catches the drift by reading compiled
// debug information (DWARF) from a built binary and comparing the sizes the
// compiler actually emitted, never the sizes either type system reports
// about itself.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	mirrorcheck/         Root package with the Oracle and Measurement contracts
//	├── conformance/     Pair registry, conformance driver, report, manifest
//	├── symtab/          DWARF-backed sessions: open objects, index types, measure
//	├── typeref/         Dialect-aware type reference parsing
//	├── wasmobj/         Debug-section extraction from WebAssembly binaries
//	├── errors/          Structured error types for diagnostics
//	├── fileserver/      Standalone static file server utility
//	└── cmd/mirrorcheck/ CLI: check, inspect, serve
//
// # Quick Start
//
// Open a binary that carries both type systems' debug info and run a
// registry of mirror pairs through it:
//
//	sess, err := symtab.Open("target/debug/libzydis.so")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//	sess.ForceDialect(mirrorcheck.DialectCxx)
//
//	reg := conformance.NewRegistry().
//	    AddGroup("decoder", "zydis::decoder::Decoder", "ZydisDecoder").
//	    AddGroup("encoder", "zydis::ffi::encoder::OperandRegister", "ZydisEncoderOperand.reg")
//
//	report, err := conformance.NewDriver(sess).Run(reg)
//	if err != nil {
//	    log.Fatal(err) // fatal setup defect, e.g. dialect misconfiguration
//	}
//	report.Write(os.Stdout) // "ALL STRUCTS OK" only when every pair passes
//	if err := report.Err(); err != nil {
//	    os.Exit(1)
//	}
//
// # Design
//
// The driver is deliberately fail-open per pair and fail-closed overall: a
// pair that cannot be resolved or does not match is recorded and the run
// continues, maximizing diagnostic yield, but any such pair makes the whole
// run report failure. Sizes are compared exactly; there is no tolerance
// band.
//
// The Oracle is an injected capability. symtab.Session is the production
// implementation; tests drive the conformance package with a map-backed
// fake, no debugger or binary required.
package mirrorcheck
