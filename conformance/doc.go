// Package conformance runs mirror pair layout checks and aggregates the
// outcomes into a report with a single terminal verdict.
//
// A registry holds ordered (binding, native) reference pairs, each claiming
// "these two types must have identical compiled size". The driver measures
// both sides of every pair through a mirrorcheck.Oracle and compares the
// results exactly, with no tolerance band.
//
// # Main Types
//
//   - Pair: one binding/native reference pair, optionally tagged with a group
//   - Registry: ordered, append-only pair collection
//   - Driver: measures and compares every pair in a registry
//   - Report: per-pair results plus the overall verdict
//   - Manifest: a registry externalized as YAML
//
// # Failure Policy
//
// The driver is fail-open per pair and fail-closed overall. A pair that does
// not resolve or does not match is recorded and the run continues, so one
// stale name cannot hide the remaining discrepancies, but any such pair makes
// Report.Err return non-nil. The one exception is a dialect
// misconfiguration: it invalidates every later resolution, so Run aborts
// immediately and returns the error itself.
//
// # Example
//
//	reg := conformance.NewRegistry().
//		AddGroup("decoder", "zydis::decoder::Decoder", "ZydisDecoder").
//		AddGroup("encoder", "zydis::ffi::encoder::OperandRegister", "ZydisEncoderOperand.reg")
//
//	report, err := conformance.NewDriver(oracle).Run(reg)
//	if err != nil {
//		return err // fatal setup defect
//	}
//	report.Write(os.Stdout) // prints "ALL STRUCTS OK" when every pair passes
//	return report.Err()
package conformance
