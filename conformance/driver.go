package conformance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/errors"
)

// Driver measures both sides of every registered pair through an oracle and
// compares the results. Use builder methods to adjust dialects and strictness
// before Run.
type Driver struct {
	oracle  mirrorcheck.Oracle
	binding mirrorcheck.Dialect
	native  mirrorcheck.Dialect
	strict  bool
}

// NewDriver creates a driver over the given oracle. Binding references
// default to the rust dialect and native references to C, the combination
// the tool was built for; WithDialects overrides both.
func NewDriver(oracle mirrorcheck.Oracle) *Driver {
	return &Driver{
		oracle:  oracle,
		binding: mirrorcheck.DialectRust,
		native:  mirrorcheck.DialectC,
	}
}

// WithDialects sets which dialect each side's references are written in.
func (d *Driver) WithDialects(binding, native mirrorcheck.Dialect) *Driver {
	d.binding = binding
	d.native = native
	return d
}

// WithStrict enables layout comparison beyond aggregate size: recorded
// alignment and the offsets of same-named members must match too.
//
// The default, size-only check accepts two structs whose same-size fields
// are swapped. Strict mode closes that hole at the cost of requiring member
// names to correspond across the two declarations.
func (d *Driver) WithStrict(strict bool) *Driver {
	d.strict = strict
	return d
}

// Run checks every pair in registry order and returns the aggregated report.
//
// Per pair: the binding side is measured first, then the native side. A side
// that fails to measure records an Unresolved result and the run continues
// with the next pair, so one bad name cannot mask later discrepancies. Both
// sides resolved, the sizes are compared for exact equality.
//
// The returned error is non-nil only for fatal setup defects, currently a
// dialect misconfiguration on the session: that invalidates every subsequent
// resolution, so no report is produced. All per-pair failures are inside the
// report; Report.Err gates on them.
func (d *Driver) Run(registry *Registry) (*Report, error) {
	report := &Report{Strict: d.strict}

	for _, pair := range registry.Pairs() {
		res, err := d.check(pair)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
		Logger().Debug("pair checked",
			zap.String("binding", pair.Binding),
			zap.String("native", pair.Native),
			zap.Stringer("outcome", res.Outcome))
	}

	pass, fail, unresolved := report.Counts()
	Logger().Info("conformance run finished",
		zap.Int("checked", len(report.Results)),
		zap.Int("passed", pass),
		zap.Int("failed", fail),
		zap.Int("unresolved", unresolved))
	return report, nil
}

// check measures one pair. The returned error is reserved for fatal setup
// defects; every per-pair condition lands in the Result.
func (d *Driver) check(pair Pair) (Result, error) {
	res := Result{Pair: pair}

	binding, err := d.oracle.Measure(pair.Binding, d.binding)
	if err != nil {
		if errors.HasKind(err, errors.KindDialectMisconfigured) {
			return res, err
		}
		res.Outcome = Unresolved
		res.Side = SideBinding
		res.Reason = err.Error()
		res.Kind = kindOf(err)
		return res, nil
	}
	res.Binding = binding

	native, err := d.oracle.Measure(pair.Native, d.native)
	if err != nil {
		if errors.HasKind(err, errors.KindDialectMisconfigured) {
			return res, err
		}
		res.Outcome = Unresolved
		res.Side = SideNative
		res.Reason = err.Error()
		res.Kind = kindOf(err)
		return res, nil
	}
	res.Native = native

	if binding.Size != native.Size {
		res.Outcome = Fail
		res.Kind = errors.KindSizeMismatch
		res.Reason = fmt.Sprintf("binding type %s is %d bytes, but expected %d",
			pair.Binding, binding.Size, native.Size)
		return res, nil
	}

	if d.strict {
		if kind, reason := strictDiff(pair, binding, native); kind != "" {
			res.Outcome = Fail
			res.Kind = kind
			res.Reason = reason
			return res, nil
		}
	}

	res.Outcome = Pass
	return res, nil
}

// strictDiff compares layout details the size check cannot see. Alignment is
// compared only when both producers recorded one; member offsets are compared
// for members the two declarations name identically, since names are the only
// correspondence available across type systems.
func strictDiff(pair Pair, binding, native mirrorcheck.Measurement) (errors.Kind, string) {
	if binding.Align != 0 && native.Align != 0 && binding.Align != native.Align {
		return errors.KindAlignMismatch, fmt.Sprintf(
			"binding type %s is %d-byte aligned, but expected %d",
			pair.Binding, binding.Align, native.Align)
	}

	offsets := make(map[string]uint64, len(native.Members))
	for _, m := range native.Members {
		if m.Name != "" {
			offsets[m.Name] = m.Offset
		}
	}
	for _, m := range binding.Members {
		if m.Name == "" {
			continue
		}
		want, ok := offsets[m.Name]
		if !ok {
			continue
		}
		if m.Offset != want {
			return errors.KindOffsetMismatch, fmt.Sprintf(
				"member %s of %s is at offset %d, but expected %d",
				m.Name, pair.Binding, m.Offset, want)
		}
	}
	return "", ""
}

// kindOf extracts the structured kind from a measurement error, so reports
// stay machine-readable even when the oracle returns something else.
func kindOf(err error) errors.Kind {
	if k := errors.KindOf(err); k != "" {
		return k
	}
	return errors.KindUnresolvedSymbol
}
