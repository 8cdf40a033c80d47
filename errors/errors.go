package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOpen     Phase = "open"     // object file opening
	PhaseIndex    Phase = "index"    // debug entry indexing
	PhaseParse    Phase = "parse"    // type reference parsing
	PhaseResolve  Phase = "resolve"  // reference to debug entry resolution
	PhaseMeasure  Phase = "measure"  // layout measurement
	PhaseCheck    Phase = "check"    // conformance comparison
	PhaseManifest Phase = "manifest" // manifest loading
	PhaseServe    Phase = "serve"    // artifact serving
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedSymbol     Kind = "unresolved_symbol"
	KindAmbiguousSymbol      Kind = "ambiguous_symbol"
	KindIncompleteType       Kind = "incomplete_type"
	KindSizeMismatch         Kind = "size_mismatch"
	KindAlignMismatch        Kind = "align_mismatch"
	KindOffsetMismatch       Kind = "offset_mismatch"
	KindDialectMisconfigured Kind = "dialect_misconfigured"
	KindBadReference         Kind = "bad_reference"
	KindNotAMember           Kind = "not_a_member"
	KindInvalidObject        Kind = "invalid_object"
	KindInvalidManifest      Kind = "invalid_manifest"
	KindUnsupported          Kind = "unsupported"
)

// Error is the structured error type used throughout the checker
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Ref     string
	Dialect string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Ref != "" {
		b.WriteString(": ")
		b.WriteString(e.Ref)
		if e.Dialect != "" {
			b.WriteString(" (")
			b.WriteString(e.Dialect)
			b.WriteByte(')')
		}
	}

	if e.Detail != "" {
		if e.Ref != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// HasKind reports whether err, or any error it wraps, carries the given kind
func HasKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// KindOf returns the kind of the outermost structured error in err's chain,
// or the empty kind when the chain carries none
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member access path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Ref sets the type reference the error concerns
func (b *Builder) Ref(ref string) *Builder {
	b.err.Ref = ref
	return b
}

// Dialect sets the dialect the reference was parsed under
func (b *Builder) Dialect(d string) *Builder {
	b.err.Dialect = d
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnresolvedSymbol creates an error for a reference no debug entry matches
func UnresolvedSymbol(phase Phase, ref, dialect string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnresolvedSymbol,
		Ref:     ref,
		Dialect: dialect,
		Detail:  "no debug entry matches",
	}
}

// AmbiguousSymbol creates an error for a reference matched by entries that
// disagree on layout
func AmbiguousSymbol(phase Phase, ref, dialect string, sizes []uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindAmbiguousSymbol,
		Ref:     ref,
		Dialect: dialect,
		Detail:  fmt.Sprintf("matching entries disagree on size: %v", sizes),
		Value:   sizes,
	}
}

// IncompleteType creates an error for a declaration-only entry with no layout
func IncompleteType(phase Phase, ref, dialect string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindIncompleteType,
		Ref:     ref,
		Dialect: dialect,
		Detail:  "entry is a forward declaration, no layout recorded",
	}
}

// DialectMisconfigured creates an error for a reference that cannot be parsed
// until a session dialect is forced
func DialectMisconfigured(ref, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDialectMisconfigured,
		Ref:    ref,
		Detail: detail,
	}
}

// BadReference creates an error for reference text a dialect cannot parse
func BadReference(dialect, ref, detail string) *Error {
	return &Error{
		Phase:   PhaseParse,
		Kind:    KindBadReference,
		Ref:     ref,
		Dialect: dialect,
		Detail:  detail,
	}
}

// NotAMember creates an error for a member access that names no field
func NotAMember(phase Phase, path []string, owner, member string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAMember,
		Path:   path,
		Ref:    owner,
		Detail: fmt.Sprintf("no member %q", member),
	}
}

// InvalidObject creates an error for a file that is not a supported object format
func InvalidObject(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindInvalidObject,
		Detail: path,
		Cause:  cause,
	}
}

// InvalidManifest creates an error for a manifest that cannot be loaded
func InvalidManifest(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseManifest,
		Kind:   KindInvalidManifest,
		Detail: path,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// PairFailure records one mirror pair that did not pass conformance
type PairFailure struct {
	Group   string // registry group label, may be empty
	Binding string // binding-side type reference
	Native  string // native-side type reference
	Reason  string // human-readable failure description
	Kind    Kind
}

func (f PairFailure) label() string {
	if f.Group != "" {
		return f.Group
	}
	return f.Binding
}

// ChecksFailedError is returned when a conformance run finishes with failed pairs
type ChecksFailedError struct {
	Failures []PairFailure
}

// NewChecksFailedError creates an error from the failed pairs of a run
func NewChecksFailedError(failures []PairFailure) *ChecksFailedError {
	return &ChecksFailedError{Failures: failures}
}

func (e *ChecksFailedError) Error() string {
	if len(e.Failures) == 0 {
		return "[check] size_mismatch: no failures recorded"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d mirror pair(s) failed:\n", len(e.Failures)))

	// Group by kind for cleaner output
	byKind := make(map[Kind][]string)
	var kindOrder []Kind
	for _, f := range e.Failures {
		if _, exists := byKind[f.Kind]; !exists {
			kindOrder = append(kindOrder, f.Kind)
		}
		byKind[f.Kind] = append(byKind[f.Kind], f.label()+": "+f.Reason)
	}

	for _, k := range kindOrder {
		b.WriteString("\n  ")
		b.WriteString(string(k))
		b.WriteString(":\n")
		for _, line := range byKind[k] {
			b.WriteString("    - ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *ChecksFailedError) Is(target error) bool {
	_, ok := target.(*ChecksFailedError)
	return ok
}
