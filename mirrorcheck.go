package mirrorcheck

// Dialect selects the syntax ruleset applied when parsing a type reference
// string. It matters twice: a session is forced into one dialect before any
// resolution (its parse mode), and each measurement names the dialect its
// reference was written in (used to pick the matching symbol namespace).
type Dialect int

const (
	// DialectNone means no dialect has been forced on the session yet.
	DialectNone Dialect = iota

	// DialectC parses flat tag names with optional dotted member paths,
	// e.g. "ZydisEncoderOperand.reg".
	DialectC

	// DialectRust parses "::"-qualified paths. Angle brackets are rejected:
	// the rust expression grammar reads them as comparison operators, which
	// is exactly why sessions resolving generic binding names must be forced
	// into DialectCxx first.
	DialectRust

	// DialectCxx parses "::"-qualified paths with balanced angle-bracket
	// generic arguments. The superset mode: every C and rust reference also
	// parses under it.
	DialectCxx
)

var dialectNames = map[Dialect]string{
	DialectNone: "none",
	DialectC:    "c",
	DialectRust: "rust",
	DialectCxx:  "cxx",
}

func (d Dialect) String() string {
	if s, ok := dialectNames[d]; ok {
		return s
	}
	return "unknown"
}

// ParseDialect maps a configuration string ("c", "rust", "cxx", and the
// common alias "c++") to a Dialect. Returns DialectNone, false for anything
// else.
func ParseDialect(s string) (Dialect, bool) {
	switch s {
	case "c":
		return DialectC, true
	case "rust":
		return DialectRust, true
	case "cxx", "c++":
		return DialectCxx, true
	}
	return DialectNone, false
}

// Member describes one named member of a measured aggregate type: its byte
// offset from the start of the aggregate and the storage size of its type.
type Member struct {
	Name   string
	Offset uint64
	Size   uint64
}

// Measurement is a resolved layout for one type reference: the complete
// compiled storage size in bytes, including padding, exactly as the producer
// emitted it.
//
// Align is the explicit alignment the producer recorded, or 0 when none was
// recorded (debug info only carries alignment for types whose alignment was
// forced away from the natural one). Members is populated when the resolved
// type is a struct, class, or union.
type Measurement struct {
	Ref     string
	Dialect Dialect
	Size    uint64
	Align   uint64
	Members []Member
}

// Oracle measures the compiled in-memory layout of types named by reference
// strings. The one fact an Oracle must never invent is a size: a reference
// that does not resolve to a complete type yields an error, not a zero.
//
// Implementations are read-only views over a loaded symbol table and are not
// safe for concurrent use unless documented otherwise.
type Oracle interface {
	// Measure resolves ref, written in the given dialect, and returns its
	// layout. The error reports why resolution failed; the Measurement is
	// meaningful only when the error is nil.
	Measure(ref string, dialect Dialect) (Measurement, error)
}
