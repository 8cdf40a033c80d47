// Package typeref parses type reference strings under a dialect's syntax
// rules.
//
// A reference names a type by its qualified path and may append a member
// access path into it, e.g. "zydis::ffi::OperandMemory" or
// "ZydisEncoderOperand.reg". Which separators and characters are legal
// depends on the dialect: C accepts flat names only, rust accepts "::"
// paths but reads angle brackets as operators, and cxx accepts the full
// grammar including balanced generic arguments.
package typeref

import (
	"fmt"
	"strings"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/errors"
)

// Ref is a parsed type reference: the qualified path naming a type, plus any
// trailing member accesses into it.
type Ref struct {
	Segments []string // namespace path and type name, outermost first
	Members  []string // member access path, outermost first
}

// TypeName returns the fully qualified type name without member accesses.
func (r Ref) TypeName() string {
	return strings.Join(r.Segments, "::")
}

// Base returns the last path segment, the type's own name.
func (r Ref) Base() string {
	if len(r.Segments) == 0 {
		return ""
	}
	return r.Segments[len(r.Segments)-1]
}

// Qualified reports whether the reference carries an explicit namespace path.
func (r Ref) Qualified() bool {
	return len(r.Segments) > 1
}

// String reassembles the reference in canonical form.
func (r Ref) String() string {
	if len(r.Members) == 0 {
		return r.TypeName()
	}
	return r.TypeName() + "." + strings.Join(r.Members, ".")
}

// HasGenericSyntax reports whether s contains angle brackets. A '>' that
// completes an "->" member access does not count. Such a reference only
// parses under the cxx dialect; under C and rust the brackets read as
// comparison operators.
func HasGenericSyntax(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			return true
		case '>':
			if i == 0 || s[i-1] != '-' {
				return true
			}
		}
	}
	return false
}

// Parse parses a reference string under the given dialect's rules.
func Parse(s string, d mirrorcheck.Dialect) (Ref, error) {
	switch d {
	case mirrorcheck.DialectC:
		return parseC(s)
	case mirrorcheck.DialectRust, mirrorcheck.DialectCxx:
		return parsePath(s, d)
	default:
		return Ref{}, errors.BadReference(d.String(), s, "no dialect selected")
	}
}

// tagKeywords may prefix a C reference; the tag namespace is flat in debug
// info, so the keyword is dropped after validation.
var tagKeywords = []string{"struct ", "union ", "enum "}

func parseC(s string) (Ref, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return Ref{}, errors.BadReference("c", s, "empty reference")
	}
	if strings.Contains(t, "::") {
		return Ref{}, errors.BadReference("c", s, "scope operator is not valid here")
	}
	if HasGenericSyntax(t) {
		return Ref{}, errors.BadReference("c", s, "angle brackets parse as comparison operators here")
	}
	for _, kw := range tagKeywords {
		if strings.HasPrefix(t, kw) {
			t = strings.TrimSpace(t[len(kw):])
			break
		}
	}
	parts := splitAccess(t)
	for _, p := range parts {
		if !isIdent(p) {
			return Ref{}, errors.BadReference("c", s, fmt.Sprintf("invalid identifier %q", p))
		}
	}
	r := Ref{Segments: parts[:1]}
	if len(parts) > 1 {
		r.Members = parts[1:]
	}
	return r, nil
}

func parsePath(s string, d mirrorcheck.Dialect) (Ref, error) {
	dn := d.String()
	t := strings.TrimSpace(s)
	if t == "" {
		return Ref{}, errors.BadReference(dn, s, "empty reference")
	}
	if d == mirrorcheck.DialectRust && HasGenericSyntax(t) {
		return Ref{}, errors.BadReference(dn, s, "angle brackets parse as operators here")
	}
	if d == mirrorcheck.DialectRust && strings.Contains(t, "->") {
		return Ref{}, errors.BadReference(dn, s, "arrow access parses as operators here")
	}
	t = strings.TrimPrefix(t, "::") // explicit global scope qualifier

	var (
		r         Ref
		start     int
		depth     int
		inMembers bool
	)
	flush := func(end int) error {
		part := t[start:end]
		if inMembers {
			if !isIdent(part) {
				return errors.BadReference(dn, s, fmt.Sprintf("invalid member %q", part))
			}
			r.Members = append(r.Members, part)
			return nil
		}
		if err := checkSegment(part, dn, s); err != nil {
			return err
		}
		r.Segments = append(r.Segments, part)
		return nil
	}

	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
			if depth < 0 {
				return Ref{}, errors.BadReference(dn, s, "unbalanced angle brackets")
			}
		case depth > 0:
			// generic argument text, taken verbatim
		case c == ':':
			if inMembers {
				return Ref{}, errors.BadReference(dn, s, "scope operator after member access")
			}
			if i+1 >= len(t) || t[i+1] != ':' {
				return Ref{}, errors.BadReference(dn, s, "single ':' is not a separator")
			}
			if err := flush(i); err != nil {
				return Ref{}, err
			}
			i++
			start = i + 1
		case c == '.':
			if err := flush(i); err != nil {
				return Ref{}, err
			}
			inMembers = true
			start = i + 1
		case c == '-' && d == mirrorcheck.DialectCxx && i+1 < len(t) && t[i+1] == '>':
			if err := flush(i); err != nil {
				return Ref{}, err
			}
			inMembers = true
			i++
			start = i + 1
		}
	}
	if depth != 0 {
		return Ref{}, errors.BadReference(dn, s, "unbalanced angle brackets")
	}
	if err := flush(len(t)); err != nil {
		return Ref{}, err
	}
	return r, nil
}

// checkSegment validates one path segment: an identifier, optionally carrying
// balanced angle-bracket generic arguments whose inner text is unrestricted.
func checkSegment(seg, dialect, whole string) error {
	if seg == "" {
		return errors.BadReference(dialect, whole, "empty path segment")
	}
	if !isIdentStart(seg[0]) {
		return errors.BadReference(dialect, whole, fmt.Sprintf("segment %q does not start with an identifier", seg))
	}
	depth := 0
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth > 0:
		case !isIdentChar(c):
			return errors.BadReference(dialect, whole, fmt.Sprintf("invalid character %q in segment %q", c, seg))
		}
	}
	return nil
}

// splitAccess splits a C member access chain, accepting both "." and "->".
func splitAccess(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '.':
			parts = append(parts, s[start:i])
			start = i + 1
		case s[i] == '-' && i+1 < len(s) && s[i+1] == '>':
			parts = append(parts, s[start:i])
			i++
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
