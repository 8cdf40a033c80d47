package symtab

import (
	"debug/dwarf"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/errors"
	"github.com/mirrorcheck/mirrorcheck/typeref"
)

// DW_LANG codes for the producers the checker distinguishes.
const (
	langC89   = 0x0001
	langC     = 0x0002
	langCxx   = 0x0004
	langC99   = 0x000c
	langCxx03 = 0x0019
	langCxx11 = 0x001a
	langRust  = 0x001c
	langC11   = 0x001d
	langCxx14 = 0x0021
	langCxx17 = 0x002a
	langCxx20 = 0x002b
	langC17   = 0x002c
)

type langGroup int

const (
	groupOther langGroup = iota
	groupC
	groupCxx
	groupRust
)

func groupOf(lang int64) langGroup {
	switch lang {
	case langC89, langC, langC99, langC11, langC17:
		return groupC
	case langCxx, langCxx03, langCxx11, langCxx14, langCxx17, langCxx20:
		return groupCxx
	case langRust:
		return groupRust
	}
	return groupOther
}

// dialectAdmits reports whether a reference in dialect d may resolve against
// entries from a unit in language group g. The cxx dialect is the
// introspection superset and sees every unit.
func dialectAdmits(d mirrorcheck.Dialect, g langGroup) bool {
	switch d {
	case mirrorcheck.DialectC:
		return g == groupC
	case mirrorcheck.DialectRust:
		return g == groupRust
	case mirrorcheck.DialectCxx:
		return true
	}
	return false
}

// entry is one named type definition found in the debug info.
type entry struct {
	name   string       // DW_AT_name verbatim, generic names keep their brackets
	qual   string       // fully qualified name, segments joined with "::"
	offset dwarf.Offset // DIE offset, resolvable through dwarf.Data.Type
	group  langGroup    // language group of the defining unit
	align  uint64       // DW_AT_alignment, 0 when not recorded
	decl   bool         // forward declaration, no layout
}

// Session is a read-only view over one loaded object's debug information.
// It resolves type references to compiled layouts and implements
// mirrorcheck.Oracle.
//
// A session indexes every struct, class, union, enum, and typedef once at
// construction; measurements afterwards are map lookups plus a walk of the
// resolved type. Sessions are not safe for concurrent use.
type Session struct {
	data   *dwarf.Data
	closer io.Closer
	source string

	forced mirrorcheck.Dialect

	byName map[string][]*entry // bare type name
	byQual map[string][]*entry // fully qualified name
}

var _ mirrorcheck.Oracle = (*Session)(nil)

// New builds a session over already-extracted debug information. Most callers
// want Open, which handles the container formats; New serves hosts that carry
// their own dwarf.Data.
func New(d *dwarf.Data) (*Session, error) {
	s := &Session{
		data:   d,
		byName: make(map[string][]*entry),
		byQual: make(map[string][]*entry),
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying object file, if the session owns one.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// Source returns the path the session was opened from, or "" for sessions
// built over pre-extracted debug data.
func (s *Session) Source() string {
	return s.source
}

// TypeCount returns the number of distinct type names indexed.
func (s *Session) TypeCount() int {
	return len(s.byName)
}

// ForceDialect pins the session's reference parse mode. A session is forced
// at most once: re-forcing to a different mode mid-run would change how every
// later reference reads, which is the inconsistency the misconfiguration
// error exists to catch. Forcing the same mode again is a no-op.
//
// Forcing DialectCxx is the usual move before resolving generic binding
// names, since the rust grammar reads their angle brackets as operators.
func (s *Session) ForceDialect(d mirrorcheck.Dialect) error {
	if d == mirrorcheck.DialectNone {
		return errors.New(errors.PhaseResolve, errors.KindDialectMisconfigured).
			Detail("cannot force the empty dialect").Build()
	}
	if s.forced != mirrorcheck.DialectNone && s.forced != d {
		return errors.New(errors.PhaseResolve, errors.KindDialectMisconfigured).
			Detail("session already forced to %s", s.forced).Build()
	}
	s.forced = d
	return nil
}

// ForcedDialect returns the pinned parse mode, or DialectNone when the
// session has not been forced.
func (s *Session) ForcedDialect() mirrorcheck.Dialect {
	return s.forced
}

// Measure implements mirrorcheck.Oracle.
//
// The dialect argument names the type system ref belongs to. It selects
// which units' entries may satisfy the lookup and, on an unforced session,
// how the reference text is parsed. A forced session always parses with its
// forced mode.
func (s *Session) Measure(ref string, dialect mirrorcheck.Dialect) (mirrorcheck.Measurement, error) {
	var m mirrorcheck.Measurement

	mode := s.forced
	if mode == mirrorcheck.DialectNone {
		if typeref.HasGenericSyntax(ref) {
			return m, errors.DialectMisconfigured(ref,
				"reference carries generic syntax but no dialect was forced on the session")
		}
		mode = dialect
	}

	parsed, err := typeref.Parse(ref, mode)
	if err != nil {
		return m, err
	}

	ent, typ, err := s.resolve(parsed, ref, dialect)
	if err != nil {
		return m, err
	}

	typ, err = s.walkPath(parsed, ref, dialect, typ)
	if err != nil {
		return m, err
	}

	size := typ.Size()
	if size < 0 {
		return m, errors.New(errors.PhaseMeasure, errors.KindIncompleteType).
			Ref(ref).Dialect(dialect.String()).
			Detail("no storage size recorded for %s", typeName(typ)).Build()
	}

	m = mirrorcheck.Measurement{
		Ref:     ref,
		Dialect: dialect,
		Size:    uint64(size),
		Members: structMembers(typ),
	}
	if len(parsed.Members) == 0 {
		m.Align = ent.align
	}
	return m, nil
}

// resolve finds the entry a parsed reference names and decodes its type.
// Entries that merely re-declare the same layout in other units are
// tolerated; entries that disagree on size make the reference ambiguous.
func (s *Session) resolve(parsed typeref.Ref, ref string, dialect mirrorcheck.Dialect) (*entry, dwarf.Type, error) {
	var candidates []*entry
	if parsed.Qualified() {
		candidates = s.byQual[parsed.TypeName()]
	} else {
		candidates = s.byName[parsed.Base()]
	}

	var (
		found         *entry
		foundType     dwarf.Type
		sizes         []uint64
		seen          = make(map[int64]bool)
		sawIncomplete bool
	)
	for _, ent := range candidates {
		if !dialectAdmits(dialect, ent.group) {
			continue
		}
		if ent.decl {
			sawIncomplete = true
			continue
		}
		t, err := s.data.Type(ent.offset)
		if err != nil {
			Logger().Debug("undecodable type entry",
				zap.String("name", ent.qual),
				zap.Error(err))
			continue
		}
		if st, ok := underlying(t).(*dwarf.StructType); ok && st.Incomplete {
			sawIncomplete = true
			continue
		}
		size := t.Size()
		if size < 0 {
			continue
		}
		if !seen[size] {
			seen[size] = true
			sizes = append(sizes, uint64(size))
		}
		if found == nil {
			found = ent
			foundType = t
		}
	}

	if found == nil {
		if sawIncomplete {
			return nil, nil, errors.IncompleteType(errors.PhaseResolve, ref, dialect.String())
		}
		return nil, nil, errors.UnresolvedSymbol(errors.PhaseResolve, ref, dialect.String())
	}
	if len(sizes) > 1 {
		sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
		return nil, nil, errors.AmbiguousSymbol(errors.PhaseResolve, ref, dialect.String(), sizes)
	}
	return found, foundType, nil
}

// walkPath follows the reference's member accesses, returning the type of
// the final member.
func (s *Session) walkPath(parsed typeref.Ref, ref string, dialect mirrorcheck.Dialect, t dwarf.Type) (dwarf.Type, error) {
	for i, name := range parsed.Members {
		st, ok := underlying(t).(*dwarf.StructType)
		if !ok {
			return nil, errors.New(errors.PhaseMeasure, errors.KindNotAMember).
				Ref(ref).Dialect(dialect.String()).Path(parsed.Members[:i+1]...).
				Detail("%s is not an aggregate type", typeName(t)).Build()
		}
		f := findField(st, name)
		if f == nil {
			return nil, errors.NotAMember(errors.PhaseMeasure, parsed.Members[:i+1], parsed.TypeName(), name)
		}
		t = f.Type
	}
	return t, nil
}

// findField locates a named field, looking through anonymous struct and
// union members the way their fields are addressable in the source language.
func findField(st *dwarf.StructType, name string) *dwarf.StructField {
	for _, f := range st.Field {
		if f.Name == name {
			return f
		}
	}
	for _, f := range st.Field {
		if f.Name != "" {
			continue
		}
		if inner, ok := underlying(f.Type).(*dwarf.StructType); ok {
			if found := findField(inner, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// underlying strips typedef and qualifier layers.
func underlying(t dwarf.Type) dwarf.Type {
	for {
		switch u := t.(type) {
		case *dwarf.TypedefType:
			t = u.Type
		case *dwarf.QualType:
			t = u.Type
		default:
			return t
		}
	}
}

// structMembers lists the fields of an aggregate result, nil for scalars.
func structMembers(t dwarf.Type) []mirrorcheck.Member {
	st, ok := underlying(t).(*dwarf.StructType)
	if !ok {
		return nil
	}
	members := make([]mirrorcheck.Member, 0, len(st.Field))
	for _, f := range st.Field {
		if f == nil || f.Type == nil {
			continue
		}
		size := f.Type.Size()
		if size < 0 {
			size = 0
		}
		members = append(members, mirrorcheck.Member{
			Name:   f.Name,
			Offset: uint64(f.ByteOffset),
			Size:   uint64(size),
		})
	}
	return members
}

func typeName(t dwarf.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

// typeTags are the DIE tags that define a measurable type.
var typeTags = map[dwarf.Tag]bool{
	dwarf.TagStructType:      true,
	dwarf.TagClassType:       true,
	dwarf.TagUnionType:       true,
	dwarf.TagEnumerationType: true,
	dwarf.TagTypedef:         true,
}

// scopeTags are the DIE tags that contribute a segment to the qualified
// names of types nested beneath them.
var scopeTags = map[dwarf.Tag]bool{
	dwarf.TagNamespace:  true,
	dwarf.TagStructType: true,
	dwarf.TagClassType:  true,
	dwarf.TagUnionType:  true,
}

// index walks every debug entry once and records the named types.
func (s *Session) index() error {
	r := s.data.Reader()
	group := groupOther
	var scope []string // one element per open parent, "" for non-scope entries

	for {
		e, err := r.Next()
		if err != nil {
			return errors.Wrap(errors.PhaseIndex, errors.KindInvalidObject, err, "walk debug entries")
		}
		if e == nil {
			break
		}
		if e.Tag == 0 {
			// end of the innermost open children list
			if n := len(scope); n > 0 {
				scope = scope[:n-1]
			}
			continue
		}

		switch {
		case e.Tag == dwarf.TagCompileUnit:
			lang, _ := e.Val(dwarf.AttrLanguage).(int64)
			group = groupOf(lang)
		case typeTags[e.Tag]:
			s.record(e, group, scope)
		}

		if e.Children {
			seg := ""
			if scopeTags[e.Tag] {
				seg, _ = e.Val(dwarf.AttrName).(string)
			}
			scope = append(scope, seg)
		}
	}
	return nil
}

func (s *Session) record(e *dwarf.Entry, group langGroup, scope []string) {
	name, _ := e.Val(dwarf.AttrName).(string)
	if name == "" {
		// anonymous types are not addressable by reference
		return
	}
	decl, _ := e.Val(dwarf.AttrDeclaration).(bool)
	align, _ := e.Val(dwarf.AttrAlignment).(int64)

	segs := make([]string, 0, len(scope)+1)
	for _, seg := range scope {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	segs = append(segs, name)

	ent := &entry{
		name:   name,
		qual:   strings.Join(segs, "::"),
		offset: e.Offset,
		group:  group,
		decl:   decl,
	}
	if align > 0 {
		ent.align = uint64(align)
	}
	s.byName[name] = append(s.byName[name], ent)
	s.byQual[ent.qual] = append(s.byQual[ent.qual], ent)
}
