package wasmobj

import (
	"debug/dwarf"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mirrorcheck/mirrorcheck/wasmobj/internal/binary"
)

const sectionCustom = 0

// dwarf.New takes these eight sections positionally. Anything else found
// (.debug_str_offsets, .debug_addr, ...) is attached afterwards.
var coreSections = map[string]int{
	".debug_abbrev":   0,
	".debug_aranges":  1,
	".debug_frame":    2,
	".debug_info":     3,
	".debug_line":     4,
	".debug_pubnames": 5,
	".debug_ranges":   6,
	".debug_str":      7,
}

type section struct {
	name string
	data []byte
}

// ExtractDWARF collects the debug custom sections of a core wasm module and
// assembles them into a dwarf.Data.
func ExtractDWARF(data []byte) (*dwarf.Data, error) {
	if !IsModule(data) {
		if IsComponent(data) {
			return nil, ErrComponent
		}
		return nil, ErrInvalidMagic
	}

	secs, err := debugSections(data)
	if err != nil {
		return nil, err
	}

	var core [8][]byte
	var extras []section
	seen := make(map[string]bool)
	for _, s := range secs {
		if seen[s.name] {
			// first occurrence wins, as in every consumer of these sections
			continue
		}
		seen[s.name] = true
		if idx, ok := coreSections[s.name]; ok {
			core[idx] = s.data
		} else {
			extras = append(extras, s)
		}
	}
	if core[3] == nil {
		return nil, ErrNoDebugInfo
	}

	d, err := dwarf.New(core[0], core[1], core[2], core[3], core[4], core[5], core[6], core[7])
	if err != nil {
		return nil, fmt.Errorf("assemble debug info: %w", err)
	}
	for _, s := range extras {
		if err := d.AddSection(s.name, s.data); err != nil {
			return nil, fmt.Errorf("attach %s: %w", s.name, err)
		}
	}
	return d, nil
}

// debugSections walks the module's sections and returns the ".debug_"
// prefixed custom sections in order of appearance.
func debugSections(data []byte) ([]section, error) {
	r := binary.NewReader(data)
	if _, err := r.ReadBytes(headerSize); err != nil {
		return nil, err
	}

	var secs []section
	for {
		id, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("section id: %w", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("section size: %w", err)
		}
		if int(size) > r.Remaining() {
			return nil, fmt.Errorf("section %d truncated: %d bytes declared, %d left", id, size, r.Remaining())
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("section data: %w", err)
		}
		if id != sectionCustom {
			continue
		}

		sr := binary.NewReader(body)
		name, err := sr.ReadName()
		if err != nil {
			return nil, fmt.Errorf("custom section name: %w", err)
		}
		if !strings.HasPrefix(name, ".debug_") {
			continue
		}
		rest, err := sr.ReadRemaining()
		if err != nil {
			return nil, fmt.Errorf("custom section %s: %w", name, err)
		}
		secs = append(secs, section{name: name, data: rest})
	}
	return secs, nil
}
