package conformance

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/errors"
)

// Manifest is a registry externalized as YAML, semantically identical to
// building one in process:
//
//	dialects:
//	  binding: rust
//	  native: c
//	strict: false
//	pairs:
//	  - group: decoder
//	    binding: zydis::ffi::decoder::AccessedFlags<zydis::enums::CpuFlag>
//	    native: ZydisAccessedFlags
//	  - group: encoder
//	    binding: zydis::ffi::encoder::OperandRegister
//	    native: ZydisEncoderOperand.reg
//
// Dialects default to rust for the binding side and c for the native side
// when the block is omitted.
type Manifest struct {
	BindingDialect mirrorcheck.Dialect
	NativeDialect  mirrorcheck.Dialect
	Strict         bool
	Pairs          []Pair
}

// Registry builds the registry the manifest describes, pairs in file order.
func (m *Manifest) Registry() *Registry {
	r := NewRegistry()
	for _, p := range m.Pairs {
		r.AddPair(p)
	}
	return r
}

// Driver configures a driver over the given oracle with the manifest's
// dialects and strictness.
func (m *Manifest) Driver(oracle mirrorcheck.Oracle) *Driver {
	return NewDriver(oracle).
		WithDialects(m.BindingDialect, m.NativeDialect).
		WithStrict(m.Strict)
}

// manifestDoc is the raw YAML shape; validation happens after decoding.
type manifestDoc struct {
	Dialects struct {
		Binding string `yaml:"binding"`
		Native  string `yaml:"native"`
	} `yaml:"dialects"`
	Strict bool   `yaml:"strict"`
	Pairs  []Pair `yaml:"pairs"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.InvalidManifest(path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.InvalidManifest(path, err)
	}
	return m, nil
}

// ParseManifest parses manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
			Cause(err).Detail("parse yaml").Build()
	}

	m := &Manifest{
		Strict: doc.Strict,
		Pairs:  doc.Pairs,
	}
	var err error
	if m.BindingDialect, err = manifestDialect(doc.Dialects.Binding, mirrorcheck.DialectRust); err != nil {
		return nil, err
	}
	if m.NativeDialect, err = manifestDialect(doc.Dialects.Native, mirrorcheck.DialectC); err != nil {
		return nil, err
	}

	if len(m.Pairs) == 0 {
		return nil, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
			Detail("no pairs declared").Build()
	}
	for i, p := range m.Pairs {
		if p.Binding == "" || p.Native == "" {
			return nil, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
				Detail("pair %d needs both binding and native references", i).Build()
		}
	}
	return m, nil
}

func manifestDialect(name string, fallback mirrorcheck.Dialect) (mirrorcheck.Dialect, error) {
	if name == "" {
		return fallback, nil
	}
	d, ok := mirrorcheck.ParseDialect(name)
	if !ok {
		return mirrorcheck.DialectNone, errors.New(errors.PhaseManifest, errors.KindInvalidManifest).
			Detail("unknown dialect %q", name).Build()
	}
	return d, nil
}
