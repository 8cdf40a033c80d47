package symtab

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mirrorcheck/mirrorcheck/errors"
	"github.com/mirrorcheck/mirrorcheck/wasmobj"
)

// Open loads a compiled object's debug information and indexes it into a
// session. ELF, Mach-O, PE, and wasm core modules are recognized; anything
// else is an invalid_object error.
func Open(path string) (*Session, error) {
	d, closer, err := openDWARF(path)
	if err != nil {
		return nil, err
	}
	s, err := New(d)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	s.closer = closer
	s.source = path
	Logger().Debug("session opened",
		zap.String("path", path),
		zap.Int("type_names", s.TypeCount()))
	return s, nil
}

// openDWARF tries each container format in turn. The three native formats
// identify themselves from their file headers; wasm is probed last from the
// raw bytes.
func openDWARF(path string) (*dwarf.Data, io.Closer, error) {
	if f, err := elf.Open(path); err == nil {
		d, err := f.DWARF()
		if err != nil {
			f.Close()
			return nil, nil, errors.InvalidObject(path, err)
		}
		return d, f, nil
	}
	if f, err := macho.Open(path); err == nil {
		d, err := f.DWARF()
		if err != nil {
			f.Close()
			return nil, nil, errors.InvalidObject(path, err)
		}
		return d, f, nil
	}
	if f, err := pe.Open(path); err == nil {
		d, err := f.DWARF()
		if err != nil {
			f.Close()
			return nil, nil, errors.InvalidObject(path, err)
		}
		return d, f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.InvalidObject(path, err)
	}
	if wasmobj.IsModule(data) || wasmobj.IsComponent(data) {
		d, err := wasmobj.ExtractDWARF(data)
		if err != nil {
			return nil, nil, errors.InvalidObject(path, err)
		}
		return d, nil, nil
	}
	return nil, nil, errors.InvalidObject(path, fmt.Errorf("unrecognized object format"))
}
