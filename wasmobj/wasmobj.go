// Package wasmobj extracts debug information from WebAssembly binaries.
//
// Toolchains targeting wasm keep DWARF where native toolchains keep object
// sections: in custom sections named after their native counterparts
// (".debug_info", ".debug_abbrev", and so on). This package locates those
// sections in a core module and assembles them into a dwarf.Data ready for
// type indexing.
//
// Component binaries use a layered container around core modules and are
// rejected; unwrap the embedded module before extraction.
package wasmobj

import (
	"encoding/binary"
	"errors"
)

// Core module header: magic "\0asm" followed by a little-endian u32 version.
const (
	headerSize  = 8
	coreVersion = 1
)

// Extraction errors.
var (
	ErrInvalidMagic = errors.New("invalid wasm magic number")
	ErrComponent    = errors.New("component binary, not a core module")
	ErrNoDebugInfo  = errors.New("no .debug_info custom section present")
)

func hasMagic(data []byte) bool {
	return len(data) >= headerSize &&
		data[0] == 0x00 && data[1] == 0x61 && data[2] == 0x73 && data[3] == 0x6D
}

// IsModule reports whether data begins like a core wasm module.
func IsModule(data []byte) bool {
	return hasMagic(data) && binary.LittleEndian.Uint32(data[4:8]) == coreVersion
}

// IsComponent reports whether data begins like a component binary.
func IsComponent(data []byte) bool {
	return hasMagic(data) && binary.LittleEndian.Uint32(data[4:8]) > coreVersion
}
