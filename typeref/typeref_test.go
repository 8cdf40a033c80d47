package typeref

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mirrorcheck/mirrorcheck"
)

func TestParseC(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		segments []string
		members  []string
	}{
		{"plain_name", "ZydisDecoder", []string{"ZydisDecoder"}, nil},
		{"dotted_member", "ZydisEncoderOperand.reg", []string{"ZydisEncoderOperand"}, []string{"reg"}},
		{"arrow_member", "ZydisEncoderOperand->reg", []string{"ZydisEncoderOperand"}, []string{"reg"}},
		{"nested_members", "ZydisDecodedInstruction.raw.modrm", []string{"ZydisDecodedInstruction"}, []string{"raw", "modrm"}},
		{"struct_keyword", "struct ZydisDecoder_", []string{"ZydisDecoder_"}, nil},
		{"union_keyword", "union ZydisEncoderOperandUnion.mem", []string{"ZydisEncoderOperandUnion"}, []string{"mem"}},
		{"enum_keyword", "enum ZydisMachineMode_", []string{"ZydisMachineMode_"}, nil},
		{"surrounding_space", "  ZydisDecoder  ", []string{"ZydisDecoder"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.in, mirrorcheck.DialectC)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(r.Segments, tt.segments) {
				t.Errorf("Segments = %v, want %v", r.Segments, tt.segments)
			}
			if !reflect.DeepEqual(r.Members, tt.members) {
				t.Errorf("Members = %v, want %v", r.Members, tt.members)
			}
		})
	}
}

func TestParseCErrors(t *testing.T) {
	tests := []struct {
		name, in, wantErr string
	}{
		{"empty", "", "empty reference"},
		{"blank", "   ", "empty reference"},
		{"scope_operator", "zydis::Decoder", "scope operator"},
		{"angle_brackets", "Option<usize>", "comparison operators"},
		{"cast_expression", "((ZydisEncoderOperand*)(0))->reg", "invalid identifier"},
		{"trailing_dot", "ZydisDecoder.", "invalid identifier"},
		{"double_dot", "A..b", "invalid identifier"},
		{"leading_digit", "9decoder", "invalid identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in, mirrorcheck.DialectC)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseRust(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		segments []string
		members  []string
	}{
		{"bare_name", "Decoder", []string{"Decoder"}, nil},
		{"qualified_path", "zydis::ffi::decoder::Decoder", []string{"zydis", "ffi", "decoder", "Decoder"}, nil},
		{"leading_global", "::zydis::Decoder", []string{"zydis", "Decoder"}, nil},
		{"member_access", "zydis::ffi::EncoderOperand.reg", []string{"zydis", "ffi", "EncoderOperand"}, []string{"reg"}},
		{"nested_members", "zydis::Instruction.raw.prefixes", []string{"zydis", "Instruction"}, []string{"raw", "prefixes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.in, mirrorcheck.DialectRust)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(r.Segments, tt.segments) {
				t.Errorf("Segments = %v, want %v", r.Segments, tt.segments)
			}
			if !reflect.DeepEqual(r.Members, tt.members) {
				t.Errorf("Members = %v, want %v", r.Members, tt.members)
			}
		})
	}
}

func TestParseRustErrors(t *testing.T) {
	tests := []struct {
		name, in, wantErr string
	}{
		{"generic_name", "Option<usize>", "operators"},
		{"qualified_generic", "core::option::Option<usize>", "operators"},
		{"arrow_access", "Decoder->inner", "operators"},
		{"single_colon", "zydis:Decoder", "single ':'"},
		{"empty_segment", "zydis::::Decoder", "empty path segment"},
		{"trailing_scope", "zydis::", "empty path segment"},
		{"member_then_scope", "a.b::c", "scope operator after member access"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in, mirrorcheck.DialectRust)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCxx(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		segments []string
		members  []string
	}{
		{"flat_name", "ZydisDecoder", []string{"ZydisDecoder"}, nil},
		{"qualified_path", "zydis::ffi::Decoder", []string{"zydis", "ffi", "Decoder"}, nil},
		{"generic_name", "Option<usize>", []string{"Option<usize>"}, nil},
		{"qualified_generic", "core::option::Option<usize>", []string{"core", "option", "Option<usize>"}, nil},
		{"nested_generics", "std::vector<std::pair<int, int> >", []string{"std", "vector<std::pair<int, int> >"}, nil},
		{"generic_mid_path", "alloc::vec::Vec<u8>::RawParts", []string{"alloc", "vec", "Vec<u8>", "RawParts"}, nil},
		{"member_after_generic", "Wrapper<u8>.inner", []string{"Wrapper<u8>"}, []string{"inner"}},
		{"arrow_member", "ZydisEncoderOperand->reg", []string{"ZydisEncoderOperand"}, []string{"reg"}},
		{"dotted_member", "ZydisEncoderOperand.reg", []string{"ZydisEncoderOperand"}, []string{"reg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.in, mirrorcheck.DialectCxx)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(r.Segments, tt.segments) {
				t.Errorf("Segments = %v, want %v", r.Segments, tt.segments)
			}
			if !reflect.DeepEqual(r.Members, tt.members) {
				t.Errorf("Members = %v, want %v", r.Members, tt.members)
			}
		})
	}
}

func TestParseCxxErrors(t *testing.T) {
	tests := []struct {
		name, in, wantErr string
	}{
		{"unclosed_angle", "Vec<u8", "unbalanced angle brackets"},
		{"stray_close", "Vec>u8<", "unbalanced angle brackets"},
		{"leading_digit", "9path", "does not start with an identifier"},
		{"space_outside_generic", "zydis ::Decoder", "invalid character"},
		{"empty_member", "Decoder.", "invalid member"},
		{"generic_member", "Decoder.get<u8>", "invalid member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in, mirrorcheck.DialectCxx)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseNoDialect(t *testing.T) {
	_, err := Parse("ZydisDecoder", mirrorcheck.DialectNone)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no dialect selected") {
		t.Errorf("error %q missing dialect hint", err)
	}
}

func TestRefAccessors(t *testing.T) {
	r, err := Parse("zydis::ffi::EncoderOperand.reg.value", mirrorcheck.DialectCxx)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := r.TypeName(); got != "zydis::ffi::EncoderOperand" {
		t.Errorf("TypeName = %q", got)
	}
	if got := r.Base(); got != "EncoderOperand" {
		t.Errorf("Base = %q", got)
	}
	if !r.Qualified() {
		t.Error("Qualified should be true for a namespaced path")
	}
	if got := r.String(); got != "zydis::ffi::EncoderOperand.reg.value" {
		t.Errorf("String = %q", got)
	}

	flat, err := Parse("ZydisDecoder", mirrorcheck.DialectC)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if flat.Qualified() {
		t.Error("Qualified should be false for a flat name")
	}
	if got := flat.String(); got != "ZydisDecoder" {
		t.Errorf("String = %q", got)
	}
}

func TestHasGenericSyntax(t *testing.T) {
	if !HasGenericSyntax("Option<usize>") {
		t.Error("angle brackets should be detected")
	}
	if !HasGenericSyntax("Vec<u8") {
		t.Error("a lone bracket should be detected")
	}
	if !HasGenericSyntax(">reg") {
		t.Error("a closing bracket with no arrow should be detected")
	}
	if HasGenericSyntax("zydis::ffi::Decoder.inner") {
		t.Error("plain path should not be detected")
	}
	if HasGenericSyntax("ZydisEncoderOperand->reg") {
		t.Error("arrow access is not generic syntax")
	}
}
