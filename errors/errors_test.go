package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseMeasure,
				Kind:    KindNotAMember,
				Path:    []string{"reg", "value"},
				Ref:     "ZydisEncoderOperand",
				Dialect: "c",
				Detail:  "no member \"value\"",
			},
			contains: []string{"[measure]", "not_a_member", "reg.value", "ZydisEncoderOperand", "(c)", "no member"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindUnresolvedSymbol,
			},
			contains: []string{"[resolve]", "unresolved_symbol"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseOpen,
				Kind:   KindInvalidObject,
				Detail: "target/debug/libzydis.so",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[open]", "invalid_object", "libzydis.so", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseOpen,
		Kind:  KindInvalidObject,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseResolve,
		Kind:  KindUnresolvedSymbol,
		Ref:   "ZydisDecoder",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseResolve, Kind: KindUnresolvedSymbol}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseMeasure, Kind: KindUnresolvedSymbol}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseResolve, Kind: KindAmbiguousSymbol}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseResolve, Kind: KindUnresolvedSymbol}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestHasKind(t *testing.T) {
	inner := DialectMisconfigured("Option<usize>", "no dialect forced")
	wrapped := Wrap(PhaseCheck, KindUnresolvedSymbol, inner, "measuring binding side")

	if !HasKind(wrapped, KindDialectMisconfigured) {
		t.Error("HasKind should find wrapped kind")
	}
	if !HasKind(wrapped, KindUnresolvedSymbol) {
		t.Error("HasKind should find outer kind")
	}
	if HasKind(wrapped, KindSizeMismatch) {
		t.Error("HasKind should not find absent kind")
	}
	if HasKind(errors.New("plain"), KindSizeMismatch) {
		t.Error("HasKind should not match plain errors")
	}
	if HasKind(nil, KindSizeMismatch) {
		t.Error("HasKind should not match nil")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseMeasure, KindAmbiguousSymbol).
		Path("inner", "flags").
		Ref("zydis::Decoder").
		Dialect("rust").
		Value([]uint64{12, 16}).
		Cause(cause).
		Detail("%d entries disagree", 2).
		Build()

	if err.Phase != PhaseMeasure {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseMeasure)
	}
	if err.Kind != KindAmbiguousSymbol {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAmbiguousSymbol)
	}
	if len(err.Path) != 2 || err.Path[0] != "inner" || err.Path[1] != "flags" {
		t.Errorf("Path = %v, want [inner flags]", err.Path)
	}
	if err.Ref != "zydis::Decoder" {
		t.Errorf("Ref = %v, want 'zydis::Decoder'", err.Ref)
	}
	if err.Dialect != "rust" {
		t.Errorf("Dialect = %v, want 'rust'", err.Dialect)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "2 entries disagree" {
		t.Errorf("Detail = %v, want '2 entries disagree'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnresolvedSymbol", func(t *testing.T) {
		err := UnresolvedSymbol(PhaseResolve, "NoSuchType", "c")
		if err.Kind != KindUnresolvedSymbol {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnresolvedSymbol)
		}
		if err.Ref != "NoSuchType" || err.Dialect != "c" {
			t.Errorf("Ref=%v Dialect=%v", err.Ref, err.Dialect)
		}
	})

	t.Run("AmbiguousSymbol", func(t *testing.T) {
		err := AmbiguousSymbol(PhaseResolve, "Flags", "c", []uint64{4, 8})
		if err.Kind != KindAmbiguousSymbol {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAmbiguousSymbol)
		}
		if !containsSubstring(err.Detail, "4") || !containsSubstring(err.Detail, "8") {
			t.Errorf("Detail = %v, should contain conflicting sizes", err.Detail)
		}
	})

	t.Run("IncompleteType", func(t *testing.T) {
		err := IncompleteType(PhaseMeasure, "OpaqueHandle", "c")
		if err.Kind != KindIncompleteType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindIncompleteType)
		}
	})

	t.Run("DialectMisconfigured", func(t *testing.T) {
		err := DialectMisconfigured("Option<usize>", "reference needs a forced dialect")
		if err.Kind != KindDialectMisconfigured {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDialectMisconfigured)
		}
		if err.Phase != PhaseResolve {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseResolve)
		}
	})

	t.Run("BadReference", func(t *testing.T) {
		err := BadReference("rust", "Vec<u8>", "angle brackets are not valid here")
		if err.Kind != KindBadReference {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBadReference)
		}
		if err.Dialect != "rust" {
			t.Errorf("Dialect = %v, want 'rust'", err.Dialect)
		}
	})

	t.Run("NotAMember", func(t *testing.T) {
		err := NotAMember(PhaseMeasure, []string{"reg"}, "ZydisEncoderOperand", "regg")
		if err.Kind != KindNotAMember {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotAMember)
		}
		if !containsSubstring(err.Detail, "regg") {
			t.Errorf("Detail = %v, should name the missing member", err.Detail)
		}
	})

	t.Run("InvalidObject", func(t *testing.T) {
		cause := errors.New("bad magic")
		err := InvalidObject("a.out", cause)
		if err.Kind != KindInvalidObject {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidObject)
		}
		if !errors.Is(err, cause) {
			t.Error("InvalidObject should wrap its cause")
		}
	})

	t.Run("InvalidManifest", func(t *testing.T) {
		err := InvalidManifest("pairs.yaml", errors.New("yaml: line 3"))
		if err.Kind != KindInvalidManifest {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidManifest)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseIndex, "DWARF expression member locations")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}

func TestChecksFailedError(t *testing.T) {
	t.Run("single failure", func(t *testing.T) {
		err := NewChecksFailedError([]PairFailure{
			{Group: "decoder", Binding: "zydis::Decoder", Native: "ZydisDecoder", Reason: "is 120 bytes, but expected 128", Kind: KindSizeMismatch},
		})
		if len(err.Failures) != 1 {
			t.Errorf("expected 1 failure, got %d", len(err.Failures))
		}
		msg := err.Error()
		if !containsSubstring(msg, "1 mirror pair(s) failed") {
			t.Errorf("error should contain count, got: %s", msg)
		}
		if !containsSubstring(msg, "decoder") {
			t.Errorf("error should contain group label")
		}
	})

	t.Run("failures grouped by kind", func(t *testing.T) {
		err := NewChecksFailedError([]PairFailure{
			{Group: "decoder", Reason: "is 120 bytes, but expected 128", Kind: KindSizeMismatch},
			{Group: "formatter", Reason: "no debug entry matches", Kind: KindUnresolvedSymbol},
			{Group: "encoder", Reason: "is 48 bytes, but expected 40", Kind: KindSizeMismatch},
		})
		msg := err.Error()
		// Verify grouping by kind
		if !containsSubstring(msg, "size_mismatch:") {
			t.Errorf("error should group by kind")
		}
		if !containsSubstring(msg, "unresolved_symbol:") {
			t.Errorf("error should contain second kind")
		}
		if !containsSubstring(msg, "3 mirror pair(s)") {
			t.Errorf("error should contain total count")
		}
	})

	t.Run("ungrouped pair labeled by binding ref", func(t *testing.T) {
		err := NewChecksFailedError([]PairFailure{
			{Binding: "zydis::Decoder", Native: "ZydisDecoder", Reason: "sizes differ", Kind: KindSizeMismatch},
		})
		if !containsSubstring(err.Error(), "zydis::Decoder") {
			t.Errorf("label should fall back to binding ref, got: %s", err.Error())
		}
	})

	t.Run("empty failures", func(t *testing.T) {
		err := NewChecksFailedError(nil)
		msg := err.Error()
		if !containsSubstring(msg, "no failures recorded") {
			t.Errorf("empty error should have specific message, got: %s", msg)
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewChecksFailedError([]PairFailure{{Group: "a", Kind: KindSizeMismatch}})
		if !errors.Is(err, &ChecksFailedError{}) {
			t.Error("errors.Is should match ChecksFailedError")
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
