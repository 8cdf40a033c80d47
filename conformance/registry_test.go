package conformance

import (
	"reflect"
	"testing"
)

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry().
		AddGroup("decoder", "zydis::decoder::Decoder", "ZydisDecoder").
		Add("zydis::ffi::zycore::ZyanVector", "ZyanVector").
		AddPair(Pair{Group: "encoder", Binding: "zydis::ffi::encoder::EncoderRequest", Native: "ZydisEncoderRequest"})

	want := []Pair{
		{Group: "decoder", Binding: "zydis::decoder::Decoder", Native: "ZydisDecoder"},
		{Binding: "zydis::ffi::zycore::ZyanVector", Native: "ZyanVector"},
		{Group: "encoder", Binding: "zydis::ffi::encoder::EncoderRequest", Native: "ZydisEncoderRequest"},
	}
	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}
	if got := reg.Pairs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Pairs = %+v, want %+v", got, want)
	}
}

func TestRegistryPairsIsACopy(t *testing.T) {
	reg := NewRegistry().Add("bind::A", "NativeA")
	pairs := reg.Pairs()
	pairs[0].Binding = "mutated"

	if reg.Pairs()[0].Binding != "bind::A" {
		t.Error("mutating the returned slice must not reach the registry")
	}
}
