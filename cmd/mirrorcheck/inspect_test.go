package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mirrorcheck/mirrorcheck"
)

func TestWriteMeasurementJSON(t *testing.T) {
	m := mirrorcheck.Measurement{
		Ref:     "ZydisEncoderOperand",
		Dialect: mirrorcheck.DialectC,
		Size:    48,
		Align:   8,
		Members: []mirrorcheck.Member{
			{Name: "reg", Offset: 16, Size: 8},
			{Name: "", Offset: 24, Size: 16},
		},
	}

	var out strings.Builder
	if err := writeMeasurementJSON(&out, m); err != nil {
		t.Fatalf("writeMeasurementJSON failed: %v", err)
	}

	var doc struct {
		Ref     string `json:"ref"`
		Dialect string `json:"dialect"`
		Size    uint64 `json:"size"`
		Align   uint64 `json:"align"`
		Members []struct {
			Name   string `json:"name"`
			Offset uint64 `json:"offset"`
			Size   uint64 `json:"size"`
		} `json:"members"`
	}
	if err := json.Unmarshal([]byte(out.String()), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}

	if doc.Ref != "ZydisEncoderOperand" || doc.Dialect != "c" {
		t.Errorf("header = %q (%q)", doc.Ref, doc.Dialect)
	}
	if doc.Size != 48 || doc.Align != 8 {
		t.Errorf("size/align = %d/%d", doc.Size, doc.Align)
	}
	if len(doc.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(doc.Members))
	}
	if doc.Members[0].Name != "reg" || doc.Members[0].Offset != 16 || doc.Members[0].Size != 8 {
		t.Errorf("first member = %+v", doc.Members[0])
	}
	if doc.Members[1].Name != "" {
		t.Errorf("anonymous member name = %q", doc.Members[1].Name)
	}
}

func TestWriteMeasurementJSONOmitsEmpty(t *testing.T) {
	m := mirrorcheck.Measurement{Ref: "ZydisStatus", Dialect: mirrorcheck.DialectC, Size: 4}

	var out strings.Builder
	if err := writeMeasurementJSON(&out, m); err != nil {
		t.Fatalf("writeMeasurementJSON failed: %v", err)
	}
	for _, absent := range []string{"align", "members"} {
		if strings.Contains(out.String(), absent) {
			t.Errorf("%q should be omitted:\n%s", absent, out.String())
		}
	}
}
