package f16

import (
	"testing"

	"simlink/pkg/functable"
	"simlink/pkg/transport/falcon"
)

func TestFunctions_CoverFalconFields(t *testing.T) {
	tbl := functable.New()
	if diags := tbl.RegisterAll(Functions()); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	for _, f := range falcon.DefaultFields {
		if _, ok := tbl.ByID(f.ID); !ok {
			t.Errorf("field %s (%d) has no function", f.Name, f.ID)
		}
	}
}

func TestFunctions_Formats(t *testing.T) {
	tbl := functable.New()
	tbl.RegisterAll(Functions())

	tests := []struct {
		id   int
		raw  string
		want string
	}{
		{2007, "251.6", "252"},
		{2003, "12.34", "12.3"},
		{2018, "4096", "4096"},
	}
	for _, tt := range tests {
		tbl.OnRecord(tt.id, tt.raw)
	}
	got := map[int]string{}
	for _, u := range tbl.Changed() {
		got[u.ID] = u.Value
	}
	for _, tt := range tests {
		if got[tt.id] != tt.want {
			t.Errorf("id %d: got %q, want %q", tt.id, got[tt.id], tt.want)
		}
	}
}
