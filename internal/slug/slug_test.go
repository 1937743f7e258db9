package slug

import "testing"

func TestFolder(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Évapotranspiration  ", "evapotranspiration"},
		{"Hydrogeological Concepts & Aquifer Types", "hydrogeological_concepts_aquifer_types"},
		{"Basic Hydrogeology", "basic_hydrogeology"},
		{"A/B C", "ab_c"},
		{"Ground-water  -  Flow", "ground_water_flow"},
		{"snake_case name", "snake_case_name"},
		{"__edge__", "edge"},
		{"Müller Straße", "muller_strae"},
		{"", "unknown"},
		{"   ", "unknown"},
		{"日本語", "unknown"},
		{"!!!", "unknown"},
	}
	for _, tt := range tests {
		if got := Folder(tt.in); got != tt.want {
			t.Errorf("Folder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Darcy Flow Simulator", "darcy-flow-simulator"},
		{"A/B C", "a-b-c"},
		{"  --Café au lait--  ", "cafe-au-lait"},
		{"J. Doe", "j-doe"},
		{"", "unknown"},
		{"???", "unknown"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourceFallback(t *testing.T) {
	if got := Resource(""); got != "resource" {
		t.Errorf("Resource(\"\") = %q", got)
	}
	if got := Resource("Darcy Flow Simulator"); got != "darcy-flow-simulator" {
		t.Errorf("Resource = %q", got)
	}
}

func TestPure(t *testing.T) {
	in := "Théis Well Function"
	first := Folder(in)
	for range 3 {
		if got := Folder(in); got != first {
			t.Fatalf("Folder not stable: %q vs %q", got, first)
		}
	}
}
