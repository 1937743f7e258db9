package hierarchy

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "00"},
		{"   ", "00"},
		{"0", "00"},
		{"5", "05"},
		{" 12 ", "12"},
		{"123", "123"},
		{"4.0", "04"},
		{"4.5", "00"},
		{"abc", "00"},
		{"-3", "00"},
		{"NaN", "00"},
	}
	for _, tt := range tests {
		if got := FormatCode(tt.in); got != tt.want {
			t.Errorf("FormatCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FormatInt(7) != "07" || FormatInt(-1) != "00" {
		t.Error("FormatInt mismatch")
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		levels Levels
		want   []string
	}{
		{
			name:   "category only",
			levels: NewLevels("4", "Basic Hydrogeology", "", "", "", ""),
			want:   []string{"04_basic_hydrogeology"},
		},
		{
			name:   "with subcategory",
			levels: NewLevels("4", "Basic Hydrogeology", "1", "Hydrogeological Concepts & Aquifer Types", "", ""),
			want:   []string{"04_basic_hydrogeology", "01_hydrogeological_concepts_aquifer_types"},
		},
		{
			name:   "all three levels",
			levels: NewLevels("5", "Applied", "2", "Wells", "3", "Pumping Tests"),
			want:   []string{"05_applied", "02_wells", "03_pumping_tests"},
		},
		{
			name:   "sub-sub without subcategory is dropped",
			levels: NewLevels("5", "Applied", "0", "", "3", "Pumping Tests"),
			want:   []string{"05_applied"},
		},
		{
			name:   "empty name",
			levels: NewLevels("4", "", "", "", "", ""),
			want:   []string{"04_unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.levels)
			require.NoError(t, err)
			require.Equal(t, tt.want, p.Segments())
		})
	}
}

func TestBuild_NoCategory(t *testing.T) {
	for _, code := range []string{"", "0", "x"} {
		_, err := Build(NewLevels(code, "Name", "1", "Sub", "", ""))
		require.ErrorIs(t, err, ErrNoCategory, "code %q", code)
	}
}

func TestPathLocations(t *testing.T) {
	levels := NewLevels("4", "Basic Hydrogeology", "1", "Aquifers", "", "")
	p, err := Build(levels)
	require.NoError(t, err)

	root := filepath.Join("contents")
	require.Equal(t, filepath.Join("contents", "04_basic_hydrogeology", "01_aquifers"), p.Dir(root))
	require.Equal(t, filepath.Join("contents", "04_basic_hydrogeology", "01_aquifers", "01_aquifers.md"), p.File(root))
	require.Equal(t, []string{
		filepath.Join("contents", "04_basic_hydrogeology"),
		filepath.Join("contents", "04_basic_hydrogeology", "01_aquifers"),
	}, p.Ancestors(root))
	require.Equal(t, "04_basic_hydrogeology/01_aquifers", p.String())
}

func TestBuildIsDeterministicAndConsistent(t *testing.T) {
	levels := NewLevels("5", "Applied Hydrogeology", "2", "Groundwater Modelling", "1", "Théis Solutions")
	a, err := Build(levels)
	require.NoError(t, err)
	b, err := Build(levels)
	require.NoError(t, err)
	require.Equal(t, a.File("contents"), b.File("contents"))

	dir := a.Dir("contents")
	require.Equal(t, dir, filepath.Dir(a.File("contents")))
	for _, anc := range a.Ancestors("contents") {
		require.True(t, strings.HasPrefix(dir, anc))
	}
}

func TestZeroPath(t *testing.T) {
	var p Path
	require.True(t, p.IsZero())
	require.Equal(t, "", p.File("contents"))
}
