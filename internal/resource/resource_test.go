package resource

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
)

func quiet() *diagnostics.Collector {
	return diagnostics.NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func write(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

const currentDescriptor = `
catalog_category: "04 Basic Hydrogeology"
item_id: TO_BE_FILLED_BY_COURSE_MANAGER
topic: Hydrogeological Concepts & Aquifer Types
topic_page_id: 040100_en
title: Darcy Flow Simulator
resource_type: Streamlit app
url: https://example.org/darcy
date_released: TO_BE_FILLED_BY_COURSE_MANAGER
description_short: >
  Explore Darcy's law
  interactively.
keywords: [darcy, flow, " "]
multipage_app: true
num_pages: "3"
interactive_plots: yes
num_interactive_plots: 2
fit_for:
  - Lecture
authors:
  - name: J. Doe
    affiliation: ""
  - name: "  "
    affiliation: Nowhere
  - just a string
  - name: A. Smith
    affiliation: TU Dresden
references: Darcy, H. (1856)
figures:
  - id: 1
    original_filename: Screen.PNG
    type: screenshot
    caption: Main view
    is_cover: false
  - id: 2
    original_filename: plot.jpg
    is_cover: true
  - id: 3
    original_filename: other.png
    is_cover: true
`

const legacyDescriptor = `
topic: Basic Hydrogeology
title: Old Tool
author: R. Legacy
item_id: old-tool-1
keywords: single
`

func TestParseCurrentSchema(t *testing.T) {
	d, err := Parse("x.yaml", "darcy_jdoe_20250101_120000", []byte(currentDescriptor))
	require.NoError(t, err)

	require.Equal(t, "040100_en", d.Key())
	require.Equal(t, "darcy-flow-simulator", d.ResourceID)
	require.Equal(t, "Explore Darcy's law interactively.", d.Description)
	require.Equal(t, []string{"darcy", "flow"}, d.Keywords)
	require.Equal(t, []string{"Lecture"}, d.FitFor)
	require.Equal(t, []string{"Darcy, H. (1856)"}, d.References)
	require.Equal(t, []Author{
		{Name: "J. Doe", Affiliation: Placeholder},
		{Name: "A. Smith", Affiliation: "TU Dresden"},
	}, d.Authors)
	require.True(t, d.IsApp())
	require.False(t, d.HasReleaseDate())
	require.Equal(t, AppDetails{MultipageApp: true, NumPages: 3, InteractivePlots: true, NumInteractivePlots: 2}, d.App)
	require.Equal(t, "04 Basic Hydrogeology", d.CatalogCategory)
	require.Len(t, d.Figures, 3)
}

func TestParseLegacySchema(t *testing.T) {
	d, err := Parse("old.yaml", "old", []byte(legacyDescriptor))
	require.NoError(t, err)
	require.Equal(t, "Basic Hydrogeology", d.Key())
	require.Equal(t, "old-tool-1", d.ResourceID)
	require.Equal(t, []Author{{Name: "R. Legacy", Affiliation: LegacyAffiliation}}, d.Authors)
	require.Equal(t, []string{"single"}, d.Keywords)
	require.Empty(t, d.References)
}

func TestParseScalarListsFallBack(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		authors []Author
	}{
		{
			name:    "blank authors uses legacy author",
			yaml:    "topic: Aquifer Types\ntitle: Old Sheet\nauthors: \"\"\nauthor: Jane Roe\n",
			authors: []Author{{Name: "Jane Roe", Affiliation: LegacyAffiliation}},
		},
		{
			name:    "scalar figures means no figures",
			yaml:    "topic: Aquifer Types\ntitle: Old Sheet\nfigures: \"\"\nauthors:\n  - name: A. Author\n",
			authors: []Author{{Name: "A. Author", Affiliation: Placeholder}},
		},
		{
			name:    "mapping authors uses legacy author",
			yaml:    "topic: Aquifer Types\ntitle: Old Sheet\nauthors: {name: X}\nauthor: Jane Roe\nauthor_institute: GEUS\n",
			authors: []Author{{Name: "Jane Roe", Affiliation: "GEUS"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse("x.yaml", "x", []byte(tt.yaml))
			require.NoError(t, err)
			require.Equal(t, tt.authors, d.Authors)
			require.Empty(t, d.Figures)
			require.Equal(t, "Aquifer Types", d.Key())
		})
	}
}

func TestParseSkipsNonMappingFigures(t *testing.T) {
	d, err := Parse("x.yaml", "x", []byte("topic: T\nfigures:\n  - cover.png\n  - id: 2\n    original_filename: a.PNG\n"))
	require.NoError(t, err)
	require.Len(t, d.Figures, 1)
	require.Equal(t, 2, d.Figures[0].ID)
}

func TestParseTitleFallsBackToStem(t *testing.T) {
	d, err := Parse("s.yaml", "my_stem", []byte("topic: T\n"))
	require.NoError(t, err)
	require.Equal(t, "my_stem", d.Title)
	require.Equal(t, "my-stem", d.ResourceID)
	require.Empty(t, d.Authors)
}

func TestCoverSelection(t *testing.T) {
	d := &Descriptor{Figures: []Figure{{ID: 1}, {ID: 2, IsCover: true}, {ID: 3, IsCover: true}}}
	cover, ok := d.Cover()
	require.True(t, ok)
	require.Equal(t, 2, cover.ID)

	var ids []int
	for _, f := range d.OtherFigures() {
		ids = append(ids, f.ID)
	}
	require.Equal(t, []int{1, 3}, ids)

	d = &Descriptor{Figures: []Figure{{ID: 5}, {ID: 6}}}
	cover, _ = d.Cover()
	require.Equal(t, 5, cover.ID)
	require.Len(t, d.OtherFigures(), 1)

	_, ok = (&Descriptor{}).Cover()
	require.False(t, ok)
	require.Nil(t, (&Descriptor{}).OtherFigures())
}

func TestFigureURL(t *testing.T) {
	fig := Figure{ID: 2, OriginalFilename: "Plot.JPG"}
	require.Equal(t, "/assets/resources/stem/stem_fig2.jpg", FigureURL("/assets/resources/", "stem", fig))
	require.Equal(t, "", FigureURL("/assets/resources", "", fig))
	require.Equal(t, "", FigureURL("/assets/resources", "stem", Figure{ID: 0, OriginalFilename: "a.png"}))
	require.Equal(t, "", FigureURL("/assets/resources", "stem", Figure{ID: 1, OriginalFilename: "noext"}))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b/darcy.yaml", currentDescriptor)
	write(t, dir, "a/old.yml", legacyDescriptor)
	write(t, dir, "a/zz_second.yaml", "topic_page_id: 040100_en\ntitle: Another\n")
	write(t, dir, "broken.yaml", "title: [unclosed\n")
	write(t, dir, "nokey.yaml", "title: Orphan\n")
	write(t, dir, "notes.txt", "ignored")

	diags := quiet()
	ix, err := Load(dir, diags)
	require.NoError(t, err)

	require.Equal(t, 3, ix.Len())
	require.Equal(t, []string{"Basic Hydrogeology", "040100_en"}, ix.Keys())
	got := ix.Lookup("040100_en")
	require.Len(t, got, 2)
	require.Equal(t, "Another", got[0].Title)
	require.Equal(t, "Darcy Flow Simulator", got[1].Title)
	require.Nil(t, ix.Lookup(""))

	require.Len(t, diags.OfKind(diagnostics.KindDescriptorParse), 1)
	require.Len(t, diags.OfKind(diagnostics.KindDescriptorNoKey), 1)

	again, err := Load(dir, quiet())
	require.NoError(t, err)
	require.Equal(t, ix, again)
}

func TestLoadMissingDirectory(t *testing.T) {
	ix, err := Load(filepath.Join(t.TempDir(), "missing"), quiet())
	require.NoError(t, err)
	require.Equal(t, 0, ix.Len())
}
