package pages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

const csvSheet = `page_id,parent_id,title,layout,nav_order,lang_code,has_children,category,cat_code,subcategory,sub_cat_code,subsubcategory,sub_sub_cat_code
040000_en,,Basic Hydrogeology,,4,,yes,Basic Hydrogeology,4,,,,
040100_en,040000_en,Hydrogeological Concepts & Aquifer Types,,1,en,no,Basic Hydrogeology,4,Hydrogeological Concepts & Aquifer Types,1,,
,,,,,,,,,,,,
040200_en,040000_en,Short row
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadCSV(t *testing.T) {
	tbl, err := Load(writeFile(t, "pages.csv", csvSheet), Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)

	r := tbl.Rows[1]
	require.Equal(t, 3, r.Line)
	require.Equal(t, "040100_en", r.PageID)
	require.Equal(t, "040000_en", r.ParentID)
	require.Equal(t, "1", r.NavOrder)
	require.False(t, r.Children())
	require.True(t, tbl.Rows[0].Children())
	require.Equal(t, "04", r.Levels().Category.Code)
	require.Equal(t, "01", r.Levels().Subcategory.Code)
	require.Equal(t, "00", r.Levels().SubSubcategory.Code)

	short := tbl.Rows[2]
	require.Equal(t, "Short row", short.Title)
	require.Equal(t, "", short.CatCode)

	title, ok := tbl.Title("040000_en")
	require.True(t, ok)
	require.Equal(t, "Basic Hydrogeology", title)
	require.Equal(t, "040000_en", tbl.Parent("040100_en"))
	_, ok = tbl.Title("missing")
	require.False(t, ok)
}

func TestLoadDisplayOrderFallback(t *testing.T) {
	body := "page_id,title,display_order\np1,One,7\n"
	tbl, err := Load(writeFile(t, "pages.csv", body), Options{Format: config.SheetFormatCSV})
	require.NoError(t, err)
	n, ok := tbl.Rows[0].Nav()
	require.True(t, ok)
	require.Equal(t, 7, n)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"page_id", "title", "nav_order", "cat_code", "category"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"010000_en", "Introduction", 1, 1, "Introduction"}))
	p := filepath.Join(t.TempDir(), "pages.xlsx")
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	tbl, err := Load(p, Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	require.Equal(t, "010000_en", tbl.Rows[0].PageID)
	require.Equal(t, "01", tbl.Rows[0].Levels().Category.Code)
	n, ok := tbl.Rows[0].Nav()
	require.True(t, ok)
	require.Equal(t, 1, n)
}

func TestLoadFailuresAreFatalInputErrors(t *testing.T) {
	cases := map[string]string{
		"missing file":   filepath.Join(t.TempDir(), "nope.xlsx"),
		"empty csv":      writeFile(t, "empty.csv", ""),
		"no page_id col": writeFile(t, "bad.csv", "title\nx\n"),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(p, Options{})
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			require.Equal(t, errors.CategoryInput, ce.Category())
			require.True(t, ce.IsFatal())
		})
	}
}

func TestNav(t *testing.T) {
	tests := map[string]struct {
		n  int
		ok bool
	}{
		"3":   {3, true},
		"3.0": {3, true},
		" 2 ": {2, true},
		"":    {0, false},
		"x":   {0, false},
		"2.5": {0, false},
	}
	for in, want := range tests {
		n, ok := Row{NavOrder: in}.Nav()
		require.Equal(t, want.ok, ok, in)
		require.Equal(t, want.n, n, in)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", " on "} {
		require.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "no", "false", "0", "2"} {
		require.False(t, ParseBool(s), s)
	}
}

func TestReadCSV_BOMHeader(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader("\ufeffpage_id,title\np,T\n"))
	require.NoError(t, err)
	rows, err := parseRecords(recs)
	require.NoError(t, err)
	require.Equal(t, "p", rows[0].PageID)
}
