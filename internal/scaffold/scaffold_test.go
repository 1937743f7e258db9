package scaffold

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/hierarchy"
	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
)

const marker = "<!--INJECT_RESOURCE_LIST_HERE-->"

var rows = []pages.Row{
	{PageID: "040000_en", Title: "Basic Hydrogeology", CatCode: "4", Category: "Basic Hydrogeology"},
	{PageID: "040100_en", Title: "Aquifers", CatCode: "4", Category: "Basic Hydrogeology", SubCatCode: "1", Subcategory: "Aquifers"},
	{PageID: "040100_de", Title: "Grundwasserleiter", CatCode: "4", Category: "Basic Hydrogeology", SubCatCode: "1", Subcategory: "Aquifers"},
	{PageID: "x", Title: "No category"},
	{PageID: "050000_en", CatCode: "5", Category: "Applied"},
}

func quiet() *diagnostics.Collector {
	return diagnostics.NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contents")
	diags := quiet()

	res, err := Directories(rows, root, diags)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "04_basic_hydrogeology"),
		filepath.Join(root, "04_basic_hydrogeology", "01_aquifers"),
		filepath.Join(root, "05_applied"),
	}, res.Created)
	require.Len(t, diags.OfKind(diagnostics.KindMissingCategory), 1)

	again, err := Directories(rows, root, quiet())
	require.NoError(t, err)
	require.Empty(t, again.Created)
	require.Equal(t, 3, again.Skipped)
}

func TestPlaceholdersNeverOverwrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contents")
	authored := filepath.Join(root, "04_basic_hydrogeology", "04_basic_hydrogeology.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(authored), 0o755))
	require.NoError(t, os.WriteFile(authored, []byte("hand written"), 0o600))

	diags := quiet()
	res, err := Placeholders(rows, root, marker, diags)
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, diags.OfKind(diagnostics.KindPlaceholderExist), 1)
	require.Empty(t, diags.OfKind(diagnostics.KindMissingCategory))

	data, err := os.ReadFile(authored)
	require.NoError(t, err)
	require.Equal(t, "hand written", string(data))

	data, err = os.ReadFile(filepath.Join(root, "04_basic_hydrogeology", "01_aquifers", "01_aquifers.md"))
	require.NoError(t, err)
	require.Equal(t, "# Aquifers\n\nIntroductory content for this topic will be added here.\n\n"+marker+"\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "05_applied", "05_applied.md"))
	require.NoError(t, err)
	require.Contains(t, string(data), "# Untitled Page\n")

	again, err := Placeholders(rows, root, marker, quiet())
	require.NoError(t, err)
	require.Empty(t, again.Created)
	require.Equal(t, 3, again.Skipped)
}

func TestScaffoldAgreesWithHierarchy(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contents")
	_, err := Directories(rows[:2], root, quiet())
	require.NoError(t, err)

	p, err := hierarchy.Build(rows[1].Levels())
	require.NoError(t, err)
	info, err := os.Stat(filepath.Dir(p.File(root)))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

type failingWriter struct{ c io.Closer }

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (w failingWriter) Close() error            { return w.c.Close() }

func TestPlaceholderWriteFailureLeavesNoFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contents")
	orig := openExclusive
	openExclusive = func(path string) (io.WriteCloser, error) {
		f, err := orig(path)
		if err != nil {
			return nil, err
		}
		return failingWriter{f}, nil
	}
	_, err := Placeholders(rows[:1], root, marker, quiet())
	openExclusive = orig
	require.Error(t, err)

	file := filepath.Join(root, "04_basic_hydrogeology", "04_basic_hydrogeology.md")
	require.NoFileExists(t, file)

	res, err := Placeholders(rows[:1], root, marker, quiet())
	require.NoError(t, err)
	require.Equal(t, []string{file}, res.Created)
}
