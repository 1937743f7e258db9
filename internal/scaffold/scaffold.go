// Package scaffold bootstraps the contents tree from the page spreadsheet.
//
// It never touches existing files: directories are created with mkdir -p and
// placeholder files are created exclusively.
package scaffold

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/hierarchy"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
	"git.home.luguber.info/inful/catalogbuilder/internal/util/sets"
)

// DefaultTitle is used for placeholder headings of rows without a title.
const DefaultTitle = "Untitled Page"

// Result counts what a scaffold step did.
type Result struct {
	Created []string
	Skipped int
}

type located struct {
	row  pages.Row
	path hierarchy.Path
}

// locate builds every row's hierarchy path, reporting rows without a category.
func locate(rows []pages.Row, diags *diagnostics.Collector) []located {
	var out []located
	for _, row := range rows {
		p, err := hierarchy.Build(row.Levels())
		if err != nil {
			diags.Add(diagnostics.KindMissingCategory, subject(row), "row %q has no category code; skipping", row.Title)
			continue
		}
		out = append(out, located{row: row, path: p})
	}
	return out
}

func subject(row pages.Row) string {
	if row.PageID != "" {
		return row.PageID
	}
	return fmt.Sprintf("line %d", row.Line)
}

// Directories creates the unique content directories of all rows, in sorted order.
func Directories(rows []pages.Row, root string, diags *diagnostics.Collector) (*Result, error) {
	unique := sets.New[string]()
	for _, rp := range locate(rows, diags) {
		unique.Add(rp.path.Dir(root))
	}

	res := &Result{}
	for _, dir := range sets.Sorted(unique) {
		if _, err := os.Stat(dir); err == nil {
			res.Skipped++
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, errors.FileSystemError("cannot create content directory").WithCause(err).
				WithContext("path", dir).Build()
		}
		res.Created = append(res.Created, dir)
		slog.Debug("Created content directory", logfields.Path(dir))
	}
	return res, nil
}

// PlaceholderBody is the content written for a missing content file.
func PlaceholderBody(title, marker string) string {
	if title == "" {
		title = DefaultTitle
	}
	return fmt.Sprintf("# %s\n\nIntroductory content for this topic will be added here.\n\n%s\n", title, marker)
}

// Placeholders creates the content file of every row that does not have one yet.
// Existing files are reported to diags. Rows without a category are skipped
// silently; Directories reports them.
func Placeholders(rows []pages.Row, root, marker string, diags *diagnostics.Collector) (*Result, error) {
	res := &Result{}
	seen := sets.New[string]()
	for _, rp := range locate(rows, nil) {
		file := rp.path.File(root)
		if !seen.Add(file) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return res, errors.FileSystemError("cannot create content directory").WithCause(err).
				WithContext("path", filepath.Dir(file)).Build()
		}
		created, err := createExclusive(file, PlaceholderBody(rp.row.Title, marker))
		if err != nil {
			return res, errors.FileSystemError("cannot create placeholder").WithCause(err).
				WithContext("path", file).Build()
		}
		if !created {
			res.Skipped++
			diags.Add(diagnostics.KindPlaceholderExist, subject(rp.row), "%s already exists; left untouched", file)
			continue
		}
		res.Created = append(res.Created, file)
		slog.Info("Created placeholder", logfields.PageID(rp.row.PageID), logfields.Path(file))
	}
	return res, nil
}

// createExclusive writes body to path only if path does not exist. A failed
// write removes the partial file so a later run can create it.
func createExclusive(path, body string) (bool, error) {
	f, err := openExclusive(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	_, err = io.WriteString(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return false, err
	}
	return true, nil
}

// openExclusive is replaced in tests to simulate write failures.
var openExclusive = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
