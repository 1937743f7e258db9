package site

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/catalogbuilder/internal/hierarchy"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
	"git.home.luguber.info/inful/catalogbuilder/internal/resourcemd"
)

// Options configure a Renderer.
type Options struct {
	ContentsDir   string
	OutputDir     string
	Marker        string
	DefaultLayout string
	DefaultLang   string
	Format        resourcemd.Options
}

// Renderer turns spreadsheet rows into pages.
type Renderer struct {
	opts          Options
	diags         *diagnostics.Collector
	onPageWritten func(WrittenPage)
}

// NewRenderer creates a renderer reporting skipped rows and fallbacks to diags.
func NewRenderer(opts Options, diags *diagnostics.Collector) *Renderer {
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = "home"
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	return &Renderer{opts: opts, diags: diags}
}

// OnPageWritten registers a callback invoked after each page is written.
func (r *Renderer) OnPageWritten(fn func(WrittenPage)) { r.onPageWritten = fn }

// Render processes every row in order. It stops at the first write failure;
// pages written before it stay on disk.
func (r *Renderer) Render(tbl *pages.Table, ix *resource.Index) (*Report, error) {
	report := &Report{Start: time.Now(), Rows: len(tbl.Rows)}
	defer func() { report.End = time.Now() }()

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return report, errors.FileSystemError("cannot create output directory").WithCause(err).
			WithContext("path", r.opts.OutputDir).Build()
	}

	for _, row := range tbl.Rows {
		page, ok := r.renderRow(tbl, ix, row)
		if !ok {
			report.Skipped++
			continue
		}
		content := page.FrontMatter + page.Body
		if err := os.WriteFile(page.Path, []byte(content), 0o644); err != nil {
			return report, errors.RenderError("cannot write page").WithCause(err).
				WithContext("page_id", page.PageID).WithContext("path", page.Path).Build()
		}
		report.Written = append(report.Written, page)
		slog.Debug("Wrote page", logfields.PageID(page.PageID), logfields.Path(page.Path), logfields.Count(page.Resources))
		if r.onPageWritten != nil {
			r.onPageWritten(page)
		}
	}

	slog.Info("Rendered pages",
		slog.Int("written", len(report.Written)),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

func (r *Renderer) renderRow(tbl *pages.Table, ix *resource.Index, row pages.Row) (WrittenPage, bool) {
	subject := row.PageID
	if subject == "" {
		r.diags.Add(diagnostics.KindBlankPageID, fmt.Sprintf("line %d", row.Line), "row has no page_id; skipping")
		return WrittenPage{}, false
	}
	nav, ok := row.Nav()
	if !ok {
		r.diags.Add(diagnostics.KindInvalidNavOrder, subject, "nav_order %q for %q is not an integer; skipping", row.NavOrder, row.Title)
		return WrittenPage{}, false
	}
	path, err := hierarchy.Build(row.Levels())
	if stderrors.Is(err, hierarchy.ErrNoCategory) {
		r.diags.Add(diagnostics.KindMissingCategory, subject, "row %q has no category code; skipping", row.Title)
		return WrittenPage{}, false
	}

	meta := r.meta(tbl, row, nav)
	header, err := meta.Header()
	if err != nil {
		r.diags.Add(diagnostics.KindFrontMatter, subject, "cannot encode front matter: %v", err)
		return WrittenPage{}, false
	}

	contentPath := path.File(r.opts.ContentsDir)
	body, placeholder := r.baseContent(subject, contentPath, row.Title)

	list := ix.Lookup(row.PageID)
	if len(list) == 0 {
		// exact title match; a renamed page silently loses its resources
		list = ix.Lookup(row.Title)
		if len(list) > 0 {
			r.diags.Add(diagnostics.KindTitleMatch, subject, "%d resources matched by title %q, not page_id", len(list), row.Title)
		}
	}
	block := Block(row.Title, list, r.opts.Format)
	final, found := Inject(body, r.opts.Marker, block)
	if !found {
		r.diags.Add(diagnostics.KindMissingMarker, subject, "marker not found in %s; appended resources at end", filepath.Base(contentPath))
	}

	return WrittenPage{
		PageID:      row.PageID,
		Path:        filepath.Join(r.opts.OutputDir, row.PageID+".md"),
		ContentPath: contentPath,
		Placeholder: placeholder,
		Resources:   len(list),
		FrontMatter: header,
		Body:        final,
	}, true
}

func (r *Renderer) meta(tbl *pages.Table, row pages.Row, nav int) Meta {
	m := Meta{
		PageID:      row.PageID,
		ParentID:    row.ParentID,
		LangCode:    or(row.LangCode, r.opts.DefaultLang),
		Title:       row.Title,
		Layout:      or(row.Layout, r.opts.DefaultLayout),
		NavOrder:    nav,
		HasChildren: row.Children(),
	}
	if row.ParentID == "" {
		return m
	}
	parent, ok := tbl.Title(row.ParentID)
	if !ok {
		return m
	}
	m.Parent = parent
	if gp := tbl.Parent(row.ParentID); gp != "" {
		if title, ok := tbl.Title(gp); ok {
			m.GrandParent = title
		}
	}
	return m
}

func (r *Renderer) baseContent(pageID, contentPath, title string) (string, bool) {
	data, err := os.ReadFile(contentPath)
	if err == nil {
		return string(data), false
	}
	if !os.IsNotExist(err) {
		slog.Warn("Cannot read base content; using placeholder", logfields.PageID(pageID), logfields.Path(contentPath), logfields.Error(err))
	}
	r.diags.Add(diagnostics.KindMissingContent, pageID, "base content not found at %s; using placeholder", contentPath)
	return PlaceholderBody(title, r.opts.Marker), true
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// SplitPage separates a generated page into its front matter fields and the rest.
func SplitPage(content []byte) (map[string]any, string, error) {
	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, "", err
	}
	if !had {
		return nil, string(body), nil
	}
	fields, err := frontmatter.Parse(fm)
	if err != nil {
		return nil, "", err
	}
	return fields, string(body), nil
}
