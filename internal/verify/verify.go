// Package verify re-reads generated catalog pages and checks that they are
// well formed: front matter, page metadata comments, the resource marker and
// image links that resolve to files on disk.
package verify

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/frontmatter"
)

// resourcesHeading prefixes the heading that opens a page's resource block.
const resourcesHeading = "Interactive Resources"

// Options configure verification.
type Options struct {
	// SiteRoot is the directory absolute image paths ("/assets/...") resolve against.
	SiteRoot string
	Marker   string
}

// Page is what verification learned about one page.
type Page struct {
	Path      string
	PageID    string            // from the page_id comment
	Meta      map[string]string // every "key: value" HTML comment
	Title     string
	HasMarker bool
	Resources []string // resource headings in page order
	Images    []string
	Problems  int
}

// Report summarizes a directory run.
type Report struct {
	Pages []Page
}

// Problems is the total number of problems found.
func (r *Report) Problems() int {
	n := 0
	for _, p := range r.Pages {
		n += p.Problems
	}
	return n
}

// Resources is the total number of resource entries across pages.
func (r *Report) Resources() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Resources)
	}
	return n
}

// Verifier checks generated pages.
type Verifier struct {
	opts  Options
	diags *diagnostics.Collector
	md    goldmark.Markdown
}

func New(opts Options, diags *diagnostics.Collector) *Verifier {
	if opts.SiteRoot == "" {
		opts.SiteRoot = "."
	}
	return &Verifier{opts: opts, diags: diags, md: goldmark.New()}
}

// Dir verifies every .md file directly inside dir, in name order.
func (v *Verifier) Dir(dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.FileSystemError("cannot read generated pages").WithCause(err).
			WithContext("dir", dir).Build()
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	report := &Report{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return report, errors.FileSystemError("cannot read page").WithCause(err).
				WithContext("path", path).Build()
		}
		report.Pages = append(report.Pages, v.Page(path, data))
	}
	return report, nil
}

// Page verifies one page's content. Problems go to the collector.
func (v *Verifier) Page(path string, data []byte) Page {
	p := Page{Path: path, Meta: map[string]string{}}
	problem := func(kind diagnostics.Kind, format string, args ...any) {
		p.Problems++
		v.diags.Add(kind, path, format, args...)
	}

	fm, body, had, err := frontmatter.Split(data)
	switch {
	case err != nil:
		problem(diagnostics.KindFrontMatter, "front matter: %v", err)
		body = data
	case !had:
		problem(diagnostics.KindFrontMatter, "page has no front matter")
	default:
		fields, err := frontmatter.Parse(fm)
		if err != nil {
			problem(diagnostics.KindFrontMatter, "front matter does not parse: %v", err)
		} else if title, _ := fields["title"].(string); strings.TrimSpace(title) == "" {
			problem(diagnostics.KindFrontMatter, "front matter has no title")
		} else {
			p.Title = title
		}
	}

	root := v.md.Parser().Parse(text.NewReader(body))
	var htmlChunks [][]byte
	resources := false
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.HTMLBlock:
			var buf bytes.Buffer
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				buf.Write(seg.Value(body))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(body))
			}
			htmlChunks = append(htmlChunks, buf.Bytes())
		case *gmast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				htmlChunks = append(htmlChunks, seg.Value(body))
			}
		case *gmast.Heading:
			if node.Level != 2 {
				break
			}
			heading := nodeText(node, body)
			if strings.HasPrefix(heading, resourcesHeading) {
				resources = true
			} else if resources {
				p.Resources = append(p.Resources, heading)
			}
		case *gmast.Image:
			p.Images = append(p.Images, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})

	for _, chunk := range htmlChunks {
		for _, c := range comments(chunk) {
			if key, val, ok := strings.Cut(c, ":"); ok {
				p.Meta[strings.TrimSpace(key)] = strings.TrimSpace(val)
			}
		}
	}

	p.PageID = p.Meta["page_id"]
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch {
	case p.PageID == "":
		problem(diagnostics.KindPageIDMismatch, "page has no page_id comment")
	case p.PageID != stem:
		problem(diagnostics.KindPageIDMismatch, "page_id %q does not match file name %q", p.PageID, stem)
	}

	if v.opts.Marker != "" {
		p.HasMarker = bytes.Contains(body, []byte(v.opts.Marker))
		if !p.HasMarker {
			problem(diagnostics.KindMissingMarker, "resource marker not found")
		}
	}

	for _, dest := range p.Images {
		if file, ok := v.localFile(path, dest); ok {
			if _, err := os.Stat(file); err != nil {
				problem(diagnostics.KindBrokenImage, "image %s not found at %s", dest, file)
			}
		}
	}
	return p
}

// localFile maps an image destination to a file. Remote URLs are not checked.
func (v *Verifier) localFile(page, dest string) (string, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	p := filepath.FromSlash(u.Path)
	if strings.HasPrefix(u.Path, "/") {
		return filepath.Join(v.opts.SiteRoot, p), true
	}
	return filepath.Join(filepath.Dir(page), p), true
}

// comments returns the trimmed text of every HTML comment in chunk.
func comments(chunk []byte) []string {
	var out []string
	z := html.NewTokenizer(bytes.NewReader(chunk))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt == html.CommentToken {
			out = append(out, strings.TrimSpace(string(z.Token().Data)))
		}
	}
}

func nodeText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// Summary renders a one-line result.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d pages, %d resources, %d problems", len(r.Pages), r.Resources(), r.Problems())
}
