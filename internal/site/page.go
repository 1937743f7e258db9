package site

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/catalogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
	"git.home.luguber.info/inful/catalogbuilder/internal/resourcemd"
)

// NoResourcesText follows the listing heading when a page has no resources.
const NoResourcesText = "No resources submitted for this topic yet.\n\n"

// Meta is the front matter and comment metadata of one page.
type Meta struct {
	PageID      string
	ParentID    string
	LangCode    string
	Title       string
	Layout      string
	NavOrder    int
	HasChildren bool
	Parent      string // resolved parent title, empty when unresolved
	GrandParent string
}

// Header renders the front matter block followed by the metadata comments and a blank line.
func (m Meta) Header() (string, error) {
	fields := []frontmatter.Field{
		{Key: "title", Value: m.Title},
		{Key: "layout", Value: m.Layout},
		{Key: "nav_order", Value: m.NavOrder},
		{Key: "has_children", Value: m.HasChildren},
	}
	if m.Parent != "" {
		fields = append(fields, frontmatter.Field{Key: "parent", Value: m.Parent})
		if m.GrandParent != "" {
			fields = append(fields, frontmatter.Field{Key: "grand_parent", Value: m.GrandParent})
		}
	}
	fm, err := frontmatter.Encode(fields)
	if err != nil {
		return "", err
	}
	comments := fmt.Sprintf("\n<!-- page_id: %s -->\n<!-- parent_id: %s -->\n<!-- lang_code: %s -->\n\n",
		m.PageID, m.ParentID, m.LangCode)
	return string(frontmatter.Join(fm, []byte(comments))), nil
}

// PlaceholderBody is used when a row has no base content file.
func PlaceholderBody(title, marker string) string {
	return fmt.Sprintf("# %s\n\nNo introductory content yet.\n\n%s\n", title, marker)
}

// SortResources returns a copy of list ordered by lowercased title. Ties keep discovery order.
func SortResources(list []*resource.Descriptor) []*resource.Descriptor {
	out := append([]*resource.Descriptor(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// Block renders the resource listing of one page.
func Block(title string, list []*resource.Descriptor, opts resourcemd.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Interactive Resources (%s)\n\n", title)
	if len(list) == 0 {
		b.WriteString(NoResourcesText)
		return b.String()
	}
	for _, d := range SortResources(list) {
		b.WriteString(resourcemd.Format(d, opts))
	}
	return b.String()
}

// Inject places block right after the first marker in body. When the marker is
// absent the block is appended after a blank line and found is false.
func Inject(body, marker, block string) (out string, found bool) {
	before, after, ok := strings.Cut(body, marker)
	if !ok {
		return body + "\n\n" + block, false
	}
	return before + marker + "\n\n" + block + after, true
}
