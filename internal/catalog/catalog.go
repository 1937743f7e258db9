// Package catalog holds the resource taxonomy: categories, subcategories and
// sub-subcategories with the page each one maps to, plus the submission languages.
//
// A Catalog is immutable once loaded. Consumers query it; nothing mutates it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTaxonomy []byte

// Node is one taxonomy entry.
type Node struct {
	label    string
	pageID   string
	children []Node
}

func (n Node) Label() string  { return n.label }
func (n Node) PageID() string { return n.pageID }

// Children returns a copy of the child nodes in file order.
func (n Node) Children() []Node { return append([]Node(nil), n.children...) }

func (n Node) child(label string) (Node, bool) {
	for _, c := range n.children {
		if c.label == label {
			return c, true
		}
	}
	return Node{}, false
}

// Language is a selectable resource language.
type Language struct {
	Label string
	Code  string
}

// Catalog is the loaded taxonomy.
type Catalog struct {
	root      Node
	languages []Language
}

type fileNode struct {
	Label    string     `yaml:"label"`
	PageID   string     `yaml:"page_id"`
	Children []fileNode `yaml:"children"`
}

type file struct {
	Languages []struct {
		Label string `yaml:"label"`
		Code  string `yaml:"code"`
	} `yaml:"languages"`
	Categories []fileNode `yaml:"categories"`
}

// Default returns the embedded taxonomy.
func Default() (*Catalog, error) {
	return Parse(defaultTaxonomy)
}

// Load reads a taxonomy file. An empty path selects the embedded taxonomy.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a taxonomy document. Labels must be non-empty and
// unique among siblings; page ids must be non-empty and unique.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	seen := map[string]string{}
	children, err := convert(f.Categories, seen, "")
	if err != nil {
		return nil, err
	}
	c := &Catalog{root: Node{children: children}}
	for _, l := range f.Languages {
		code := strings.TrimSpace(l.Code)
		if code == "" {
			return nil, fmt.Errorf("language %q has no code", l.Label)
		}
		c.languages = append(c.languages, Language{Label: strings.TrimSpace(l.Label), Code: code})
	}
	if len(c.languages) == 0 {
		c.languages = []Language{{Label: "English", Code: "en"}}
	}
	return c, nil
}

func convert(in []fileNode, seenIDs map[string]string, parent string) ([]Node, error) {
	labels := map[string]bool{}
	out := make([]Node, 0, len(in))
	for _, fn := range in {
		label := strings.TrimSpace(fn.Label)
		id := strings.TrimSpace(fn.PageID)
		if label == "" {
			return nil, fmt.Errorf("catalog entry under %q has no label", parent)
		}
		if labels[label] {
			return nil, fmt.Errorf("duplicate catalog label %q under %q", label, parent)
		}
		labels[label] = true
		if id == "" {
			return nil, fmt.Errorf("catalog entry %q has no page_id", label)
		}
		if other, dup := seenIDs[id]; dup {
			return nil, fmt.Errorf("page_id %s used by both %q and %q", id, other, label)
		}
		seenIDs[id] = label
		kids, err := convert(fn.Children, seenIDs, label)
		if err != nil {
			return nil, err
		}
		out = append(out, Node{label: label, pageID: id, children: kids})
	}
	return out, nil
}

// Categories returns the top-level labels, sorted.
func (c *Catalog) Categories() []string {
	return sortedLabels(c.root.children)
}

// Subcategories returns the sorted child labels of category.
func (c *Catalog) Subcategories(category string) ([]string, error) {
	n, ok := c.Find(category)
	if !ok {
		return nil, &NotFoundError{Path: []string{category}}
	}
	return sortedLabels(n.children), nil
}

// SubSubcategories returns the sorted child labels of category/subcategory.
func (c *Catalog) SubSubcategories(category, subcategory string) ([]string, error) {
	n, ok := c.Find(category, subcategory)
	if !ok {
		return nil, &NotFoundError{Path: []string{category, subcategory}}
	}
	return sortedLabels(n.children), nil
}

// Find walks labels from the top level down. No labels yields false.
func (c *Catalog) Find(labels ...string) (Node, bool) {
	if len(labels) == 0 {
		return Node{}, false
	}
	cur := c.root
	for _, l := range labels {
		next, ok := cur.child(l)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits every node depth first in file order with its label path.
func (c *Catalog) Walk(fn func(path []string, n Node)) {
	var walk func(prefix []string, nodes []Node)
	walk = func(prefix []string, nodes []Node) {
		for _, n := range nodes {
			p := append(append([]string(nil), prefix...), n.label)
			fn(p, n)
			walk(p, n.children)
		}
	}
	walk(nil, c.root.children)
}

// Languages returns the selectable languages in file order.
func (c *Catalog) Languages() []Language {
	return append([]Language(nil), c.languages...)
}

// LanguageCode resolves a language label or code (case-insensitive) to its code.
func (c *Catalog) LanguageCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, l := range c.languages {
		if strings.EqualFold(l.Code, s) || strings.EqualFold(l.Label, s) {
			return l.Code, true
		}
	}
	return "", false
}

// LanguageLabel returns the label of code, or code itself when unknown.
func (c *Catalog) LanguageLabel(code string) string {
	for _, l := range c.languages {
		if l.Code == code {
			return l.Label
		}
	}
	return code
}

// IsLanguageCode reports whether code is one of the catalog's language codes.
func (c *Catalog) IsLanguageCode(code string) bool {
	for _, l := range c.languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Selection picks a page in the taxonomy. An empty Subcategory attaches to the
// category page; an empty SubSubcategory attaches to the subcategory page.
type Selection struct {
	Category       string `yaml:"category"`
	Subcategory    string `yaml:"subcategory,omitempty"`
	SubSubcategory string `yaml:"subsubcategory,omitempty"`
}

// Labels returns the non-empty selection labels from the top down.
func (s Selection) Labels() []string {
	out := []string{s.Category}
	if s.Subcategory == "" {
		return out
	}
	out = append(out, s.Subcategory)
	if s.SubSubcategory != "" {
		out = append(out, s.SubSubcategory)
	}
	return out
}

// Resolve returns the page id and topic label the selection attaches to.
func (c *Catalog) Resolve(sel Selection) (pageID, topic string, err error) {
	labels := sel.Labels()
	n, ok := c.Find(labels...)
	if !ok {
		return "", "", &NotFoundError{Path: labels}
	}
	return n.pageID, n.label, nil
}

// NotFoundError reports a label path that is not in the catalog.
type NotFoundError struct {
	Path []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog entry not found: %s", strings.Join(e.Path, " / "))
}

// StripNumericPrefix removes a leading ordinal such as "05 " or "03.2 ".
func StripNumericPrefix(label string) string {
	head, rest, ok := strings.Cut(label, " ")
	if !ok {
		return label
	}
	digits := strings.ReplaceAll(head, ".", "")
	if digits == "" {
		return label
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return label
		}
	}
	return rest
}

func sortedLabels(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.label)
	}
	sort.Strings(out)
	return out
}
