package commands

import (
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/catalogbuilder/internal/catalog"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// CatalogCmd groups the taxonomy inspection commands.
type CatalogCmd struct {
	File string `help:"Taxonomy file (defaults to catalog.file, then the built-in taxonomy)" type:"path"`

	Tree    CatalogTreeCmd    `cmd:"" help:"Print the taxonomy with page ids"`
	Resolve CatalogResolveCmd `cmd:"" help:"Print the page id and topic a selection attaches to"`
}

// load prefers --file, then catalog.file from an existing config file.
func (c *CatalogCmd) load(root *CLI) (*catalog.Catalog, error) {
	path := c.File
	if path == "" {
		if _, err := os.Stat(root.Config); err == nil {
			cfg, err := root.loadConfig()
			if err != nil {
				return nil, err
			}
			path = cfg.Catalog.File
		}
	}
	return catalog.Load(path)
}

// CatalogTreeCmd implements 'catalog tree'.
type CatalogTreeCmd struct{}

func (t *CatalogTreeCmd) Run(g *Global, root *CLI) error {
	cat, err := root.Catalog.load(root)
	if err != nil {
		return err
	}
	out := g.out()
	cat.Walk(func(path []string, n catalog.Node) {
		_, _ = fmt.Fprintf(out, "%s%s  [%s]\n", strings.Repeat("  ", len(path)-1), n.Label(), n.PageID())
	})
	langs := make([]string, 0, len(cat.Languages()))
	for _, l := range cat.Languages() {
		langs = append(langs, fmt.Sprintf("%s (%s)", l.Label, l.Code))
	}
	_, _ = fmt.Fprintf(out, "Languages: %s\n", strings.Join(langs, ", "))
	return nil
}

// CatalogResolveCmd implements 'catalog resolve'.
type CatalogResolveCmd struct {
	Category       string `arg:"" help:"Category label"`
	Subcategory    string `arg:"" optional:"" help:"Subcategory label"`
	SubSubcategory string `arg:"" optional:"" name:"subsubcategory" help:"Sub-subcategory label"`
}

func (r *CatalogResolveCmd) Run(g *Global, root *CLI) error {
	cat, err := root.Catalog.load(root)
	if err != nil {
		return err
	}
	sel := catalog.Selection{Category: r.Category, Subcategory: r.Subcategory, SubSubcategory: r.SubSubcategory}
	pageID, topic, err := cat.Resolve(sel)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "unknown catalog selection").Build()
	}
	_, _ = fmt.Fprintf(g.out(), "page_id: %s\ntopic: %s\n", pageID, catalog.StripNumericPrefix(topic))
	return nil
}
