package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Key string `short:"k" help:"Only list resources for this page key"`
}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	diags := diagnostics.NewCollector(slog.Default())
	ix, err := resource.Load(cfg.Resources.Directory, diags)
	if err != nil {
		return err
	}

	out := g.out()
	keys := ix.Keys()
	if d.Key != "" {
		keys = []string{d.Key}
	}
	for _, key := range keys {
		list := ix.Lookup(key)
		if len(list) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "%s (%d)\n", key, len(list))
		for _, r := range list {
			_, _ = fmt.Fprintf(out, "  %-40s %s\n", r.Title, r.Path)
		}
	}
	_, _ = fmt.Fprintf(out, "%d resources under %d keys\n", ix.Len(), len(ix.Keys()))
	diags.WriteSummary(out)
	return nil
}
