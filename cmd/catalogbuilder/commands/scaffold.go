package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
	"git.home.luguber.info/inful/catalogbuilder/internal/scaffold"
)

// ScaffoldCmd implements the 'scaffold' command.
type ScaffoldCmd struct {
	DirsOnly bool `name:"dirs-only" help:"Create directories but no placeholder pages"`
}

func (s *ScaffoldCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	tbl, err := pages.Load(cfg.Pages.Spreadsheet, pages.Options{Sheet: cfg.Pages.Sheet, Format: cfg.Pages.Format})
	if err != nil {
		return err
	}
	diags := diagnostics.NewCollector(slog.Default())
	out := g.out()

	dirs, err := scaffold.Directories(tbl.Rows, cfg.Contents.Directory, diags)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Directories: %d created, %d already present\n", len(dirs.Created), dirs.Skipped)

	if !s.DirsOnly {
		ph, err := scaffold.Placeholders(tbl.Rows, cfg.Contents.Directory, cfg.Contents.Marker, diags)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Placeholders: %d created, %d already present\n", len(ph.Created), ph.Skipped)
	}
	diags.WriteSummary(out)
	return nil
}
