package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Dir      string `help:"Directory of generated pages (defaults to output.directory)" type:"path"`
	SiteRoot string `name:"site-root" help:"Directory that absolute image URLs resolve against" default:"." type:"path"`
}

func (c *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	dir := c.Dir
	if dir == "" {
		dir = cfg.Output.Directory
	}

	diags := diagnostics.NewCollector(slog.Default())
	report, err := verify.New(verify.Options{SiteRoot: c.SiteRoot, Marker: cfg.Contents.Marker}, diags).Dir(dir)
	if err != nil {
		return err
	}

	out := g.out()
	for _, d := range diags.All() {
		_, _ = fmt.Fprintln(out, d.String())
	}
	_, _ = fmt.Fprintln(out, report.Summary())
	if n := report.Problems(); n > 0 {
		return errors.ValidationError(fmt.Sprintf("verification found %d problems", n)).
			WithContext("dir", dir).Build()
	}
	return nil
}
