package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/catalogbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Sync bool `help:"Pull resources.source on startup and on every scheduled rebuild"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	svc, closeFn := newService(cfg)
	defer closeFn()

	out := g.out()
	rebuild := func(ctx context.Context, reason string) error {
		// file changes come from local edits; only startup and schedule reach out to the source
		sync := c.Sync && reason != watch.ReasonChange
		return runOnce(ctx, svc, cfg, sync, reason, out)
	}

	w, err := watch.New(watch.Options{
		Paths:    []string{cfg.Pages.Spreadsheet, cfg.Contents.Directory, cfg.Resources.Directory},
		Ignore:   []string{cfg.Output.Directory},
		Debounce: cfg.Watch.Debounce,
		Interval: cfg.Watch.Interval,
	}, rebuild)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	err = w.Run(ctx)
	slog.Info("Watch stopped")
	return err
}
