package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/ledger"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of runs to list" default:"10"`
	Pages bool   `help:"List the pages of one run instead of the run list"`
	RunID string `arg:"" name:"run" optional:"" help:"Run id for --pages (defaults to the latest run)"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return errors.ConfigError("ledger.path is not configured").Build()
	}
	out := g.out()
	if cfg.Ledger.Path != ledger.Memory {
		if _, err := os.Stat(cfg.Ledger.Path); os.IsNotExist(err) {
			_, _ = fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
	}

	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	ctx := context.Background()
	if h.Pages {
		return h.listPages(ctx, l, g)
	}

	runs, err := l.Runs(ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		_, _ = fmt.Fprintf(out, "%s  %s  rows %d, written %d, skipped %d, resources %d, diagnostics %d\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.Rows, r.Written, r.Skipped, r.Resources, r.Diagnostics)
	}
	return nil
}

func (h *HistoryCmd) listPages(ctx context.Context, l *ledger.Ledger, g *Global) error {
	out := g.out()
	runID := h.RunID
	if runID == "" {
		last, ok, err := l.LastRun(ctx)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		runID = last.ID
	}

	list, err := l.PagesForRun(ctx, runID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.ValidationError("no pages recorded for run").WithContext("run_id", runID).Build()
	}
	_, _ = fmt.Fprintf(out, "Run %s: %d pages\n", runID, len(list))
	for _, p := range list {
		_, _ = fmt.Fprintf(out, "  %-12s %2d  %s  %s\n", p.PageID, p.Resources, shortHash(p.Fingerprint), p.Path)
	}
	return nil
}
