package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/catalogbuilder/internal/build"
	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/ledger"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/metrics"
	"git.home.luguber.info/inful/catalogbuilder/internal/notify"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Sync bool `help:"Pull resources.source into the resources directory before generating"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	svc, closeFn := newService(cfg)
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()
	return runOnce(ctx, svc, cfg, c.Sync, "cli", g.out())
}

// newService wires the optional ledger, metrics textfile and notifier from
// cfg. Optional backends that cannot be opened are logged and left out.
func newService(cfg *config.Config) (*build.Service, func()) {
	svc := build.NewService()
	var closers []func()

	if cfg.Ledger.Path != "" {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			slog.Warn("Ledger unavailable; runs will not be recorded", logfields.Path(cfg.Ledger.Path), logfields.Error(err))
		} else {
			svc.WithLedger(l)
			closers = append(closers, func() { _ = l.Close() })
		}
	}
	if cfg.Metrics.Textfile != "" {
		reg := prom.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg)).WithTextfile(cfg.Metrics.Textfile, reg)
	}
	if cfg.Notify.NATSURL != "" {
		n, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Notifier unavailable", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			svc.WithNotifier(n)
			closers = append(closers, n.Close)
		}
	}
	return svc, func() {
		for _, fn := range closers {
			fn()
		}
	}
}

func printResult(out io.Writer, res *build.Result) {
	r := res.Report
	_, _ = fmt.Fprintf(out, "Run %s: %s\n", res.RunID, res.Status)
	_, _ = fmt.Fprintf(out, "  rows %d, written %d, skipped %d\n", r.Rows, len(r.Written), r.Skipped)
	_, _ = fmt.Fprintf(out, "  resources loaded %d, placed %d\n", res.Resources, r.ResourcesPlaced())
	if res.Sync != nil {
		_, _ = fmt.Fprintf(out, "  source %s@%s (changed: %v)\n", res.Sync.Branch, shortHash(res.Sync.Commit), res.Sync.Changed)
	}
	if len(res.Changes) > 0 {
		counts := ledger.Summarize(res.Changes)
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, string(s))
		}
		sort.Strings(statuses)
		_, _ = fmt.Fprint(out, "  changes:")
		for _, s := range statuses {
			_, _ = fmt.Fprintf(out, " %s=%d", s, counts[ledger.Status(s)])
		}
		_, _ = fmt.Fprintln(out)
	}
	for _, stage := range res.Degraded {
		_, _ = fmt.Fprintf(out, "  degraded: %s\n", stage)
	}
	res.Diagnostics.WriteSummary(out)
}

func shortHash(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}

// runOnce is shared by generate and watch.
func runOnce(ctx context.Context, svc *build.Service, cfg *config.Config, sync bool, reason string, out io.Writer) error {
	res, err := svc.Run(ctx, build.Request{Config: cfg, Sync: sync, Reason: reason})
	if res != nil && res.Report != nil {
		printResult(out, res)
	}
	return err
}
