package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
)

// Global carries state shared by every command.
type Global struct {
	// Out receives summaries and per-row reports; logs go to stderr.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"catalogbuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write a starter configuration file"`
	Scaffold ScaffoldCmd `cmd:"" help:"Create content directories and placeholder pages from the spreadsheet"`
	Generate GenerateCmd `cmd:"" help:"Generate catalog pages with their resource listings"`
	Verify   VerifyCmd   `cmd:"" help:"Check generated pages for metadata, markers and broken images"`
	Discover DiscoverCmd `cmd:"" help:"List resource descriptors grouped by page key"`
	Catalog  CatalogCmd  `cmd:"" help:"Inspect the catalog taxonomy"`
	Submit   SubmitCmd   `cmd:"" help:"Turn an answers file into a resource descriptor bundle"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever inputs change"`
	History  HistoryCmd  `cmd:"" help:"Show runs and pages recorded in the ledger"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, c.Verbose)
	return nil
}

// loadConfig loads the configuration file and applies its logging section.
// --verbose always wins over logging.level.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Logging, c.Verbose)
	return cfg, nil
}

func setupLogging(lc config.LoggingConfig, verbose bool) {
	level := slog.LevelInfo
	switch lc.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
