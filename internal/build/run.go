package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/ledger"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/metrics"
	"git.home.luguber.info/inful/catalogbuilder/internal/notify"
	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
	"git.home.luguber.info/inful/catalogbuilder/internal/resourcemd"
	"git.home.luguber.info/inful/catalogbuilder/internal/site"
)

// Run executes one full generation.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		RunID:       ledger.NewRunID(),
		Start:       s.now(),
		Diagnostics: diagnostics.NewCollector(slog.Default()),
	}
	log := slog.With(logfields.RunID(result.RunID))

	if req.Config == nil {
		return s.fail(result, errors.ConfigError("config required").Build())
	}
	cfg := req.Config
	log.Info("Starting generation", slog.String("reason", reasonOr(req.Reason)))

	// Stage 1: resource source
	if req.Sync && cfg.Resources.Source != nil {
		stageStart := time.Now()
		res, err := s.syncerFactory(*cfg.Resources.Source).Sync(ctx, cfg.Resources.Directory)
		s.recorder.ObserveStageDuration(metrics.StageSync, time.Since(stageStart))
		s.recorder.IncSourceSync(err == nil)
		if err != nil {
			log.Warn("Resource source sync failed; using local resources", logfields.Error(err))
			result.Degraded = append(result.Degraded, metrics.StageSync)
		} else {
			result.Sync = &res
		}
	} else if req.Sync {
		log.Warn("Sync requested but resources.source is not configured")
	}
	if err := ctx.Err(); err != nil {
		return s.fail(result, err)
	}

	// Stage 2: spreadsheet
	stageStart := time.Now()
	tbl, err := pages.Load(cfg.Pages.Spreadsheet, pages.Options{Sheet: cfg.Pages.Sheet, Format: cfg.Pages.Format})
	s.recorder.ObserveStageDuration(metrics.StageLoadPages, time.Since(stageStart))
	if err != nil {
		return s.fail(result, err)
	}

	// Stage 3: resources
	stageStart = time.Now()
	ix, err := resource.Load(cfg.Resources.Directory, result.Diagnostics)
	s.recorder.ObserveStageDuration(metrics.StageResources, time.Since(stageStart))
	if err != nil {
		return s.fail(result, errors.FileSystemError("failed to load resources").WithCause(err).
			WithContext("path", cfg.Resources.Directory).Build())
	}
	result.Resources = ix.Len()
	s.recorder.SetResourcesLoaded(ix.Len())
	if err := ctx.Err(); err != nil {
		return s.fail(result, err)
	}

	// Stage 4: pages
	stageStart = time.Now()
	renderer := site.NewRenderer(site.Options{
		ContentsDir:   cfg.Contents.Directory,
		OutputDir:     cfg.Output.Directory,
		Marker:        cfg.Contents.Marker,
		DefaultLayout: cfg.Defaults.Layout,
		DefaultLang:   cfg.Defaults.LangCode,
		Format:        resourcemd.Options{FigureURLPrefix: cfg.Resources.PublicURLPrefix},
	}, result.Diagnostics)
	report, err := renderer.Render(tbl, ix)
	s.recorder.ObserveStageDuration(metrics.StageRender, time.Since(stageStart))
	result.Report = report
	if report != nil {
		s.recorder.AddPagesWritten(len(report.Written))
		s.recorder.AddPagesSkipped(report.Skipped)
	}
	if err != nil {
		return s.fail(result, err)
	}

	// Stage 5: ledger (reporting only)
	if s.ledger != nil {
		stageStart = time.Now()
		changes, err := s.record(ctx, result)
		s.recorder.ObserveStageDuration(metrics.StageLedger, time.Since(stageStart))
		if err != nil {
			log.Warn("Failed to record run in ledger", logfields.Error(err))
			result.Degraded = append(result.Degraded, metrics.StageLedger)
		} else {
			result.Changes = changes
		}
	}

	s.finish(result, nil)
	return result, nil
}

func (s *Service) record(ctx context.Context, result *Result) ([]ledger.Change, error) {
	report := result.Report
	written := make([]ledger.Page, 0, len(report.Written))
	for _, w := range report.Written {
		written = append(written, ledger.Page{
			PageID:      w.PageID,
			Path:        w.Path,
			Fingerprint: ledger.Fingerprint(w.FrontMatter, w.Body),
			Resources:   w.Resources,
		})
	}
	run := ledger.Run{
		ID:          result.RunID,
		Started:     result.Start,
		Finished:    s.now(),
		Rows:        report.Rows,
		Written:     len(report.Written),
		Skipped:     report.Skipped,
		Resources:   report.ResourcesPlaced(),
		Diagnostics: result.Diagnostics.Len(),
	}
	if err := s.ledger.Record(ctx, run, written); err != nil {
		return nil, err
	}
	return s.ledger.Changed(ctx, result.RunID)
}

func (s *Service) fail(result *Result, err error) (*Result, error) {
	s.finish(result, err)
	return result, err
}

// finish settles the status, then reports through metrics and the notifier.
func (s *Service) finish(result *Result, runErr error) {
	result.End = s.now()
	switch {
	case runErr != nil:
		result.Status = StatusFailed
	case len(result.Degraded) > 0 || hasWarnings(result.Diagnostics):
		result.Status = StatusWarning
	default:
		result.Status = StatusSuccess
	}

	for _, d := range result.Diagnostics.All() {
		s.recorder.IncDiagnostic(string(d.Kind))
	}
	s.recorder.ObserveRunDuration(result.Duration())
	s.recorder.IncRunOutcome(outcomeFor(result.Status))

	if s.textfile != "" && s.gatherer != nil {
		if err := metrics.WriteTextfile(s.textfile, s.gatherer); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(s.textfile), logfields.Error(err))
		}
	}
	if err := s.notifier.Publish(summarize(result, runErr)); err != nil {
		slog.Warn("Failed to publish run summary", logfields.RunID(result.RunID), logfields.Error(err))
	}

	attrs := []any{
		logfields.RunID(result.RunID),
		slog.String("status", string(result.Status)),
		logfields.DurationMS(float64(result.Duration().Milliseconds())),
	}
	if result.Report != nil {
		attrs = append(attrs, slog.Int("written", len(result.Report.Written)), slog.Int("skipped", result.Report.Skipped))
	}
	if runErr != nil {
		slog.Error("Generation failed", append(attrs, logfields.Error(runErr))...)
		return
	}
	slog.Info("Generation finished", attrs...)
}

func summarize(result *Result, runErr error) notify.RunSummary {
	sum := notify.RunSummary{
		RunID:      result.RunID,
		Started:    result.Start,
		Finished:   result.End,
		DurationMS: result.Duration().Milliseconds(),
		Outcome:    string(result.Status),
		Resources:  result.Resources,
	}
	if r := result.Report; r != nil {
		sum.Rows = r.Rows
		sum.Written = len(r.Written)
		sum.Skipped = r.Skipped
	}
	if counts := result.Diagnostics.Counts(); len(counts) > 0 {
		sum.Diagnostics = make(map[string]int, len(counts))
		for k, n := range counts {
			sum.Diagnostics[string(k)] = n
		}
	}
	if len(result.Changes) > 0 {
		sum.Changes = map[string]int{}
		for status, n := range ledger.Summarize(result.Changes) {
			sum.Changes[string(status)] = n
		}
	}
	if runErr != nil {
		sum.Error = runErr.Error()
	}
	return sum
}

func hasWarnings(c *diagnostics.Collector) bool {
	for _, d := range c.All() {
		if d.Severity >= diagnostics.SeverityWarning {
			return true
		}
	}
	return false
}

func outcomeFor(s Status) metrics.Outcome {
	switch s {
	case StatusFailed:
		return metrics.OutcomeFailed
	case StatusWarning:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeSuccess
	}
}

func reasonOr(r string) string {
	if r == "" {
		return "cli"
	}
	return r
}
