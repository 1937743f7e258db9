package build

import (
	"context"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/ledger"
	"git.home.luguber.info/inful/catalogbuilder/internal/metrics"
	"git.home.luguber.info/inful/catalogbuilder/internal/notify"
	"git.home.luguber.info/inful/catalogbuilder/internal/site"
	"git.home.luguber.info/inful/catalogbuilder/internal/sourcesync"
)

// Request contains the inputs of one run.
type Request struct {
	Config *config.Config
	// Sync pulls resources.source into the resources directory first.
	Sync bool
	// Reason is recorded in logs, e.g. "cli", "change" or "schedule".
	Reason string
}

// Status is the overall outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Result contains the outcome of a run.
type Result struct {
	RunID     string
	Status    Status
	Report    *site.Report
	Resources int
	Sync      *sourcesync.Result
	Changes   []ledger.Change
	// Degraded lists trailing stages that failed without stopping the run.
	Degraded    []string
	Diagnostics *diagnostics.Collector
	Start       time.Time
	End         time.Time
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration { return r.End.Sub(r.Start) }

// Syncer updates a local directory from the resource source.
type Syncer interface {
	Sync(ctx context.Context, dir string) (sourcesync.Result, error)
}

// Service executes runs. The zero value is not usable; call NewService.
type Service struct {
	recorder      metrics.Recorder
	ledger        *ledger.Ledger
	notifier      *notify.Notifier
	syncerFactory func(config.SourceConfig) Syncer
	textfile      string
	gatherer      prom.Gatherer
	now           func() time.Time
}

// NewService creates a Service with a no-op recorder and the go-git syncer.
func NewService() *Service {
	return &Service{
		recorder: metrics.NoopRecorder{},
		syncerFactory: func(src config.SourceConfig) Syncer {
			return sourcesync.New(src)
		},
		now: time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithLedger records every run in l. The caller keeps ownership of l.
func (s *Service) WithLedger(l *ledger.Ledger) *Service {
	s.ledger = l
	return s
}

// WithNotifier publishes a summary of every run through n.
func (s *Service) WithNotifier(n *notify.Notifier) *Service {
	s.notifier = n
	return s
}

// WithSyncerFactory replaces the git syncer (for testing).
func (s *Service) WithSyncerFactory(f func(config.SourceConfig) Syncer) *Service {
	s.syncerFactory = f
	return s
}

// WithTextfile writes everything g gathers to path after every run.
func (s *Service) WithTextfile(path string, g prom.Gatherer) *Service {
	s.textfile = path
	s.gatherer = g
	return s
}
