package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalogbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration     prom.Histogram
	stageDuration   *prom.HistogramVec
	pagesWritten    prom.Counter
	pagesSkipped    prom.Counter
	resourcesLoaded prom.Gauge
	diagnostics     *prom.CounterVec
	runOutcomes     *prom.CounterVec
	sourceSyncs     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual run stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		pagesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_written_total",
			Help:      "Catalog pages written",
		}),
		pagesSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_skipped_total",
			Help:      "Spreadsheet rows skipped",
		}),
		resourcesLoaded: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "resources_loaded",
			Help:      "Resource descriptors loaded by the last run",
		}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics recorded by kind",
		}, []string{"kind"}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		sourceSyncs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_sync_total",
			Help:      "Resource repository sync attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.runDuration, pr.stageDuration, pr.pagesWritten, pr.pagesSkipped,
		pr.resourcesLoaded, pr.diagnostics, pr.runOutcomes, pr.sourceSyncs)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddPagesWritten(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pagesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) AddPagesSkipped(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pagesSkipped.Add(float64(n))
}

func (p *PrometheusRecorder) SetResourcesLoaded(n int) {
	if p == nil {
		return
	}
	p.resourcesLoaded.Set(float64(n))
}

func (p *PrometheusRecorder) IncDiagnostic(kind string) {
	if p == nil {
		return
	}
	p.diagnostics.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSourceSync(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.sourceSyncs.WithLabelValues(res).Inc()
}
