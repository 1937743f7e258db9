package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRunDuration(time.Second)
	r.IncDiagnostic("missing_marker")
	r.IncRunOutcome(OutcomeSuccess)
}

func TestNilPrometheusRecorder(t *testing.T) {
	var p *PrometheusRecorder
	p.AddPagesWritten(3)
	p.IncSourceSync(true)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.ObserveStageDuration(StageRender, 150*time.Millisecond)
	pr.AddPagesWritten(4)
	pr.AddPagesWritten(0)
	pr.AddPagesSkipped(1)
	pr.SetResourcesLoaded(7)
	pr.IncDiagnostic("missing_marker")
	pr.IncDiagnostic("missing_marker")
	pr.IncRunOutcome(OutcomeWarning)
	pr.IncSourceSync(false)

	require.InDelta(t, 4, testutil.ToFloat64(pr.pagesWritten), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.pagesSkipped), 0)
	require.InDelta(t, 7, testutil.ToFloat64(pr.resourcesLoaded), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.diagnostics.WithLabelValues("missing_marker")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.runOutcomes.WithLabelValues("warning")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.sourceSyncs.WithLabelValues("failed")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddPagesWritten(2)

	path := filepath.Join(t.TempDir(), "textfile", "catalogbuilder.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "catalogbuilder_pages_written_total 2"), string(data))
}
