package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/ledger"
	"git.home.luguber.info/inful/catalogbuilder/internal/metrics"
	"git.home.luguber.info/inful/catalogbuilder/internal/sourcesync"
)

const sheet = `page_id,parent_id,title,nav_order,has_children,category,cat_code,subcategory,sub_cat_code
040000_en,,Basic Hydrogeology,4,yes,Basic Hydrogeology,4,,
040100_en,040000_en,Aquifer Types,1,no,Basic Hydrogeology,4,Aquifer Types,1
,,Orphan row,,,,,,
`

const descriptor = `topic_page_id: "040100_en"
title: Darcy Flow Simulator
resource_type: Streamlit app
url: https://example.org/darcy
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Pages:     config.PagesConfig{Spreadsheet: filepath.Join(root, "pages.csv"), Format: config.SheetFormatCSV},
		Contents:  config.ContentsConfig{Directory: filepath.Join(root, "contents"), Marker: config.DefaultMarker},
		Resources: config.ResourcesConfig{Directory: filepath.Join(root, "resources"), PublicURLPrefix: "/assets/resources"},
		Output:    config.OutputConfig{Directory: filepath.Join(root, "docs")},
		Defaults:  config.PageDefaults{Layout: "home", LangCode: "en"},
	}
	writeFile(t, cfg.Pages.Spreadsheet, sheet)
	writeFile(t, filepath.Join(cfg.Resources.Directory, "darcy.yaml"), descriptor)
	return cfg
}

func TestRunWritesPagesAndRecordsLedger(t *testing.T) {
	cfg := testConfig(t)
	l, err := ledger.Open(ledger.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	svc := NewService().WithLedger(l)
	res, err := svc.Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)
	require.Len(t, res.Report.Written, 2)
	require.Equal(t, 1, res.Report.Skipped)
	require.Equal(t, 1, res.Resources)
	require.FileExists(t, filepath.Join(cfg.Output.Directory, "040100_en.md"))
	require.Equal(t, map[ledger.Status]int{ledger.StatusAdded: 2}, ledger.Summarize(res.Changes))
	// the row without page_id is skipped with a warning
	require.Equal(t, StatusWarning, res.Status)

	again, err := svc.Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)
	require.NotEqual(t, res.RunID, again.RunID)
	require.Equal(t, map[ledger.Status]int{ledger.StatusUnchanged: 2}, ledger.Summarize(again.Changes))
}

func TestRunMissingSpreadsheetFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pages.Spreadsheet = filepath.Join(t.TempDir(), "missing.csv")

	rec := &outcomeRecorder{}
	res, err := NewService().WithRecorder(rec).Run(context.Background(), Request{Config: cfg})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryInput))
	require.Equal(t, StatusFailed, res.Status)
	require.NoDirExists(t, cfg.Output.Directory)
	require.Equal(t, []metrics.Outcome{metrics.OutcomeFailed}, rec.outcomes)
}

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes []metrics.Outcome
}

func (r *outcomeRecorder) IncRunOutcome(o metrics.Outcome) { r.outcomes = append(r.outcomes, o) }

func TestRunRequiresConfig(t *testing.T) {
	res, err := NewService().Run(context.Background(), Request{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.Equal(t, StatusFailed, res.Status)
}

type fakeSyncer struct {
	err   error
	calls int
}

func (f *fakeSyncer) Sync(_ context.Context, dir string) (sourcesync.Result, error) {
	f.calls++
	if f.err != nil {
		return sourcesync.Result{}, f.err
	}
	return sourcesync.Result{Path: dir, Commit: "abc", Changed: true}, nil
}

func TestRunSync(t *testing.T) {
	tests := []struct {
		name       string
		source     *config.SourceConfig
		sync       bool
		err        error
		wantCalls  int
		wantSynced bool
		degraded   bool
	}{
		{name: "not requested", source: &config.SourceConfig{URL: "x"}},
		{name: "no source", sync: true},
		{name: "ok", source: &config.SourceConfig{URL: "x"}, sync: true, wantCalls: 1, wantSynced: true},
		{name: "failure keeps going", source: &config.SourceConfig{URL: "x"}, sync: true, err: errors.New("boom"), wantCalls: 1, degraded: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Resources.Source = tt.source
			fake := &fakeSyncer{err: tt.err}
			svc := NewService().WithSyncerFactory(func(config.SourceConfig) Syncer { return fake })

			res, err := svc.Run(context.Background(), Request{Config: cfg, Sync: tt.sync})
			require.NoError(t, err)
			require.Equal(t, tt.wantCalls, fake.calls)
			require.Equal(t, tt.wantSynced, res.Sync != nil)
			require.Equal(t, tt.degraded, len(res.Degraded) > 0)
			require.Len(t, res.Report.Written, 2)
		})
	}
}

func TestRunWritesTextfile(t *testing.T) {
	cfg := testConfig(t)
	reg := prom.NewRegistry()
	path := filepath.Join(t.TempDir(), "catalogbuilder.prom")

	_, err := NewService().
		WithRecorder(metrics.NewPrometheusRecorder(reg)).
		WithTextfile(path, reg).
		Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "catalogbuilder_pages_written_total 2")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewService().Run(ctx, Request{Config: testConfig(t)})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StatusFailed, res.Status)
}
