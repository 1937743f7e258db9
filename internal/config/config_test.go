package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalogbuilder.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pages:\n  spreadsheet: pages.csv\n"))
	require.NoError(t, err)

	require.Equal(t, "pages.csv", cfg.Pages.Spreadsheet)
	require.Equal(t, SheetFormatAuto, cfg.Pages.Format)
	require.Equal(t, "contents", cfg.Contents.Directory)
	require.Equal(t, DefaultMarker, cfg.Contents.Marker)
	require.Equal(t, "assets/resources", cfg.Resources.Directory)
	require.Equal(t, "/assets/resources", cfg.Resources.PublicURLPrefix)
	require.Equal(t, "docs", cfg.Output.Directory)
	require.Equal(t, "home", cfg.Defaults.Layout)
	require.Equal(t, "en", cfg.Defaults.LangCode)
	require.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	require.Equal(t, "catalogbuilder.runs", cfg.Notify.Subject)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Nil(t, cfg.Resources.Source)
}

func TestLoadExpandsEnvAndNormalizes(t *testing.T) {
	t.Setenv("CATALOG_TOKEN", "s3cret")
	cfg, err := Load(writeConfig(t, `
pages:
  format: " XLSX "
resources:
  source:
    url: https://example.org/submissions.git
    token: ${CATALOG_TOKEN}
logging:
  level: DEBUG
  format: json
watch:
  debounce: 500ms
  interval: 1h
`))
	require.NoError(t, err)
	require.Equal(t, SheetFormatXLSX, cfg.Pages.Format)
	require.Equal(t, "s3cret", cfg.Resources.Source.Token)
	require.Equal(t, "main", cfg.Resources.Source.Branch)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	require.Equal(t, time.Hour, cfg.Watch.Interval)
}

func TestLoadRejectsUnknownSheetFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "pages:\n  format: ods\n"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInitRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "catalogbuilder.yaml")
	require.NoError(t, Init(p, false))

	err := Init(p, false)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(p, true))

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, ".catalogbuilder/ledger.db", cfg.Ledger.Path)
	require.Equal(t, "assets/web_layout/pages.xlsx", cfg.Pages.Spreadsheet)
}
