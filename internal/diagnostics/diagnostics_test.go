package diagnostics

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func quietCollector() *Collector {
	return NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCollectorRecordsInOrder(t *testing.T) {
	c := quietCollector()
	c.Add(KindInvalidNavOrder, "010000_en", "nav_order %q is not an integer", "x")
	c.Add(KindMissingMarker, "010000_en", "marker not found")
	c.AddWithSeverity(KindBrokenImage, SeverityError, "docs/a.md", "missing %s", "img.png")

	all := c.All()
	require.Len(t, all, 3)
	require.Equal(t, KindInvalidNavOrder, all[0].Kind)
	require.Equal(t, SeverityWarning, all[0].Severity)
	require.Equal(t, `nav_order "x" is not an integer`, all[0].Message)
	require.Equal(t, SeverityInfo, all[1].Severity)
	require.True(t, c.HasErrors())
	require.Len(t, c.OfKind(KindMissingMarker), 1)
	require.Equal(t, map[Kind]int{KindInvalidNavOrder: 1, KindMissingMarker: 1, KindBrokenImage: 1}, c.Counts())
}

func TestCollectorLogs(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(slog.New(slog.NewTextHandler(&buf, nil)))
	c.Add(KindDescriptorNoKey, "assets/resources/x.yaml", "no topic")
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "kind=descriptor_no_key")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Add(KindMissingContent, "p", "ignored")
	require.Equal(t, 0, c.Len())
	require.Empty(t, c.All())
	require.False(t, c.HasErrors())
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	c := quietCollector()
	c.WriteSummary(&out)
	require.Equal(t, "No diagnostics.\n", out.String())

	out.Reset()
	c.Add(KindMissingMarker, "b", "m")
	c.Add(KindMissingContent, "a", "m")
	c.Add(KindMissingContent, "c", "m")
	c.WriteSummary(&out)
	require.Equal(t, "Diagnostics (3):\n  missing_content      2\n  missing_marker       1\n"+
		"  - INFO [missing_marker] b: m\n"+
		"  - INFO [missing_content] a: m\n"+
		"  - INFO [missing_content] c: m\n", out.String())
	require.Equal(t, "INFO [missing_marker] b: m", c.All()[0].String())
}
