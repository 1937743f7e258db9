package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func run(id string, start time.Time, written int) Run {
	return Run{ID: id, Started: start, Finished: start.Add(time.Second), Rows: written + 1, Written: written, Skipped: 1}
}

func TestLastRunEmpty(t *testing.T) {
	l := openMemory(t)
	_, ok, err := l.LastRun(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordAndChanged(t *testing.T) {
	ctx := context.Background()
	l := openMemory(t)
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	first := []Page{
		{PageID: "010000_en", Path: "docs/010000_en.md", Fingerprint: Fingerprint("---\ntitle: A\n---\n", "a"), Resources: 1},
		{PageID: "020000_en", Path: "docs/020000_en.md", Fingerprint: Fingerprint("---\ntitle: B\n---\n", "b")},
		{PageID: "030000_en", Path: "docs/030000_en.md", Fingerprint: "c"},
	}
	require.NoError(t, l.Record(ctx, run("r1", t0, 3), first))

	changes, err := l.Changed(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, map[Status]int{StatusAdded: 3}, Summarize(changes))

	second := []Page{
		{PageID: "010000_en", Path: "docs/010000_en.md", Fingerprint: Fingerprint("---\ntitle: A\n---\n", "a"), Resources: 1},
		{PageID: "020000_en", Path: "docs/020000_en.md", Fingerprint: Fingerprint("---\ntitle: B\n---\n", "b changed")},
		{PageID: "040000_en", Path: "docs/040000_en.md", Fingerprint: "d"},
	}
	require.NoError(t, l.Record(ctx, run("r2", t0.Add(time.Hour), 3), second))

	last, ok, err := l.LastRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "r2", last.ID)
	require.Equal(t, 3, last.Written)
	require.True(t, last.Started.Equal(t0.Add(time.Hour)))

	pages, err := l.PagesForRun(ctx, "r2")
	require.NoError(t, err)
	require.Equal(t, second, pages)

	changes, err = l.Changed(ctx, "r2")
	require.NoError(t, err)
	require.Equal(t, []Change{
		{PageID: "010000_en", Status: StatusUnchanged},
		{PageID: "020000_en", Status: StatusChanged},
		{PageID: "030000_en", Status: StatusRemoved},
		{PageID: "040000_en", Status: StatusAdded},
	}, changes)

	runs, err := l.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "r2", runs[0].ID)
}

func TestRecordDuplicateRunID(t *testing.T) {
	ctx := context.Background()
	l := openMemory(t)
	now := time.Now()
	require.NoError(t, l.Record(ctx, run("same", now, 0), nil))
	require.Error(t, l.Record(ctx, run("same", now, 0), nil))
}

func TestOpenFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, run(NewRunID(), time.Now(), 1), []Page{{PageID: "x", Path: "x.md", Fingerprint: "f"}}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	last, ok, err := l.LastRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	pages, err := l.PagesForRun(ctx, last.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("---\ntitle: A\n---\n", "body")
	require.Equal(t, a, Fingerprint("---\ntitle: A\n---\n", "body"))
	require.NotEqual(t, a, Fingerprint("---\ntitle: A\n---\n", "body!"))
	require.NotEmpty(t, NewRunID())
}
