package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	reasons []string
	ch      chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 16)} }

func (r *recorder) rebuild(_ context.Context, reason string) error {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	r.ch <- reason
	return nil
}

func (r *recorder) next(t *testing.T) string {
	t.Helper()
	select {
	case reason := <-r.ch:
		return reason
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
		return ""
	}
}

func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestStartupThenDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Options{Paths: []string{dir}, Debounce: 50 * time.Millisecond}, rec.rebuild)
	require.NoError(t, err)
	start(t, w)

	require.Equal(t, ReasonStartup, rec.next(t))

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte{byte('a' + i)}, 0o600))
	}
	require.Equal(t, ReasonChange, rec.next(t))

	select {
	case reason := <-rec.ch:
		t.Fatalf("burst should collapse into one rebuild, got extra %q", reason)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestScheduledRebuild(t *testing.T) {
	rec := newRecorder()
	w, err := New(Options{Interval: 100 * time.Millisecond, SkipInitial: true}, rec.rebuild)
	require.NoError(t, err)
	start(t, w)

	require.Equal(t, ReasonSchedule, rec.next(t))
}

func TestRelevantFiltersPaths(t *testing.T) {
	root := t.TempDir()
	sheet := filepath.Join(t.TempDir(), "pages.xlsx")
	require.NoError(t, os.WriteFile(sheet, []byte("x"), 0o600))
	out := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(out, 0o750))

	w, err := New(Options{Paths: []string{root, sheet}, Ignore: []string{out}}, func(context.Context, string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "contents", "a.md"), true},
		{sheet, true},
		{filepath.Join(filepath.Dir(sheet), "other.xlsx"), false},
		{filepath.Join(out, "index.md"), false},
		{filepath.Join(root, ".git", "HEAD"), false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestChmodOnlyIgnored(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Paths: []string{dir}, Debounce: time.Hour}, func(context.Context, string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	w.handle(fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Chmod})
	require.Nil(t, w.timer)

	w.handle(fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Write})
	require.NotNil(t, w.timer)
	w.timer.Stop()
}

func TestNewRejectsNegativeInterval(t *testing.T) {
	_, err := New(Options{Interval: -time.Second}, func(context.Context, string) error { return nil })
	require.Error(t, err)
}
