// Package watch rebuilds the catalog when its inputs change.
//
// Filesystem events are debounced into a single trigger; an optional interval
// job adds periodic rebuilds. Triggers never overlap: a trigger that arrives
// while a rebuild runs produces exactly one follow-up rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
)

// Trigger reasons passed to the rebuild function.
const (
	ReasonStartup  = "startup"
	ReasonChange   = "change"
	ReasonSchedule = "schedule"
)

// RebuildFunc performs one full rebuild.
type RebuildFunc func(ctx context.Context, reason string) error

// Options configures a Watcher.
type Options struct {
	// Paths are files or directories. Directories are watched recursively.
	Paths []string
	// Ignore lists directories whose events are dropped, typically the output tree.
	Ignore   []string
	Debounce time.Duration
	// Interval schedules periodic rebuilds; zero disables them.
	Interval time.Duration
	// SkipInitial suppresses the startup rebuild.
	SkipInitial bool
}

// Watcher drives rebuilds from filesystem events and a schedule.
type Watcher struct {
	opts    Options
	rebuild RebuildFunc
	fsw     *fsnotify.Watcher

	files  map[string]struct{} // watched regular files, absolute
	roots  []string            // watched directory trees, absolute
	ignore []string

	mu    sync.Mutex
	timer *time.Timer
	fire  chan string
}

// New prepares a Watcher. Paths that do not exist yet are skipped with a warning.
func New(opts Options, rebuild RebuildFunc) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.ValidationError("rebuild function is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	if opts.Interval < 0 {
		return nil, errors.ConfigError("watch.interval must not be negative").Build()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		opts:    opts,
		rebuild: rebuild,
		fsw:     fsw,
		files:   map[string]struct{}{},
		fire:    make(chan string, 1),
	}
	for _, p := range opts.Ignore {
		if abs, absErr := filepath.Abs(p); absErr == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	for _, p := range opts.Paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	if strings.TrimSpace(p) == "" {
		return nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		slog.Warn("Watch path not found, skipping", logfields.Path(abs))
		return nil
	}
	if !info.IsDir() {
		// The parent directory survives editors that replace files on save.
		w.files[abs] = struct{}{}
		return w.watchDir(filepath.Dir(abs))
	}
	w.roots = append(w.roots, abs)
	return w.watchTree(abs)
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return errors.FileSystemError("failed to watch directory").WithCause(err).
			WithContext("path", dir).Build()
	}
	return nil
}

func (w *Watcher) ignored(path string) bool {
	for _, ig := range w.ignore {
		if path == ig || strings.HasPrefix(path, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether an event path belongs to a watched file or tree.
func (w *Watcher) relevant(path string) bool {
	if w.ignored(path) {
		return false
	}
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			rel, _ := filepath.Rel(root, path)
			for _, part := range strings.Split(rel, string(filepath.Separator)) {
				if strings.HasPrefix(part, ".") && part != "." {
					return false
				}
			}
			return true
		}
	}
	return false
}

// Run blocks until ctx is cancelled, invoking the rebuild function for every
// trigger. Rebuild errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	if w.opts.Interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	go w.events(ctx)

	if !w.opts.SkipInitial {
		w.trigger(ReasonStartup)
	}
	slog.Info("Watching for changes",
		logfields.Count(len(w.files)+len(w.roots)),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("interval", w.opts.Interval))

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil
		case reason := <-w.fire:
			start := time.Now()
			if err := w.rebuild(ctx, reason); err != nil {
				slog.Error("Rebuild failed", slog.String("reason", reason), logfields.Error(err))
				continue
			}
			slog.Info("Rebuild finished", slog.String("reason", reason),
				logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		}
	}
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.trigger, ReasonSchedule),
		gocron.WithName("catalog-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return s, nil
}

func (w *Watcher) events(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watchTree(ev.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.debounce()
}

// debounce restarts the quiet window; the rebuild fires once it elapses.
func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.trigger(ReasonChange) })
}

// trigger queues a rebuild unless one is already pending.
func (w *Watcher) trigger(reason string) {
	select {
	case w.fire <- reason:
	default:
	}
}
