// Package ledger keeps a history of generation runs and the fingerprint of
// every page each run wrote, so consecutive runs can be compared.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// Memory opens a ledger that lives only as long as the process.
const Memory = ":memory:"

// Run is one generation run.
type Run struct {
	ID          string
	Started     time.Time
	Finished    time.Time
	Rows        int
	Written     int
	Skipped     int
	Resources   int
	Diagnostics int
}

// Page is one page written by a run.
type Page struct {
	PageID      string
	Path        string
	Fingerprint string
	Resources   int
}

// Status classifies a page between two runs.
type Status string

const (
	StatusAdded     Status = "added"
	StatusChanged   Status = "changed"
	StatusRemoved   Status = "removed"
	StatusUnchanged Status = "unchanged"
)

// Change is the status of one page relative to the previous run.
type Change struct {
	PageID string
	Status Status
}

// Ledger is a SQLite-backed run history.
type Ledger struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Fingerprint hashes a page's front matter block and body.
func Fingerprint(frontMatter, body string) string {
	return mdfp.CalculateFingerprintFromParts(frontMatter, body)
}

// Open opens or creates the ledger at path. Use Memory for a throwaway ledger.
func Open(path string) (*Ledger, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.LedgerError("cannot create ledger directory").WithCause(err).
				WithContext("path", path).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.LedgerError("open sqlite database").WithCause(err).WithContext("path", path).Build()
	}
	// one connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db}
	if err := l.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.LedgerError("initialize ledger schema").WithCause(err).WithContext("path", path).Build()
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		rows_total INTEGER NOT NULL,
		written INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		resources INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS pages (
		run_id TEXT NOT NULL REFERENCES runs(id),
		page_id TEXT NOT NULL,
		path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		resources INTEGER NOT NULL,
		PRIMARY KEY (run_id, page_id)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_page_id ON pages(page_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores a run and its pages atomically. A page id written twice in
// one run keeps the last record.
func (l *Ledger) Record(ctx context.Context, run Run, pages []Page) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return ledgerError(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, finished, rows_total, written, skipped, resources, diagnostics)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Started.UnixMilli(), run.Finished.UnixMilli(),
		run.Rows, run.Written, run.Skipped, run.Resources, run.Diagnostics)
	if err != nil {
		return ledgerError(err, "insert run")
	}
	for _, p := range pages {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO pages (run_id, page_id, path, fingerprint, resources) VALUES (?, ?, ?, ?, ?)`,
			run.ID, p.PageID, p.Path, p.Fingerprint, p.Resources)
		if err != nil {
			return ledgerError(err, "insert page")
		}
	}
	if err := tx.Commit(); err != nil {
		return ledgerError(err, "commit run")
	}
	return nil
}

// LastRun returns the most recently recorded run; ok is false when there is none.
func (l *Ledger) LastRun(ctx context.Context) (run Run, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runWhere(ctx, "ORDER BY seq DESC LIMIT 1")
}

// Runs returns up to limit runs, newest first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx, selectRun+" ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, ledgerError(err, "query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerError(err, "iterate runs")
	}
	return out, nil
}

// PagesForRun returns the pages of a run ordered by page id.
func (l *Ledger) PagesForRun(ctx context.Context, runID string) ([]Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pagesForRun(ctx, runID)
}

// Changed compares a run with the run recorded before it. Every page of
// either run appears once, ordered by page id. The first run reports all its
// pages as added.
func (l *Ledger) Changed(ctx context.Context, runID string) ([]Change, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.pagesForRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	prev, ok, err := l.runWhere(ctx,
		"WHERE seq < (SELECT seq FROM runs WHERE id = ?) ORDER BY seq DESC LIMIT 1", runID)
	if err != nil {
		return nil, err
	}
	var before []Page
	if ok {
		if before, err = l.pagesForRun(ctx, prev.ID); err != nil {
			return nil, err
		}
	}
	return diff(before, current), nil
}

func diff(before, after []Page) []Change {
	old := make(map[string]string, len(before))
	for _, p := range before {
		old[p.PageID] = p.Fingerprint
	}
	var out []Change
	for _, p := range after {
		fp, seen := old[p.PageID]
		switch {
		case !seen:
			out = append(out, Change{PageID: p.PageID, Status: StatusAdded})
		case fp != p.Fingerprint:
			out = append(out, Change{PageID: p.PageID, Status: StatusChanged})
		default:
			out = append(out, Change{PageID: p.PageID, Status: StatusUnchanged})
		}
		delete(old, p.PageID)
	}
	for id := range old {
		out = append(out, Change{PageID: id, Status: StatusRemoved})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageID < out[j].PageID })
	return out
}

// Summarize counts changes by status.
func Summarize(changes []Change) map[Status]int {
	out := map[Status]int{}
	for _, c := range changes {
		out[c.Status]++
	}
	return out
}

const selectRun = `SELECT id, started, finished, rows_total, written, skipped, resources, diagnostics FROM runs`

func (l *Ledger) runWhere(ctx context.Context, clause string, args ...any) (Run, bool, error) {
	row := l.db.QueryRowContext(ctx, selectRun+" "+clause, args...)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return r, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var started, finished int64
	err := s.Scan(&r.ID, &started, &finished, &r.Rows, &r.Written, &r.Skipped, &r.Resources, &r.Diagnostics)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, ledgerError(err, "scan run")
	}
	r.Started = time.UnixMilli(started)
	r.Finished = time.UnixMilli(finished)
	return r, nil
}

func (l *Ledger) pagesForRun(ctx context.Context, runID string) ([]Page, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT page_id, path, fingerprint, resources FROM pages WHERE run_id = ? ORDER BY page_id", runID)
	if err != nil {
		return nil, ledgerError(err, "query pages")
	}
	defer rows.Close()

	var out []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.PageID, &p.Path, &p.Fingerprint, &p.Resources); err != nil {
			return nil, ledgerError(err, "scan page")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerError(err, "iterate pages")
	}
	return out, nil
}

func ledgerError(err error, op string) error {
	return errors.LedgerError(fmt.Sprintf("ledger: %s", op)).WithCause(err).Build()
}
