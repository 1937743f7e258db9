// Package diagnostics collects the per-row notes a run produces while it keeps going.
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
)

// Severity indicates the importance level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Kind identifies what went wrong. Values are stable and used as metric labels.
type Kind string

const (
	KindDescriptorParse  Kind = "descriptor_parse"
	KindDescriptorNoKey  Kind = "descriptor_no_key"
	KindBlankPageID      Kind = "blank_page_id"
	KindInvalidNavOrder  Kind = "invalid_nav_order"
	KindMissingCategory  Kind = "missing_category"
	KindMissingContent   Kind = "missing_content"
	KindMissingMarker    Kind = "missing_marker"
	KindPlaceholderExist Kind = "placeholder_exists"
	KindTitleMatch       Kind = "title_match"

	KindFrontMatter    Kind = "front_matter"
	KindPageIDMismatch Kind = "page_id_mismatch"
	KindBrokenImage    Kind = "broken_image"
)

var defaultSeverity = map[Kind]Severity{
	KindDescriptorParse:  SeverityWarning,
	KindDescriptorNoKey:  SeverityWarning,
	KindBlankPageID:      SeverityWarning,
	KindInvalidNavOrder:  SeverityWarning,
	KindMissingCategory:  SeverityWarning,
	KindMissingContent:   SeverityInfo,
	KindMissingMarker:    SeverityInfo,
	KindPlaceholderExist: SeverityInfo,
	KindTitleMatch:       SeverityInfo,
	KindFrontMatter:      SeverityError,
	KindPageIDMismatch:   SeverityError,
	KindBrokenImage:      SeverityError,
}

// Diagnostic is one recorded note.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Subject  string // page id, descriptor path or file the note is about
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Kind, d.Subject, d.Message)
}

// Collector records diagnostics in order and logs each one as it arrives.
// A nil *Collector discards everything.
type Collector struct {
	logger *slog.Logger
	items  []Diagnostic
}

// NewCollector returns a collector logging through logger (slog.Default when nil).
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Add records a diagnostic with the kind's default severity.
func (c *Collector) Add(kind Kind, subject, format string, args ...any) {
	sev, ok := defaultSeverity[kind]
	if !ok {
		sev = SeverityWarning
	}
	c.AddWithSeverity(kind, sev, subject, format, args...)
}

// AddWithSeverity records a diagnostic with an explicit severity.
func (c *Collector) AddWithSeverity(kind Kind, sev Severity, subject, format string, args ...any) {
	if c == nil {
		return
	}
	d := Diagnostic{Kind: kind, Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)}
	c.items = append(c.items, d)

	level := slog.LevelInfo
	switch sev {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	c.logger.LogAttrs(context.Background(), level, d.Message,
		logfields.Kind(string(kind)), logfields.Key(subject))
}

// All returns the diagnostics in the order they were recorded.
func (c *Collector) All() []Diagnostic {
	if c == nil {
		return nil
	}
	return append([]Diagnostic(nil), c.items...)
}

// OfKind returns the diagnostics of one kind.
func (c *Collector) OfKind(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.All() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns the number of diagnostics per kind.
func (c *Collector) Counts() map[Kind]int {
	out := map[Kind]int{}
	for _, d := range c.All() {
		out[d.Kind]++
	}
	return out
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	for _, d := range c.All() {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// WriteSummary prints one line per kind, sorted by kind, followed by every
// diagnostic in the order it was recorded.
func (c *Collector) WriteSummary(w io.Writer) {
	counts := c.Counts()
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(w, "No diagnostics.")
		return
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	_, _ = fmt.Fprintf(w, "Diagnostics (%d):\n", c.Len())
	for _, k := range kinds {
		_, _ = fmt.Fprintf(w, "  %-20s %d\n", k, counts[Kind(k)])
	}
	for _, d := range c.All() {
		_, _ = fmt.Fprintf(w, "  - %s\n", d)
	}
}
