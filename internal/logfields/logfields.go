// Package logfields holds the canonical slog attribute keys used by catalogbuilder.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPageID     = "page_id"
	KeyPath       = "path"
	KeyResource   = "resource"
	KeyKey        = "key"
	KeyRunID      = "run_id"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyError      = "error"
)

func PageID(id string) slog.Attr      { return slog.String(KeyPageID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Resource(id string) slog.Attr    { return slog.String(KeyResource, id) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
