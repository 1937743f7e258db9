package site

import "time"

// WrittenPage describes one emitted page.
type WrittenPage struct {
	PageID      string
	Path        string
	ContentPath string // base content location, empty when the row had none
	Placeholder bool   // base content was synthesized
	Resources   int
	FrontMatter string
	Body        string
}

// Report summarizes one render run.
type Report struct {
	Start   time.Time
	End     time.Time
	Rows    int
	Written []WrittenPage
	Skipped int
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// ResourcesPlaced returns the number of resource entries rendered across all pages.
func (r *Report) ResourcesPlaced() int {
	n := 0
	for _, p := range r.Written {
		n += p.Resources
	}
	return n
}
