package metrics

import "time"

// Outcome is the final status of a generation run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning" // finished with diagnostics
	OutcomeFailed  Outcome = "failed"
)

// Stage names used with ObserveStageDuration.
const (
	StageSync      = "sync"
	StageLoadPages = "load_pages"
	StageResources = "load_resources"
	StageRender    = "render"
	StageLedger    = "ledger"
)

// Recorder defines the hooks a run reports through. Implementations must be
// safe to call on every run.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	AddPagesWritten(n int)
	AddPagesSkipped(n int)
	SetResourcesLoaded(n int)
	IncDiagnostic(kind string)
	IncRunOutcome(outcome Outcome)
	IncSourceSync(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) AddPagesWritten(int)                        {}
func (NoopRecorder) AddPagesSkipped(int)                        {}
func (NoopRecorder) SetResourcesLoaded(int)                     {}
func (NoopRecorder) IncDiagnostic(string)                       {}
func (NoopRecorder) IncRunOutcome(Outcome)                      {}
func (NoopRecorder) IncSourceSync(bool)                         {}
