package metrics

import "time"

// ResultLabel enumerates fetch result categories for counters.
type ResultLabel string

const (
	ResultAvailable   ResultLabel = "available"
	ResultUnavailable ResultLabel = "unavailable"
	ResultSkipped     ResultLabel = "skipped"
)

// Recorder defines observability hooks for run and fetch metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil
// receivers when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveFetchDuration(source string, d time.Duration, success bool)
	IncFetchResult(source string, result ResultLabel)
	IncFetchRetry(source string)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(changed bool)
	SetSectionsUnavailable(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncFetchResult(string, ResultLabel)               {}
func (NoopRecorder) IncFetchRetry(string)                             {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                 {}
func (NoopRecorder) IncRunOutcome(bool)                               {}
func (NoopRecorder) SetSectionsUnavailable(int)                       {}
