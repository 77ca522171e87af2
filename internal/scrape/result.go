// Package scrape fetches public profile pages and extracts the metrics the
// dashboard renders. Extraction rules are site-specific strategies behind the
// Extractor interface; the surrounding fetch/retry contract is shared.
package scrape

import "git.home.luguber.info/inful/dashboard/internal/config"

// Status tags the per-source outcome of a fetch.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Metrics is the structured payload extracted from a profile page.
// Zero counts mean "not present on the page"; renderers treat them as absent.
type Metrics struct {
	Name         string
	Publications int
	Citations    int
	HIndex       int
	I10Index     int
	Extra        map[string]string
}

// Result is the per-source outcome of one run: either an extracted payload or
// an explicit failure marker with a reason. Created per run, discarded after
// rendering.
type Result struct {
	Source  config.Source
	Status  Status
	Metrics Metrics
	Reason  string // set when Status == StatusUnavailable
}

// Available reports whether the result carries usable data.
func (r Result) Available() bool { return r.Status == StatusAvailable }

// Unavailable builds a failure result for a source.
func Unavailable(source config.Source, reason string) Result {
	return Result{Source: source, Status: StatusUnavailable, Reason: reason}
}
