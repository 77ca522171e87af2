package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeySection    = "section"
	KeySource     = "source"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyChanged    = "changed"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Changed(c bool) slog.Attr        { return slog.Bool(KeyChanged, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
