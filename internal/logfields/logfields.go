package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyComponent  = "component"
	KeyStep       = "step"
	KeyBranch     = "branch"
	KeyVersion    = "version"
	KeyFallback   = "fallback"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyRef        = "ref"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Step(s string) slog.Attr         { return slog.String(KeyStep, s) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Fallback(f bool) slog.Attr       { return slog.Bool(KeyFallback, f) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
