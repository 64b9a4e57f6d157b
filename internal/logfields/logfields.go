package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyFile        = "file"
	KeyVersion     = "version"
	KeyTool        = "tool"
	KeyToolVersion = "tool_version"
	KeyParameter   = "parameter"
	KeyAnchor      = "anchor"
	KeyRefID       = "ref_id"
	KeyCategory    = "category"
	KeyCount       = "count"
	KeyOutcome     = "outcome"
	KeyRevision    = "revision"
	KeyTrigger     = "trigger"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Version(v string) slog.Attr       { return slog.String(KeyVersion, v) }
func Tool(bin string) slog.Attr        { return slog.String(KeyTool, bin) }
func ToolVersion(v string) slog.Attr   { return slog.String(KeyToolVersion, v) }
func Parameter(name string) slog.Attr  { return slog.String(KeyParameter, name) }
func Anchor(a string) slog.Attr        { return slog.String(KeyAnchor, a) }
func RefID(id string) slog.Attr        { return slog.String(KeyRefID, id) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Revision(r string) slog.Attr      { return slog.String(KeyRevision, r) }
func Trigger(reason string) slog.Attr  { return slog.String(KeyTrigger, reason) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
