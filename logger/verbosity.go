package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + reconciliation summaries
	VerbosityDebug = 2 // -vv: + SQL statements and per-item diffs
)

// VerbosityToLevel maps verbosity flags (-v, -vv) to zap log level names.
// A zero verbosity keeps the configured level.
func VerbosityToLevel(verbosity int, configured string) string {
	switch {
	case verbosity <= VerbosityUser:
		return configured
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel.String()
	default:
		return zapcore.DebugLevel.String()
	}
}
