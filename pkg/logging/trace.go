package logging

import "log/slog"

// EnableTrace turns on per-packet logging. Off by default; a busy export
// script sends dozens of packets per second.
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
