// Package logging assembles structured slog loggers and formatting helpers used
// across pkaprep.
//
// It owns the configurable console/JSON handlers, the optional JSON mirror
// into per-process log files, and context-aware helpers so launcher code can
// tag log lines with run identifiers and stage names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Logs are written to stderr; stdout belongs to the launched stage programs.
package logging
