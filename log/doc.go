// Package log provides structured logging for chore built on [log/slog].
//
// The package maintains a default logger configured once by the CLI and used
// everywhere else through package-level functions. All diagnostic output goes
// to stderr; stdout is reserved for recipe subprocess output and command
// results.
//
// A Trace level below [slog.LevelDebug] is provided for parser and evaluator
// instrumentation.
package log
