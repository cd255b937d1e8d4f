// Package recipe implements the chore recipe language: a line-oriented
// declarative format describing named, parameterized sequences of shell
// commands.
//
// A source file contains four kinds of top-level items:
//
//   - settings:   set shell := "sh -cu"
//   - variables:  profile := "dev"   (export VAR := ... to export)
//   - aliases:    alias b := build
//   - recipes:    build target profile="dev" *flags: fmt lint
//
// Recipe bodies are indented lines beneath the header. Each body line is a
// shell command, optionally prefixed with @ (quiet) or - (ignore failure),
// or a nested invocation of another recipe written as "> name args...".
// Body lines interpolate {{ expression }} segments.
//
// Expressions have exactly one value type, string, and support literals,
// references, concatenation with +, a lazy string-equality conditional
// (a == b ? x : y), and a small set of built-in functions.
//
// ParseString performs the entire load phase: parsing, conflict detection,
// variable store resolution, and dependency cycle detection. The resulting
// Document is immutable. Binding arguments and executing recipes is the
// runner package's concern.
package recipe
