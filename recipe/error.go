package recipe

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse               = NewError("syntax error")
	ErrDefinitionConflict  = NewError("definition conflict")
	ErrDependencyCycle     = NewError("dependency cycle")
	ErrUnknownRecipe       = NewError("unknown recipe")
	ErrNoDefaultRecipe     = NewError("no default recipe")
	ErrMissingArgument     = NewError("missing argument")
	ErrTooManyArguments    = NewError("too many arguments")
	ErrUnresolvedReference = NewError("unresolved reference")
	ErrType                = NewError("type error")
	ErrUnknownSetting      = NewError("unknown setting")
	ErrReadInput           = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	base  *Error      // Originating sentinel (for errors.Is)
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
// This keeps errors.Is working across the chained With/Wrap/WithPosition
// constructors, which return new instances.
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok {
		return e.base != nil && e.base == other.base
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		base:  e.base,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		base:  e.base,
		err:   e.err,
		attrs: newAttrs,
	}
}

// WithPosition adds source position attributes to the error.
func (e *Error) WithPosition(pos Position) *Error {
	return e.With(
		slog.Int("line", pos.Line),
		slog.Int("column", pos.Column),
	)
}

// SyntaxError is a parse-time error carrying the source position and an
// expected-token description. When the source text is attached, Error
// renders the offending line with a caret marker beneath it.
type SyntaxError struct {
	Err      *Error
	Pos      Position
	Source   string // The original source input
	Expected string // Description of the expected token(s)
}

// newSyntaxError constructs a SyntaxError derived from ErrParse.
func newSyntaxError(pos Position, expected string) *SyntaxError {
	return &SyntaxError{
		Err:      ErrParse.WithPosition(pos),
		Pos:      pos,
		Expected: expected,
	}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Source != "" {
		buf.WriteString(":\n")
		buf.WriteString(e.snippet())
	}

	if e.Expected != "" {
		buf.WriteString("\texpected: ")
		buf.WriteString(e.Expected)
	}

	return buf.String()
}

// Unwrap exposes the underlying Error for errors.Is/As.
func (e *SyntaxError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if e.Expected != "" {
		attrs = append(attrs, slog.String("expected", e.Expected))
	}

	return slog.GroupValue(attrs...)
}

// snippet renders the offending source line with a caret marker.
func (e *SyntaxError) snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	var buf strings.Builder

	lineNum := strconv.Itoa(e.Pos.Line)

	buf.WriteString("  ")
	buf.WriteString(lineNum)
	buf.WriteString(" | ")
	buf.WriteString(lines[e.Pos.Line-1])
	buf.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(lineNum)+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	buf.WriteString(padding + "^\n")

	return buf.String()
}

// Position identifies a location in recipe source text.
// Line and Column are 1-based; Offset is the 0-based byte offset within the
// line (not the whole source).
type Position struct {
	Offset int
	Line   int
	Column int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
