package runner

import (
	"log/slog"
	"strconv"
)

// ExecutionError reports a body line that exited with a non-zero status.
// It carries enough context to tell the user which recipe and line failed
// and to propagate the subprocess's own exit code out of the CLI.
type ExecutionError struct {
	Recipe   string
	Line     int // 1-based source line of the failing command
	Command  string
	ExitCode int
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return "recipe " + strconv.Quote(e.Recipe) +
		" failed on line " + strconv.Itoa(e.Line) +
		" with exit code " + strconv.Itoa(e.ExitCode)
}

// LogValue implements slog.LogValuer for structured logging.
func (e *ExecutionError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("recipe", e.Recipe),
		slog.Int("line", e.Line),
		slog.String("command", e.Command),
		slog.Int("exit_code", e.ExitCode),
	)
}
