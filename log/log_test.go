package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Make_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v",
			DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v",
			DefaultFormat, logger.Format())
	}
}

func TestLogger_ZeroValue_IsNoOp(t *testing.T) {
	var logger Logger

	// Must not panic, and must report defaults.
	logger.Trace("trace")
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	if logger.Level() != DefaultLevel {
		t.Errorf("zero logger level: expected %v, got %v",
			DefaultLevel, logger.Level())
	}

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on a zero logger should remain zero")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false))

	// Default level is warn.
	logger.Info("quiet message")

	if buf.Len() > 0 {
		t.Errorf("info message logged at default level: %q", buf.String())
	}

	logger.Warn("loud message")

	if !strings.Contains(buf.String(), "loud message") {
		t.Error("warn message not logged at default level")
	}

	buf.Reset()

	verbose := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	verbose.Trace("trace message")

	if !strings.Contains(buf.String(), "trace message") {
		t.Error("trace message not logged at trace level")
	}
}

func TestLogger_TraceLevelLabel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	logger.Trace("labeled")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	// slog would render the custom level as "DEBUG-4".
	if record["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", record["level"])
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithLevel(LevelInfo),
		WithTimeLayout("none"),
	)
	logger.Info("test message", slog.String("key", "value"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if record["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", record["msg"])
	}

	if record["key"] != "value" {
		t.Errorf("expected key=value, got %v", record["key"])
	}

	if _, present := record["time"]; present {
		t.Error("empty time layout should omit timestamps")
	}
}

func TestLogger_With_IncludesAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithLevel(LevelInfo),
	).With(slog.String("recipe", "build"))

	logger.Info("attached")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if record["recipe"] != "build" {
		t.Errorf("expected recipe=build from With, got %v", record["recipe"])
	}
}

func TestLogger_Wrap_OverridesConfig(t *testing.T) {
	var base, wrapped bytes.Buffer

	logger := Make(&base, WithLevel(LevelError), WithPretty(false))

	loud := logger.Wrap(WithOutput(&wrapped), WithLevel(LevelDebug))
	loud.Debug("rewired")

	if base.Len() > 0 {
		t.Errorf("original writer received wrapped output: %q", base.String())
	}

	if !strings.Contains(wrapped.String(), "rewired") {
		t.Errorf("wrapped logger output missing: %q", wrapped.String())
	}

	// The original logger is unchanged.
	if logger.Level() != LevelError {
		t.Errorf("wrap mutated the original level: %v", logger.Level())
	}
}
