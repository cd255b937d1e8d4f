package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the pretty handler.
//
//nolint:gochecknoglobals
var (
	styleTime  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleMsg   = lipgloss.NewStyle().Bold(true)
	styleStr   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleNum   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTrue  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	styleLevel = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// prettyHandler implements a colorized text handler for log messages.
type prettyHandler struct {
	mu         *sync.Mutex
	w          io.Writer
	formatTime FormatTime
	level      Level
	attrs      []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	formatTime FormatTime,
	level Level,
) *prettyHandler {
	return &prettyHandler{
		mu:         &sync.Mutex{},
		w:          w,
		formatTime: formatTime,
		level:      level,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.level)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if formatted := h.formatTime(r.Time); formatted != "" {
			buf.WriteString(styleTime.Render(formatted))
			buf.WriteByte(' ')
		}
	}

	level := Level(r.Level)

	style, ok := styleLevel[level]
	if !ok {
		style = styleMsg
	}

	buf.WriteString(style.Render(padLevel(level)))
	buf.WriteByte(' ')
	buf.WriteString(styleMsg.Render(r.Message))

	for _, a := range h.attrs {
		h.writeAttr(buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *prettyHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; the runner's log records are shallow.
	return h
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			h.writeAttr(buf, member)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(styleKey.Render(a.Key + "="))
	buf.WriteString(renderValue(a.Value))
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return styleStr.Render(v.String())

	case slog.KindInt64:
		return styleNum.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return styleNum.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return styleNum.Render(
			strconv.FormatFloat(v.Float64(), 'g', -1, 64),
		)

	case slog.KindBool:
		if v.Bool() {
			return styleTrue.Render("true")
		}

		return styleFalse.Render("false")

	case slog.KindDuration:
		return styleNum.Render(v.Duration().String())

	case slog.KindTime:
		return styleTime.Render(v.Time().Format(time.RFC3339))

	default:
		return styleStr.Render(v.String())
	}
}

// padLevel right-pads level names so messages align in column output.
func padLevel(l Level) string {
	name := l.String()
	for len(name) < 5 {
		name += " "
	}

	return name
}
