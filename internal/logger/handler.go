package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiPurple = "\033[35m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[37m"
	ansiWhite  = "\033[97m"
)

// PrettyHandler renders slog records as single colored lines for local
// development. Production deployments should swap in slog.NewJSONHandler.
type PrettyHandler struct {
	level slog.Leveler
	w     io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{level: level, w: w, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	fmt.Fprintf(&line, "%s%s%s ", ansiGray, r.Time.Format("15:04:05.000"), ansiReset)
	fmt.Fprintf(&line, "%s%-5s%s ", levelColor(r.Level), r.Level.String(), ansiReset)
	fmt.Fprintf(&line, "%s%s%s", ansiWhite, r.Message, ansiReset)

	for _, a := range h.attrs {
		h.appendAttr(&line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&line, a)
		return true
	})
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiGreen
	default:
		return ansiPurple
	}
}

func (h *PrettyHandler) appendAttr(line *strings.Builder, a slog.Attr) {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}

	val := a.Value.Any()
	if t, ok := val.(time.Time); ok {
		val = t.Format(time.RFC3339)
	}

	fmt.Fprintf(line, " %s%s%s=%v", ansiCyan, key, ansiReset, val)
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}
