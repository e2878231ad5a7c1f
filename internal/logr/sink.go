package logr

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-logr/logr"
)

var _ logr.LogSink = (*logSink)(nil)

// logSink is a logr sink that writes to a slog handler, mapping logr
// v-levels onto slog levels: V(0) is INFO, V(1) is DEBUG, V(2) is DEBUG-1,
// and so on.
type logSink struct {
	handler slog.Handler
	name    string
}

func newLogSink(h slog.Handler) *logSink {
	return &logSink{handler: h}
}

func (s *logSink) Init(logr.RuntimeInfo) {}

func (s *logSink) Enabled(level int) bool {
	return s.handler.Enabled(context.Background(), toSlogLevel(level))
}

func (s *logSink) Info(level int, msg string, keysAndValues ...any) {
	s.log(toSlogLevel(level), msg, keysAndValues...)
}

func (s *logSink) Error(err error, msg string, keysAndValues ...any) {
	if err != nil {
		keysAndValues = append([]any{"error", err}, keysAndValues...)
	}
	s.log(slog.LevelError, msg, keysAndValues...)
}

func (s *logSink) log(level slog.Level, msg string, keysAndValues ...any) {
	var pcs [1]uintptr
	// skip [runtime.Callers, log, Info/Error, logr.Logger.Info/Error]
	runtime.Callers(4, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(keysAndValues...)
	_ = s.handler.Handle(context.Background(), r)
}

func (s *logSink) WithValues(keysAndValues ...any) logr.LogSink {
	attrs := slog.Group("", keysAndValues...).Value.Group()
	return &logSink{handler: s.handler.WithAttrs(attrs), name: s.name}
}

func (s *logSink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "/" + name
	}
	return &logSink{handler: s.handler.WithAttrs([]slog.Attr{slog.String("logger", name)}), name: name}
}

// LevelHandler wraps a Handler with an Enabled method that returns false for
// levels below a minimum.
//
// See: https://pkg.go.dev/log/slog#example-Handler-LevelHandler
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevelHandler returns a LevelHandler with the given level.
// All methods except Enabled delegate to h.
func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	// Optimization: avoid chains of LevelHandlers.
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.Handler()
	}
	return &LevelHandler{level, h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}

func (h *LevelHandler) Handler() slog.Handler {
	return h.handler
}
