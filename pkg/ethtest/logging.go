package ethtest

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	gethlog "github.com/ethereum/go-ethereum/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RouteGethLogs sends go-ethereum's internal logging (receipt polling,
// simulated backend) to log until the test finishes.
func RouteGethLogs(t testing.TB, log *zap.Logger) {
	prev := gethlog.Root()
	gethlog.SetDefault(gethlog.NewLogger(&zapHandler{log: log.Named("geth")}))
	t.Cleanup(func() { gethlog.SetDefault(prev) })
}

type zapHandler struct {
	log      *zap.Logger
	fields   []zap.Field
	groups   []string
	groupKey string
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.log.Core().Enabled(zapLevel(level))
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := append([]zap.Field(nil), h.fields...)
	r.Attrs(func(attr slog.Attr) bool {
		if !attr.Equal(slog.Attr{}) {
			fields = append(fields, h.field(attr))
		}
		return true
	})
	if ce := h.log.Check(zapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	dup := h.dup()
	for _, attr := range attrs {
		dup.fields = append(dup.fields, h.field(attr))
	}
	return dup
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	dup := h.dup()
	dup.groups = append(dup.groups, name)
	dup.groupKey = strings.Join(dup.groups, ".") + "."
	return dup
}

func (h *zapHandler) field(attr slog.Attr) zap.Field {
	return zap.Any(h.groupKey+attr.Key, attr.Value.Resolve().Any())
}

func (h *zapHandler) dup() *zapHandler {
	return &zapHandler{
		log:      h.log,
		fields:   append([]zap.Field(nil), h.fields...),
		groups:   append([]string(nil), h.groups...),
		groupKey: h.groupKey,
	}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
