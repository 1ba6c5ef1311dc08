package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrVersion = "version"
	attrEnv     = "env"
	attrMode    = "mode"

	redactedValue = "[redacted]"
)

// TracingHandler is an [slog.Handler] for gitsig logs. Every record carries the
// service identity and, inside a span, its trace_id and span_id. Attributes
// keyed like a signature identity (name, email, user.*) are masked.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. The service attributes of cfg are bound
// before any group so they stay top-level.
func NewTracingHandler(inner slog.Handler, cfg Config) *TracingHandler {
	return &TracingHandler{inner: inner.WithAttrs(serviceAttrs(cfg))}
}

func serviceAttrs(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String(attrService, cfg.ServiceName),
		slog.String(attrMode, string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String(attrVersion, cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, slog.String(attrEnv, cfg.Environment))
	}

	return attrs
}

func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))

		return true
	})

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		out.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := th.inner.Handle(ctx, out)
	if err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}

	return nil
}

func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = redact(a)
	}

	return &TracingHandler{inner: th.inner.WithAttrs(masked)}
}

func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}

// redact masks identity attributes, descending into groups.
func redact(a slog.Attr) slog.Attr {
	if isIdentityKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}

	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	masked := make([]any, len(group))

	for i, member := range group {
		masked[i] = redact(member)
	}

	return slog.Group(a.Key, masked...)
}
