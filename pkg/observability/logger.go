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
	attrEnv     = "env"
	attrMode    = "mode"
	attrViz     = "viz"
)

type vizKey struct{}

// ContextWithViz tags ctx with a component instance id. Records logged with
// that context carry it as the "viz" attribute.
func ContextWithViz(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, vizKey{}, id)
}

// VizFromContext returns the instance id stored by ContextWithViz.
func VizFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(vizKey{}).(string)

	return id, ok
}

// TracingHandler is an [slog.Handler] that adds the active span's trace and
// span ids, the component instance from the context, and fixed service
// metadata to every record. Service metadata is attached before any group so
// it always stays at the top level.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next with service, mode and (when set) env attributes.
func NewTracingHandler(next slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	fixed := []slog.Attr{slog.String(attrService, service), slog.String(attrMode, string(appMode))}
	if env != "" {
		fixed = append(fixed, slog.String(attrEnv, env))
	}

	return &TracingHandler{next: next.WithAttrs(fixed)}
}

// Enabled delegates to the wrapped handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.next.Enabled(ctx, level)
}

// Handle decorates the record from ctx, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if id, ok := VizFromContext(ctx); ok {
		record.AddAttrs(slog.String(attrViz, id))
	}

	if err := th.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a TracingHandler whose wrapped handler carries attrs.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: th.next.WithAttrs(attrs)}
}

// WithGroup returns a TracingHandler whose wrapped handler opens group name.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: th.next.WithGroup(name)}
}
