package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("toto/internal/interfaces/httpapi")

// startSpan opens child spans for handlers only. Middleware and response
// helpers, and requests otelhttp skipped (/healthz, /metrics), reuse the
// current span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	current := trace.SpanFromContext(ctx)
	if !current.SpanContext().IsValid() || !isHandlerSpan(name) {
		return ctx, nonEnding{current}
	}
	return apiTracer.Start(ctx, name)
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}

// nonEnding hands out the current span without letting the caller end it.
type nonEnding struct {
	trace.Span
}

func (nonEnding) End(...trace.SpanEndOption) {}
