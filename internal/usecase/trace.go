package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("toto/internal/usecase")

// startUsecaseSpan only starts a child span; calls without a traced parent
// (scheduler runs outside a sweep span, tests) stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func roundAttr(roundID string) attribute.KeyValue {
	return attribute.String("toto.round_id", roundID)
}

func gameAttr(gameID string) attribute.KeyValue {
	return attribute.String("toto.game_id", gameID)
}
