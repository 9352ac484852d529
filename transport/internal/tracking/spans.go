package tracking

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "go-xmlrpc/transport"

	attrAttempts = "xmlrpc.attempts"
	attrBodySize = "http.request.body.size"
)

// StartCall opens the client span covering every attempt of one call.
func StartCall(ctx context.Context, method, endpoint string, bodySize int) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "xmlrpc "+method,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		semconv.URLFull(endpoint),
		attribute.Int(attrBodySize, bodySize),
	)
	return ctx, span
}

// EndCall records the outcome of the call on span and ends it.
func EndCall(span trace.Span, attempts int, err error, errorType string) {
	span.SetAttributes(attribute.Int(attrAttempts, attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errorType != "" {
			span.SetAttributes(attribute.String(attrErrorType, errorType))
		}
	}
	span.End()
}
