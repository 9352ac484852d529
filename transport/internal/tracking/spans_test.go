package tracking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracerProvider(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func spanAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestCallSpanSuccess(t *testing.T) {
	recorder := setupTestTracerProvider(t)

	ctx, span := StartCall(context.Background(), "POST", "http://erp/xmlrpc/2/common", 96)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	EndCall(span, 2, nil, "")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]

	assert.Equal(t, "xmlrpc POST", s.Name())
	assert.Equal(t, trace.SpanKindClient, s.SpanKind())
	assert.Equal(t, codes.Unset, s.Status().Code)

	v, ok := spanAttr(s.Attributes(), "url.full")
	require.True(t, ok)
	assert.Equal(t, "http://erp/xmlrpc/2/common", v.AsString())

	v, ok = spanAttr(s.Attributes(), attrBodySize)
	require.True(t, ok)
	assert.Equal(t, int64(96), v.AsInt64())

	v, ok = spanAttr(s.Attributes(), attrAttempts)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt64())
}

func TestCallSpanFailure(t *testing.T) {
	recorder := setupTestTracerProvider(t)

	_, span := StartCall(context.Background(), "POST", "http://erp/xmlrpc", 0)
	EndCall(span, 3, errors.New("connection refused"), "transport")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]

	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "connection refused", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)

	v, ok := spanAttr(s.Attributes(), attrErrorType)
	require.True(t, ok)
	assert.Equal(t, "transport", v.AsString())
}
