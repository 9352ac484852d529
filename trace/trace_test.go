package trace

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestEnsureTraceIDUsesExisting(t *testing.T) {
	ctx := WithTraceID(context.Background(), "existing-trace-id")
	assert.Equal(t, "existing-trace-id", EnsureTraceID(ctx))
}

func TestEnsureTraceIDGeneratesWhenMissing(t *testing.T) {
	got := EnsureTraceID(context.Background())
	re := regexp.MustCompile(`^[a-f0-9\-]{36}$`)
	assert.True(t, re.MatchString(strings.ToLower(got)))
}

func TestEmptyTraceIDIsIgnored(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")
	_, ok := IDFromContext(ctx)
	assert.False(t, ok)
}

func TestTraceParentContextRoundTrip(t *testing.T) {
	in := "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01"
	ctx := WithTraceParent(context.Background(), in)
	out, ok := ParentFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestHeaders(t *testing.T) {
	t.Run("request id only", func(t *testing.T) {
		h := Headers(context.Background(), "req-1")
		assert.Equal(t, map[string]string{HeaderXRequestID: "req-1"}, h)
	})

	t.Run("with traceparent", func(t *testing.T) {
		ctx := WithTraceParent(context.Background(), "00-abc-def-01")
		h := Headers(ctx, "req-2")
		assert.Equal(t, "req-2", h[HeaderXRequestID])
		assert.Equal(t, "00-abc-def-01", h[HeaderTraceParent])
	})
}

func TestHeadersFromActiveSpan(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	traceID, err := oteltrace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("0123456789abcdef")
	require.NoError(t, err)

	sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: oteltrace.FlagsSampled,
	})
	ctx := oteltrace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithTraceParent(ctx, "00-abc-def-01")

	h := Headers(ctx, "req-3")
	assert.Equal(t, "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01", h[HeaderTraceParent])
	assert.Equal(t, "req-3", h[HeaderXRequestID])
}
