package logger

import (
	"context"
	"sync/atomic"
)

type contextKey string

const (
	// rpcCounterKey tracks how many transport calls a request context issued
	rpcCounterKey contextKey = "rpc_call_counter"
	// rpcElapsedKey tracks the total transport time of a request context
	rpcElapsedKey contextKey = "rpc_elapsed_nanos"
)

// WithRPCCounter returns a context that accumulates transport call counts and
// elapsed time, so a caller issuing several calls can report totals.
func WithRPCCounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, rpcCounterKey, &counter)
	ctx = context.WithValue(ctx, rpcElapsedKey, &elapsed)
	return ctx
}

// IncrementRPCCounter increments the call counter in the context, if present
func IncrementRPCCounter(ctx context.Context) {
	if counter, ok := ctx.Value(rpcCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// GetRPCCounter returns the current call count from the context
func GetRPCCounter(ctx context.Context) int64 {
	if counter, ok := ctx.Value(rpcCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// AddRPCElapsed adds elapsed nanoseconds to the context total
func AddRPCElapsed(ctx context.Context, nanos int64) {
	if elapsed, ok := ctx.Value(rpcElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, nanos)
	}
}

// GetRPCElapsed returns the accumulated elapsed nanoseconds from the context
func GetRPCElapsed(ctx context.Context) int64 {
	if elapsed, ok := ctx.Value(rpcElapsedKey).(*int64); ok && elapsed != nil {
		return atomic.LoadInt64(elapsed)
	}
	return 0
}
