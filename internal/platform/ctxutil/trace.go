package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates a request with its otel trace. RequestID echoes
// X-Request-Id when the caller sent one and is random otherwise.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}
