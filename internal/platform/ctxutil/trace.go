package ctxutil

import "context"

type traceKey struct{}

// Trace carries the correlation ids the transport stamps on each
// request. The zero value means no ids were attached.
type Trace struct {
	TraceID   string
	RequestID string
}

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

func TraceFrom(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}
	t, _ := ctx.Value(traceKey{}).(Trace)
	return t
}

// Fields renders the ids as logger key-value pairs, skipping blanks.
func (t Trace) Fields() []any {
	var f []any
	if t.TraceID != "" {
		f = append(f, "trace_id", t.TraceID)
	}
	if t.RequestID != "" {
		f = append(f, "request_id", t.RequestID)
	}
	return f
}
