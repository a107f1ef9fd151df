// Package tracing records a span tree per invocation and propagates it
// through context. Spans are emitted as structured slog records once the
// root ends; a context without a root span makes every call a no-op.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const spanKey contextKey = "trace_span"

// Span represents a timed stage of an invocation.
type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any
	Err       error
	mu        sync.Mutex
}

// StartSpan creates a new root span and stores it in the returned context.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	span := &Span{
		Name:      name,
		TraceID:   traceID,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
	return context.WithValue(ctx, spanKey, span), span
}

// StartChildSpan creates a child of the span in ctx. Without a parent it
// returns ctx unchanged and a nil span; all Span methods accept nil.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	child := &Span{
		Name:      name,
		TraceID:   parent.TraceID,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
	parent.mu.Lock()
	parent.Children = append(parent.Children, child)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey, child), child
}

// End records the span's duration and the error, if any, that ended it.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Duration = time.Since(s.StartTime)
	s.Err = err
	s.mu.Unlock()
}

// SetAttr attaches a key-value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// SpanFromContext extracts the current Span from ctx, or nil if none.
func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// Log writes the span tree to logger, depth first.
func (s *Span) Log(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logRecursive(logger, 0)
}

func (s *Span) logRecursive(logger *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	if s.Err != nil {
		attrs = append(attrs, "error", s.Err.Error())
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	logger.Info("span", attrs...)
	for _, child := range children {
		child.logRecursive(logger, depth+1)
	}
}
