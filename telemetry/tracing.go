// Package telemetry provides OpenTelemetry tracing helpers for the planner.
//
// Spans are no-ops until the host installs a tracer provider through
// otel.SetTracerProvider or passes one to NewTracerFromProvider.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the tracer name used by default.
const InstrumentationName = "github.com/simora-app/planner"

// Tracer wraps OpenTelemetry tracing with planner-specific helpers.
type Tracer struct {
	tracer trace.Tracer
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
	}
	return globalTracer
}

// NewTracer creates a tracer from the global otel provider.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// NewTracerFromProvider creates a tracer from an explicit provider.
func NewTracerFromProvider(tp trace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: tp.Tracer(name)}
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// --- Planner Spans ---

// PlannerSpanOptions contains the attributes recorded on a planner span.
// Zero values are omitted.
type PlannerSpanOptions struct {
	Day     string
	From    string
	Tasks   int
	Due     int
	Current int
	Longest int
}

// StartPlannerSpan starts a span for a planner operation.
func (t *Tracer) StartPlannerSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "planner."+op, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("planner.op", op))
	return ctx, span
}

// EndPlannerSpan ends a planner span with attributes.
func (t *Tracer) EndPlannerSpan(span trace.Span, opts PlannerSpanOptions, err error) {
	var attrs []attribute.KeyValue
	if opts.Day != "" {
		attrs = append(attrs, attribute.String("planner.day", opts.Day))
	}
	if opts.From != "" {
		attrs = append(attrs, attribute.String("planner.from", opts.From))
	}
	attrs = append(attrs, attribute.Int("planner.tasks", opts.Tasks))
	if opts.Due > 0 {
		attrs = append(attrs, attribute.Int("planner.due", opts.Due))
	}
	if opts.Current > 0 || opts.Longest > 0 {
		attrs = append(attrs,
			attribute.Int("streak.current", opts.Current),
			attribute.Int("streak.longest", opts.Longest),
		)
	}
	span.SetAttributes(attrs...)
	endSpan(span, err)
}

// --- Store Spans ---

// StartStoreSpan starts a span for a store round trip.
func (t *Tracer) StartStoreSpan(ctx context.Context, op, prefix string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("store.op", op),
		attribute.String("store.prefix", prefix),
	)
	return ctx, span
}

// EndStoreSpan ends a store span.
func (t *Tracer) EndStoreSpan(span trace.Span, rows int, err error) {
	span.SetAttributes(attribute.Int("store.rows", rows))
	endSpan(span, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
