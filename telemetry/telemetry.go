// Package telemetry provides logging, metrics, and tracing for the planning
// pipeline. Logger wraps goa.design/clue/log, Metrics and Tracer wrap OTEL,
// and a Diagnostic writer emits the ";"-prefixed lines the CLI contract (§6)
// requires on standard output, in addition to structured log fields.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type (
	// Logger is the structured logging seam used throughout the pipeline.
	Logger interface {
		Debug(ctx context.Context, msg string, keyvals ...any)
		Info(ctx context.Context, msg string, keyvals ...any)
		Warn(ctx context.Context, msg string, keyvals ...any)
		Error(ctx context.Context, msg string, keyvals ...any)
	}

	// Metrics records counters and gauges describing search progress.
	Metrics interface {
		IncCounter(name string, value float64, tags ...string)
		RecordGauge(name string, value float64, tags ...string)
		RecordTimer(name string, d time.Duration, tags ...string)
	}

	// Tracer starts spans around pipeline stages.
	Tracer interface {
		Start(ctx context.Context, name string) (context.Context, Span)
	}

	// Span is a single unit of traced work.
	Span interface {
		End()
		SetAttribute(key string, value any)
		RecordError(err error)
	}
)

// otelSpan adapts an OTEL span to the Span interface without leaking the
// OTEL attribute-construction API into callers.
type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End() { s.span.End() }

func (s otelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s otelSpan) RecordError(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
}
