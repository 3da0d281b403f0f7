package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dseq")

// Collective starts a span around one collective operation (map,
// reduce, scan, repartition, ...), tagged with the calling rank and
// the cohort size. The returned func ends the span; callers defer it
// immediately:
//
//	ctx, end := telemetry.Collective(ctx, "reduce", rank, procs)
//	defer end()
//
// When tracing is disabled (Enabled() == false) this still returns a
// valid no-op span via the global no-op TracerProvider, so callers
// never need to branch on configuration.
func Collective(ctx context.Context, name string, rank, procs int) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("dseq.rank", rank),
		attribute.Int("dseq.procs", procs),
	))
	return ctx, func() { span.End() }
}
