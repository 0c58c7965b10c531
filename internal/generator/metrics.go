package generator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/sabrish/power-platform-solution-blueprint-sub000/internal/generator"

var (
	generationCounter  metric.Int64Counter
	generationDuration metric.Float64Histogram
)

func init() {
	meter := otel.Meter(instrumentationName)
	var err error
	generationCounter, err = meter.Int64Counter("blueprint.generations",
		metric.WithDescription("Completed blueprint generation runs by outcome."))
	if err != nil {
		otel.Handle(err)
	}
	generationDuration, err = meter.Float64Histogram("blueprint.generation.duration",
		metric.WithDescription("Wall-clock duration of a generation run."),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}
}

// recordGeneration records one finished run. Without a metrics SDK installed
// the global provider is a no-op, so recording costs nothing in tests and
// CLI use.
func recordGeneration(ctx context.Context, elapsed time.Duration, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	generationCounter.Add(ctx, 1, attrs)
	generationDuration.Record(ctx, elapsed.Seconds(), attrs)
}
