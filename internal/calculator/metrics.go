package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	pressCounter metric.Int64Counter
	evalCounter  metric.Int64Counter
	evalDuration metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
)

// InitMetrics registers the calculator's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	pressCounter, err = meter.Int64Counter("calculator.presses.total",
		metric.WithDescription("Key presses applied to sessions, by key class"),
		metric.WithUnit("{press}"),
	)
	if err != nil {
		return fmt.Errorf("creating press counter: %w", err)
	}

	evalCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Formula evaluations, by outcome"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation counter: %w", err)
	}

	evalDuration, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of formula evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator request errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last successful evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
