package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RateMetrics records exchange-rate fetch outcomes
type RateMetrics struct {
	fetches  metric.Int64Counter
	duration metric.Float64Histogram
	served   metric.Int64Counter
}

// NewRateMetrics creates the rate instruments on meter
func NewRateMetrics(meter metric.Meter) (*RateMetrics, error) {
	fetches, err := meter.Int64Counter("exchange_rate.fetches",
		metric.WithDescription("Upstream rate fetches by outcome"),
		metric.WithUnit("{fetch}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("exchange_rate.fetch.duration",
		metric.WithDescription("Upstream rate fetch latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DurationBuckets...))
	if err != nil {
		return nil, err
	}
	served, err := meter.Int64Counter("exchange_rate.snapshots_served",
		metric.WithDescription("Snapshots handed to callers by source"),
		metric.WithUnit("{snapshot}"))
	if err != nil {
		return nil, err
	}
	return &RateMetrics{fetches: fetches, duration: duration, served: served}, nil
}

// RecordFetch records one upstream fetch
func (m *RateMetrics) RecordFetch(ctx context.Context, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.fetches.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordServed counts a snapshot returned from source: memory, shared,
// upstream, stale or none.
func (m *RateMetrics) RecordServed(ctx context.Context, source string) {
	m.served.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
