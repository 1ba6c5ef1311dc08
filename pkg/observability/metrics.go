package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricConversionsTotal   = "gitsig.conversions.total"
	metricConversionDuration = "gitsig.conversion.duration.seconds"
	metricErrorsTotal        = "gitsig.errors.total"

	attrOp      = "op"
	attrOutcome = "outcome"

	outcomeOK = "ok"
)

// durationBucketBoundaries covers 10µs to 1s; conversions are in-memory
// except for the config reads behind default identities.
var durationBucketBoundaries = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// ConversionMetrics holds the OTel instruments for signature conversions.
type ConversionMetrics struct {
	conversionsTotal   metric.Int64Counter
	conversionDuration metric.Float64Histogram
	errorsTotal        metric.Int64Counter
}

// NewConversionMetrics creates conversion instruments from the given meter.
func NewConversionMetrics(mt metric.Meter) (*ConversionMetrics, error) {
	total, err := mt.Int64Counter(metricConversionsTotal,
		metric.WithDescription("Total number of signature conversions"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricConversionsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricConversionDuration,
		metric.WithDescription("Signature conversion duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricConversionDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed signature conversions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	return &ConversionMetrics{
		conversionsTotal:   total,
		conversionDuration: duration,
		errorsTotal:        errTotal,
	}, nil
}

// RecordConversion records a finished conversion with its operation, outcome and duration.
// Any outcome other than "ok" also counts as an error of that kind.
func (cm *ConversionMetrics) RecordConversion(ctx context.Context, op, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrOutcome, outcome),
	)

	cm.conversionsTotal.Add(ctx, 1, attrs)
	cm.conversionDuration.Record(ctx, duration.Seconds(), attrs)

	if outcome != outcomeOK {
		cm.errorsTotal.Add(ctx, 1, attrs)
	}
}
