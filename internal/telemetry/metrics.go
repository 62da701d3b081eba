package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter     metric.Meter
	meterOnce sync.Once

	tierOutcomes     metric.Int64Counter
	fetchLatencyMs   metric.Float64Histogram
	documentTokens   metric.Int64Histogram
	publishLatencyMs metric.Float64Histogram
	publishErrors    metric.Int64Counter
	tasksInFlight    metric.Int64Gauge
)

// initMeter lazily initializes the meter and instruments. It uses the global
// meter provider, which will be a noop if metrics are not configured.
// Recorders call it unconditionally; the Once orders its writes before
// every instrument read.
func initMeter() {
	meterOnce.Do(func() {
		meter = otel.Meter(serviceName)

		var err error
		if tierOutcomes, err = meter.Int64Counter("pricing.fetch.tier_outcomes"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.fetch.tier_outcomes", "error", err)
		}
		if fetchLatencyMs, err = meter.Float64Histogram("pricing.fetch.latency_ms"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.fetch.latency_ms", "error", err)
		}
		if documentTokens, err = meter.Int64Histogram("pricing.document.tokens"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.document.tokens", "error", err)
		}
		if publishLatencyMs, err = meter.Float64Histogram("pricing.publish.latency_ms"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.publish.latency_ms", "error", err)
		}
		if publishErrors, err = meter.Int64Counter("pricing.publish.errors"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.publish.errors", "error", err)
		}
		if tasksInFlight, err = meter.Int64Gauge("pricing.tasks.in_flight"); err != nil {
			slog.Warn("failed to create metric", "name", "pricing.tasks.in_flight", "error", err)
		}
	})
}

// RecordTierOutcome counts one attempt at a source tier (remote, fixture,
// baseline) with its result ("ok", "unavailable", "parse_error", "empty").
func RecordTierOutcome(ctx context.Context, provider, tier, result string) {
	initMeter()
	if tierOutcomes == nil {
		return
	}

	tierOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("tier", tier),
		attribute.String("result", result),
	))
}

// ObserveFetchLatency records a remote document request in milliseconds.
func ObserveFetchLatency(ctx context.Context, provider string, status int, result string, d time.Duration) {
	initMeter()
	if fetchLatencyMs == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("result", result),
		attribute.Int("status", status),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String("provider", provider))
	}

	fetchLatencyMs.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordDocumentTokens records the token size of an obtained source document.
func RecordDocumentTokens(ctx context.Context, provider, tier string, tokens int) {
	initMeter()
	if documentTokens == nil {
		return
	}

	documentTokens.Record(ctx, int64(tokens), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("tier", tier),
	))
}

// ObservePublishLatency records a Redis publish operation in milliseconds.
func ObservePublishLatency(ctx context.Context, op, result string, d time.Duration) {
	initMeter()
	if publishLatencyMs == nil {
		return
	}

	publishLatencyMs.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", result),
	))
}

// IncPublishError increments the publish error counter.
func IncPublishError(ctx context.Context, op string) {
	initMeter()
	if publishErrors == nil {
		return
	}

	publishErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordTasksInFlight reports how many fan-out tasks are currently running.
func RecordTasksInFlight(ctx context.Context, n int64) {
	initMeter()
	if tasksInFlight == nil {
		return
	}

	tasksInFlight.Record(ctx, n)
}
