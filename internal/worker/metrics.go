package worker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/rs/zerolog/log"
)

// metrics holds the service counters, registered on the global meter
// provider. With no provider configured they are no-ops.
type metrics struct {
	requests metric.Int64Counter
	prompts  metric.Int64Counter
	matches  metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("promptscope")
	m := &metrics{}

	var err error
	if m.requests, err = meter.Int64Counter(
		"promptscope_requests_total",
		metric.WithDescription("HTTP requests served"),
	); err != nil {
		log.Warn().Err(err).Msg("failed to register request counter")
	}
	if m.prompts, err = meter.Int64Counter(
		"promptscope_prompts_analyzed_total",
		metric.WithDescription("Prompts ingested and analyzed"),
	); err != nil {
		log.Warn().Err(err).Msg("failed to register prompt counter")
	}
	if m.matches, err = meter.Int64Counter(
		"promptscope_matches_detected_total",
		metric.WithDescription("Anti-pattern matches detected"),
	); err != nil {
		log.Warn().Err(err).Msg("failed to register match counter")
	}
	return m
}

// count is nil-safe so a failed registration never panics a handler.
func count(ctx context.Context, counter metric.Int64Counter, n int64) {
	if counter != nil {
		counter.Add(ctx, n)
	}
}
