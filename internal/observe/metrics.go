// Package observe provides application-wide observability primitives for
// tubesage: OpenTelemetry metrics, tracing, and trace-aware structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via a standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tubesage metrics.
const meterName = "github.com/MrWong99/tubesage"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// TurnDuration tracks end-to-end latency of one conversational turn,
	// from agent invocation to event stream exhaustion.
	TurnDuration metric.Float64Histogram

	// LLMStreamDuration tracks the latency of a single LLM completion stream.
	// One turn may record several (tool-call round trips).
	LLMStreamDuration metric.Float64Histogram

	// TranscriptFetchDuration tracks transcript retrieval latency.
	TranscriptFetchDuration metric.Float64Histogram

	// HTTPRequestDuration tracks latency of requests to the operational HTTP
	// surface (/metrics).
	HTTPRequestDuration metric.Float64Histogram

	// Turns counts completed conversational turns.
	Turns metric.Int64Counter

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// TranscriptFetches counts transcript retrievals by status.
	TranscriptFetches metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Transcript
// fetches and LLM streams both sit in the hundreds-of-ms to tens-of-seconds
// range.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TurnDuration, err = m.Float64Histogram("tubesage.turn.duration",
		metric.WithDescription("End-to-end latency of one conversational turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMStreamDuration, err = m.Float64Histogram("tubesage.llm.stream.duration",
		metric.WithDescription("Latency of a single LLM completion stream."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptFetchDuration, err = m.Float64Histogram("tubesage.transcript.fetch.duration",
		metric.WithDescription("Latency of transcript retrieval."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("tubesage.http.request.duration",
		metric.WithDescription("Latency of operational HTTP requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Turns, err = m.Int64Counter("tubesage.turns",
		metric.WithDescription("Total completed conversational turns."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("tubesage.tool.calls",
		metric.WithDescription("Total tool invocations by tool and status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptFetches, err = m.Int64Counter("tubesage.transcript.fetches",
		metric.WithDescription("Total transcript retrievals by status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordToolCall records a tool call counter increment with the standard
// attribute set.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}

// RecordTranscriptFetch records a transcript retrieval counter increment.
func (m *Metrics) RecordTranscriptFetch(ctx context.Context, status string) {
	m.TranscriptFetches.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
