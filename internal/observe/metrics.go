// Package observe provides application-wide observability primitives for
// Disfluent: OpenTelemetry metrics, distributed tracing, and structured
// logging helpers that tie them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
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

// meterName is the instrumentation scope name used for all Disfluent metrics.
const meterName = "github.com/MrWong99/disfluent"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// AnalysisDuration tracks full transcript analysis latency. Use with
	// attribute:
	//   attribute.String("detector", ...)
	AnalysisDuration metric.Float64Histogram

	// ClassifierDuration tracks per-sentence LLM classification latency.
	ClassifierDuration metric.Float64Histogram

	// --- Counters ---

	// SentencesProcessed counts analysed sentences. Use with attribute:
	//   attribute.String("detector", ...)
	SentencesProcessed metric.Int64Counter

	// DisfluenciesDetected counts detected disfluency occurrences. Use with
	// attributes:
	//   attribute.String("detector", ...), attribute.String("category", ...)
	DisfluenciesDetected metric.Int64Counter

	// PausesDetected counts detected pauses.
	PausesDetected metric.Int64Counter

	// ClassifierRequests counts LLM classifier calls. Use with attribute:
	//   attribute.String("status", ...)
	ClassifierRequests metric.Int64Counter

	// --- Error counters ---

	// ClassifierErrors counts failed LLM classifier calls.
	ClassifierErrors metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time on the metrics
	// endpoint. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Analysis of
// a single transcript ranges from sub-millisecond (pattern matching) to
// multiple seconds (one LLM round-trip per sentence).
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalysisDuration, err = m.Float64Histogram("disfluent.analysis.duration",
		metric.WithDescription("Latency of full transcript analysis by detector."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifierDuration, err = m.Float64Histogram("disfluent.classifier.duration",
		metric.WithDescription("Latency of a single LLM classification call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.SentencesProcessed, err = m.Int64Counter("disfluent.sentences.processed",
		metric.WithDescription("Total sentences analysed by detector."),
	); err != nil {
		return nil, err
	}
	if met.DisfluenciesDetected, err = m.Int64Counter("disfluent.disfluencies.detected",
		metric.WithDescription("Total disfluency occurrences by detector and category."),
	); err != nil {
		return nil, err
	}
	if met.PausesDetected, err = m.Int64Counter("disfluent.pauses.detected",
		metric.WithDescription("Total pauses detected from word timestamps."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierRequests, err = m.Int64Counter("disfluent.classifier.requests",
		metric.WithDescription("Total LLM classifier calls by status."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ClassifierErrors, err = m.Int64Counter("disfluent.classifier.errors",
		metric.WithDescription("Total failed LLM classifier calls."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("disfluent.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalysis is a convenience method that records an analysis duration
// sample together with the processed sentence count for one detector run.
func (m *Metrics) RecordAnalysis(ctx context.Context, detector string, seconds float64, sentences int) {
	attrs := metric.WithAttributes(attribute.String("detector", detector))
	m.AnalysisDuration.Record(ctx, seconds, attrs)
	m.SentencesProcessed.Add(ctx, int64(sentences), attrs)
}

// RecordDisfluency is a convenience method that records detected occurrences
// for one category.
func (m *Metrics) RecordDisfluency(ctx context.Context, detector, category string, count int) {
	m.DisfluenciesDetected.Add(ctx, int64(count),
		metric.WithAttributes(
			attribute.String("detector", detector),
			attribute.String("category", category),
		),
	)
}

// RecordPauses is a convenience method that records detected pauses.
func (m *Metrics) RecordPauses(ctx context.Context, count int) {
	m.PausesDetected.Add(ctx, int64(count))
}

// RecordClassifierRequest is a convenience method that records an LLM
// classifier call with its outcome status.
func (m *Metrics) RecordClassifierRequest(ctx context.Context, status string) {
	m.ClassifierRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordClassifierError is a convenience method that records a failed LLM
// classifier call.
func (m *Metrics) RecordClassifierError(ctx context.Context) {
	m.ClassifierErrors.Add(ctx, 1)
}
