package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/quantmind-br/reposnap/internal/domain"
)

// Metric names
const (
	MetricFetches       = "reposnap.fetch.count"
	MetricFetchDuration = "reposnap.fetch.duration"
	MetricFetchFiles    = "reposnap.fetch.files"
)

// FetchMetrics records one counter and two histograms per fetch
type FetchMetrics struct {
	fetches  metric.Int64Counter
	duration metric.Float64Histogram
	files    metric.Int64Histogram
}

var _ domain.Metrics = (*FetchMetrics)(nil)

// NewFetchMetrics creates the instruments on the global meter provider
func NewFetchMetrics() *FetchMetrics {
	return NewFetchMetricsWithProvider(otel.GetMeterProvider())
}

// NewFetchMetricsWithProvider creates the instruments on mp
func NewFetchMetricsWithProvider(mp metric.MeterProvider) *FetchMetrics {
	m := mp.Meter(InstrumentationName)

	fetches, _ := m.Int64Counter(MetricFetches,
		metric.WithDescription("Number of snapshot fetches by outcome"))
	duration, _ := m.Float64Histogram(MetricFetchDuration,
		metric.WithDescription("Snapshot fetch duration in milliseconds"),
		metric.WithUnit("ms"))
	files, _ := m.Int64Histogram(MetricFetchFiles,
		metric.WithDescription("Files aggregated per successful fetch"))

	return &FetchMetrics{fetches: fetches, duration: duration, files: files}
}

// ObserveFetch implements domain.Metrics
func (f *FetchMetrics) ObserveFetch(ctx context.Context, kind domain.ErrorKind, files int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", Outcome(kind)))

	f.fetches.Add(ctx, 1, attrs)
	f.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	if kind == 0 {
		f.files.Record(ctx, int64(files))
	}
}

// Outcome returns the metric label for an error kind; zero means success
func Outcome(kind domain.ErrorKind) string {
	switch kind {
	case 0:
		return "ok"
	case domain.KindIO:
		return "io"
	case domain.KindURLParse:
		return "url_parse"
	case domain.KindGitClone:
		return "git_clone"
	case domain.KindInvalidURL:
		return "invalid_url"
	}
	return "unknown"
}
