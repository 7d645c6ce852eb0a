package answer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSubsystem     = "preseed_answers"
	outcomeSuccessValue = "success"
	outcomeErrorValue   = "error"
)

// Metrics provides instrumentation for answer store operations. All record
// methods are safe on a nil receiver, so callers never guard their calls.
type Metrics struct {
	meter             metric.Meter
	answersTotal      metric.Int64Counter
	loadsTotal        metric.Int64Counter
	loadedScopesTotal metric.Int64Counter
	translationsTotal metric.Int64Counter
	generateHistogram metric.Float64Histogram
}

// NewMetrics initializes answer store metrics using the provided meter. A
// nil meter yields a Metrics whose record methods are no-ops.
func NewMetrics(_ context.Context, meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) init() error {
	if m.meter == nil {
		return nil
	}
	if err := m.initCounters(); err != nil {
		return err
	}
	return m.initHistograms()
}

func (m *Metrics) initCounters() error {
	counterDefs := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		errLabel    string
	}{
		{&m.answersTotal, "recorded_total", "Total answers recorded through the store", "recorded"},
		{&m.loadsTotal, "loads_total", "Total answer file loads", "loads"},
		{&m.loadedScopesTotal, "loaded_scopes_total", "Total scopes replaced by answer file loads", "loaded scopes"},
		{&m.translationsTotal, "translations_total", "Total dialog translations by outcome", "translations"},
	}
	for _, def := range counterDefs {
		counter, err := m.meter.Int64Counter(
			metricName(def.name),
			metric.WithDescription(def.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create answer %s counter: %w", def.errLabel, err)
		}
		*def.target = counter
	}
	return nil
}

func (m *Metrics) initHistograms() error {
	var err error
	m.generateHistogram, err = m.meter.Float64Histogram(
		metricName("generate_duration_seconds"),
		metric.WithDescription("Answer file generation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(.001, .005, .01, .025, .05, .1, .25, .5, 1),
	)
	if err != nil {
		return fmt.Errorf("failed to create answer generate duration histogram: %w", err)
	}
	return nil
}

// metricName scopes a metric under the answer store subsystem.
func metricName(name string) string {
	return metricSubsystem + "_" + name
}

// RecordAnswer counts one recorded answer.
func (m *Metrics) RecordAnswer(ctx context.Context) {
	if m == nil || m.answersTotal == nil {
		return
	}
	m.answersTotal.Add(ctx, 1)
}

// RecordLoad counts one answer file load that replaced n scopes.
func (m *Metrics) RecordLoad(ctx context.Context, n int) {
	if m == nil {
		return
	}
	if m.loadsTotal != nil {
		m.loadsTotal.Add(ctx, 1)
	}
	if m.loadedScopesTotal != nil && n > 0 {
		m.loadedScopesTotal.Add(ctx, int64(n))
	}
}

// RecordTranslation counts one dialog translation partitioned by outcome.
func (m *Metrics) RecordTranslation(ctx context.Context, ok bool) {
	if m == nil || m.translationsTotal == nil {
		return
	}
	outcome := outcomeSuccessValue
	if !ok {
		outcome = outcomeErrorValue
	}
	m.translationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordGenerate observes the duration of one answer file generation.
func (m *Metrics) RecordGenerate(ctx context.Context, d time.Duration) {
	if m == nil || m.generateHistogram == nil {
		return
	}
	m.generateHistogram.Record(ctx, d.Seconds())
}
