package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "passproxy"

// Metrics holds all passproxy metric instruments.
type Metrics struct {
	CacheHits      metric.Int64Counter
	CacheMisses    metric.Int64Counter
	UpstreamCalls  metric.Int64Counter
	UpstreamErrors metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.CacheHits, err = meter.Int64Counter("passproxy.cache.hits",
		metric.WithDescription("Number of listing requests served from cache"))
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("passproxy.cache.misses",
		metric.WithDescription("Number of listing requests that missed the cache"))
	if err != nil {
		return nil, err
	}

	m.UpstreamCalls, err = meter.Int64Counter("passproxy.upstream.calls",
		metric.WithDescription("Number of upstream listing fetches"))
	if err != nil {
		return nil, err
	}

	m.UpstreamErrors, err = meter.Int64Counter("passproxy.upstream.errors",
		metric.WithDescription("Number of failed upstream listing fetches"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
