package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewMeterProvider builds a meter provider backed by the shared prometheus
// registry, so otel-instrumented and native prometheus metrics share one
// scrape endpoint.
func NewMeterProvider(registry *prometheus.Registry) (metric.MeterProvider, error) {
	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

// NewRegistry provides the process-wide prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
