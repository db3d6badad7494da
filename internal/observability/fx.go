package observability

import (
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/observability/logger"
	"github.com/roomstead/roomstead/internal/observability/metrics"
	"github.com/roomstead/roomstead/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(logger.New),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: config.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(metrics.NewMeterProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.NewBillingMetrics),
	fx.Provide(tracing.NewProvider),
	// Nothing injects the tracer provider, so force its construction to
	// register the propagator and exporters at startup.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
