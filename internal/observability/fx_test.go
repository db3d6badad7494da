package observability

import (
	"testing"
	"time"

	"github.com/roomstead/roomstead/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestModuleInstallsPropagatorOnStart(t *testing.T) {
	// Start from an empty propagator so the assertion proves the module
	// installed one during startup.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())

	cfg := config.Config{
		Environment: "development",
		Logging:     config.LoggingConfig{Level: "error"},
		Telemetry:   config.TelemetryConfig{TracingEnabled: false},
		Rent:        config.RentConfig{ReminderInterval: time.Hour, ReminderBatch: 10},
	}

	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
	)
	app.RequireStart()
	defer app.RequireStop()

	fields := otel.GetTextMapPropagator().Fields()
	var hasTraceparent bool
	for _, f := range fields {
		if f == "traceparent" {
			hasTraceparent = true
		}
	}
	if !hasTraceparent {
		t.Fatalf("propagator fields = %v, want traceparent", fields)
	}
}
