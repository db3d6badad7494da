package metrics

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Config carries the service identity attached to every metric.
type Config struct {
	ServiceName string
	Environment string
}

var sensitiveMetricKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"email",
}

// FilterAttributes drops attributes with sensitive keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if isSensitiveMetricKey(string(attr.Key)) {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

func isSensitiveMetricKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveMetricKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}
