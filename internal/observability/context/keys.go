// Package context carries per-request metadata across service boundaries.
package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "observability_request_id"
	clientIPKey  contextKey = "observability_client_ip"
	userAgentKey contextKey = "observability_user_agent"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithClientInfo records the caller's address and user agent so the audit
// trail can attribute writes without threading HTTP types through services.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	if ctx == nil {
		return ctx
	}
	if ip != "" {
		ctx = context.WithValue(ctx, clientIPKey, ip)
	}
	if userAgent != "" {
		ctx = context.WithValue(ctx, userAgentKey, userAgent)
	}
	return ctx
}

func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(clientIPKey).(string)
	return value
}

func UserAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userAgentKey).(string)
	return value
}
