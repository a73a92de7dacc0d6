// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// The request-scoped time is the single clock source of the pipeline: every
// grant and session expiry comparison reads Now(ctx), so tests pin a fixed
// instant with WithTime.
package requestcontext

import (
	"context"
	"time"

	id "provet/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	professionalIDKey struct{}
	sessionIDKey      struct{}
	clientIPKey       struct{}
	userAgentKey      struct{}
	requestIDKey      struct{}
	requestTimeKey    struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyProfessionalID = professionalIDKey{}
	ContextKeySessionID      = sessionIDKey{}
	ContextKeyClientIP       = clientIPKey{}
	ContextKeyUserAgent      = userAgentKey{}
	ContextKeyRequestID      = requestIDKey{}
	ContextKeyRequestTime    = requestTimeKey{}
)

// ProfessionalID retrieves the authenticated professional ID from the context.
// Returns the zero value (nil UUID) if not set.
func ProfessionalID(ctx context.Context) id.ProfessionalID {
	if pid, ok := ctx.Value(ContextKeyProfessionalID).(id.ProfessionalID); ok {
		return pid
	}
	return id.ProfessionalID{}
}

// WithProfessionalID injects a professional ID into the context.
func WithProfessionalID(ctx context.Context, pid id.ProfessionalID) context.Context {
	return context.WithValue(ctx, ContextKeyProfessionalID, pid)
}

// SessionID retrieves the session ID from the context.
func SessionID(ctx context.Context) id.SessionID {
	if sid, ok := ctx.Value(ContextKeySessionID).(id.SessionID); ok {
		return sid
	}
	return id.SessionID{}
}

// WithSessionID injects a session ID into the context.
func WithSessionID(ctx context.Context, sid id.SessionID) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sid)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to make
// every expiry comparison in a call deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
