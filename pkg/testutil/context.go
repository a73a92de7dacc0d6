package testutil

import (
	"net/http"
	"time"

	id "provet/pkg/domain"
	"provet/pkg/requestcontext"
)

// WithProfessionalID adds an authenticated professional ID to the request
// context, simulating what the auth middleware would do.
// Invalid IDs are silently ignored.
func WithProfessionalID(req *http.Request, professionalID string) *http.Request {
	if pid, err := id.ParseProfessionalID(professionalID); err == nil {
		return req.WithContext(requestcontext.WithProfessionalID(req.Context(), pid))
	}
	return req
}

// WithRequestTime pins the request-scoped clock, making expiry comparisons
// in the handler chain deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
