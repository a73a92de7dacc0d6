// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the per-domain handlers, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	granthandler "provet/internal/grant/handler"
	intakehandler "provet/internal/intake/handler"
	"provet/internal/platform/metrics"
	"provet/internal/platform/middleware"
	sessionhandler "provet/internal/session/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Grant        *granthandler.Handler
	Session      *sessionhandler.Handler
	Intake       *intakehandler.Handler
	JWTValidator middleware.JWTValidator
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// NewRouter wires all endpoints behind the shared middleware chain. The
// binary upload route skips the JSON content-type gate; the review route
// additionally requires a valid bearer token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(deps.Metrics))

	// JSON endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Session.Register(r)
		deps.Intake.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))
			deps.Intake.RegisterReview(r)
		})

		r.Post("/uploads/grants", deps.Grant.HandleIssueGrant)
	})

	// Binary upload.
	r.Put("/uploads/object", deps.Grant.HandleUpload)

	// Operational endpoints.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
