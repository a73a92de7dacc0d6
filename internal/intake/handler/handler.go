// Package handler exposes application intake and review over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"provet/internal/intake/service"
	id "provet/pkg/domain"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/platform/httputil"
	"provet/pkg/requestcontext"
)

// Service defines the interface for intake operations.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error)
	Review(ctx context.Context, applicationID id.ApplicationID, vetted bool) error
}

// Handler wires intake endpoints to the intake service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intake handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public submission endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleSubmit)
}

// RegisterReview mounts the authenticated review endpoint. It is registered
// separately so the router can wrap it in the auth middleware.
func (h *Handler) RegisterReview(r chi.Router) {
	r.Post("/applications/{applicationID}/review", h.HandleReview)
}

// SubmitResponse is the HTTP response body for POST /applications.
type SubmitResponse struct {
	ApplicationID string `json:"application_id"`
	Level         string `json:"level"`
	Score         int    `json:"score"`
}

// HandleSubmit handles POST /applications requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Submit(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "application submission refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		ApplicationID: result.ApplicationID.String(),
		Level:         string(result.Level),
		Score:         result.Score,
	})
}

// ReviewResponse is the HTTP response body for the review endpoint.
type ReviewResponse struct {
	ApplicationID string `json:"application_id"`
	Vetted        bool   `json:"vetted"`
}

// HandleReview handles POST /applications/{applicationID}/review requests.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	// The auth middleware populates this; a zero value means no valid token.
	if requestcontext.ProfessionalID(ctx).IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "application not found"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Review(ctx, applicationID, req.Vetted); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application reviewed",
		"request_id", requestID,
		"application_id", applicationID,
		"vetted", req.Vetted,
	)
	httputil.WriteJSON(w, http.StatusOK, ReviewResponse{
		ApplicationID: applicationID.String(),
		Vetted:        req.Vetted,
	})
}
