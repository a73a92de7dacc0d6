// Package handler exposes login and second-factor verification over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"provet/internal/session/service"
	id "provet/pkg/domain"
	"provet/pkg/platform/httputil"
	"provet/pkg/requestcontext"
)

// Service defines the interface for session operations.
type Service interface {
	BeginSession(ctx context.Context, identifier, password string) (*service.BeginSessionResult, error)
	VerifySecondFactor(ctx context.Context, sessionID id.SessionID, code string) (*service.VerifyResult, error)
}

// Handler wires session endpoints to the session service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a session handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleBeginSession)
	r.Post("/sessions/verify", h.HandleVerify)
}

// HandleBeginSession handles POST /sessions requests.
func (h *Handler) HandleBeginSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BeginSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.BeginSession(ctx, req.Identifier, req.Password)
	if err != nil {
		// The service's messages are already anti-enumeration safe.
		h.logger.WarnContext(ctx, "login refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromBeginResult(result))
}

// HandleVerify handles POST /sessions/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.VerifySecondFactor(ctx, req.ParsedSessionID(), req.Code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "session authenticated",
		"request_id", requestID,
		"session_id", req.SessionID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromVerifyResult(result))
}
