// Package handler exposes upload grant issuance and consumption over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"provet/internal/grant/models"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/platform/httputil"
	"provet/pkg/requestcontext"
)

// Service defines the interface for grant operations.
type Service interface {
	IssueGrant(ctx context.Context, objectKey, subjectID, contact string) (*models.UploadGrant, error)
	AcceptUpload(ctx context.Context, grant models.UploadGrant, data []byte, declaredType string) (*models.UploadedObject, error)
}

// Handler wires upload endpoints to the grant service.
type Handler struct {
	service        Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// New constructs a grant handler. maxUploadBytes bounds how much of the
// request body is ever read; the service applies the same ceiling to what
// it accepts.
func New(service Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts upload endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/uploads/grants", h.HandleIssueGrant)
	r.Put("/uploads/object", h.HandleUpload)
}

// HandleIssueGrant handles POST /uploads/grants requests.
func (h *Handler) HandleIssueGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueGrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	grant, err := h.service.IssueGrant(ctx, req.ObjectKey, req.SubjectID, req.SubjectContact)
	if err != nil {
		h.logger.WarnContext(ctx, "grant issuance refused",
			"request_id", requestID,
			"object_key", req.ObjectKey,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromGrant(grant))
}

// HandleUpload handles PUT /uploads/object requests. The body is the raw
// object bytes; the grant travels in the query string and the declared type
// in the Content-Type header.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	grant, err := grantFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Read one byte past the ceiling so an oversize body reaches the service
	// as oversize instead of being silently truncated to the limit.
	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "upload exceeds size ceiling"))
			return
		}
		h.logger.WarnContext(ctx, "upload body read failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read request body"))
		return
	}

	obj, err := h.service.AcceptUpload(ctx, grant, data, declaredType(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "upload accepted",
		"request_id", requestID,
		"object_key", obj.Key,
		"size", obj.ByteSize,
		"detected_type", obj.DetectedType,
	)
	httputil.WriteJSON(w, http.StatusOK, FromUpload(obj))
}

// grantFromQuery rebuilds the grant the client was issued. Missing or
// malformed fields are a 400; whether the fields verify is the service's
// call.
func grantFromQuery(r *http.Request) (models.UploadGrant, error) {
	q := r.URL.Query()
	grant := models.UploadGrant{
		ObjectKey:      q.Get("object_key"),
		SubjectID:      q.Get("subject_id"),
		SubjectContact: q.Get("subject_contact"),
		Signature:      q.Get("signature"),
	}
	if grant.ObjectKey == "" || grant.SubjectID == "" || grant.SubjectContact == "" || grant.Signature == "" {
		return models.UploadGrant{}, dErrors.New(dErrors.CodeBadRequest, "grant fields are required in the query string")
	}

	expires, err := strconv.ParseInt(q.Get("expires_at"), 10, 64)
	if err != nil {
		return models.UploadGrant{}, dErrors.New(dErrors.CodeBadRequest, "expires_at must be unix seconds")
	}
	grant.ExpiresAt = time.Unix(expires, 0).UTC()
	return grant, nil
}

// declaredType extracts the media type from Content-Type, dropping
// parameters. An absent or unparseable header means no declaration was made.
func declaredType(r *http.Request) string {
	header := r.Header.Get("Content-Type")
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	if mediaType == "application/octet-stream" {
		// The generic default carries no declaration.
		return ""
	}
	return mediaType
}
