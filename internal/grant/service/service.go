// Package service implements upload grant issuance and consumption. Grants
// are stateless capabilities: nothing is stored when one is issued, and every
// use re-verifies the signature from the grant's own fields.
package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"provet/internal/audit"
	"provet/internal/grant/models"
	"provet/internal/grant/signature"
	"provet/internal/grant/sniff"
	"provet/internal/platform/metrics"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/requestcontext"
)

var tracer = otel.Tracer("provet/internal/grant")

// ObjectStore is the storage boundary. Write must be atomic-replace: readers
// never observe partial bytes, and same-key races resolve to the last
// complete write.
type ObjectStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Config carries the signing secret and upload limits, injected at
// construction rather than read from the environment.
type Config struct {
	Secret         []byte
	GrantTTL       time.Duration
	MaxUploadBytes int64
	AllowedTypes   []sniff.Type
}

// DefaultAllowedTypes gates uploads to the document and image formats the
// review workflow can handle.
var DefaultAllowedTypes = []sniff.Type{
	sniff.TypePDF, sniff.TypePNG, sniff.TypeJPEG, sniff.TypeGIF, sniff.TypeTIFF, sniff.TypeZIP,
}

type Service struct {
	store   ObjectStore
	cfg     Config
	allowed map[sniff.Type]bool
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Publisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// New validates config and builds the service.
func New(store ObjectStore, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("grant signing secret is required")
	}
	if cfg.GrantTTL <= 0 {
		cfg.GrantTTL = 15 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = DefaultAllowedTypes
	}

	svc := &Service{
		store:   store,
		cfg:     cfg,
		allowed: make(map[sniff.Type]bool, len(cfg.AllowedTypes)),
		logger:  slog.Default(),
	}
	for _, t := range cfg.AllowedTypes {
		svc.allowed[t] = true
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IssueGrant signs a time-boxed authorization for one future write. The
// server keeps no record of it; the grant is the record.
func (s *Service) IssueGrant(ctx context.Context, objectKey, subjectID, contact string) (*models.UploadGrant, error) {
	key, err := normalizeKey(objectKey)
	if err != nil {
		return nil, err
	}
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject id is required")
	}
	if contact == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject contact is required")
	}

	now := requestcontext.Now(ctx)
	grant := models.UploadGrant{
		ObjectKey:      key,
		SubjectID:      subjectID,
		SubjectContact: contact,
		ExpiresAt:      now.Add(s.cfg.GrantTTL),
	}
	grant.Signature = signature.Sign(grant.CanonicalString(), s.cfg.Secret)

	if s.metrics != nil {
		s.metrics.GrantsIssued.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionGrantIssued,
		SubjectID: subjectID,
		Detail:    map[string]string{"object_key": key},
	})
	s.logger.InfoContext(ctx, "upload grant issued",
		"subject_id", subjectID,
		"object_key", key,
		"expires_at", grant.ExpiresAt,
	)
	return &grant, nil
}

// AcceptUpload verifies the grant and persists the bytes. All checks run
// before the single write, so a failed call writes nothing. Check order:
// expiry, signature, path, size, content type.
func (s *Service) AcceptUpload(ctx context.Context, grant models.UploadGrant, data []byte, declaredType string) (*models.UploadedObject, error) {
	ctx, span := tracer.Start(ctx, "grant.accept_upload",
		trace.WithAttributes(attribute.Int("upload.size_bytes", len(data))))
	defer span.End()

	now := requestcontext.Now(ctx)

	if grant.ExpiredAt(now) {
		return nil, s.reject(ctx, grant, "expired",
			dErrors.New(dErrors.CodeGrantExpired, "upload grant has expired"))
	}

	if !signature.Verify(grant.CanonicalString(), s.cfg.Secret, grant.Signature) {
		return nil, s.reject(ctx, grant, "invalid_signature",
			dErrors.New(dErrors.CodeForbidden, "invalid grant signature"))
	}

	// The signature may be valid for a hostile key if issuance was bypassed;
	// path containment is re-checked on every use.
	key, err := normalizeKey(grant.ObjectKey)
	if err != nil {
		return nil, s.reject(ctx, grant, "path_violation", err)
	}

	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, s.reject(ctx, grant, "too_large",
			dErrors.New(dErrors.CodePayloadTooLarge, "upload exceeds size ceiling"))
	}

	detected := sniff.Detect(data)
	if !s.allowed[detected] {
		return nil, s.reject(ctx, grant, "type_rejected",
			dErrors.New(dErrors.CodeUnsupportedMedia, "content type not allowed"))
	}
	if declaredType != "" && sniff.FromDeclared(declaredType) != detected {
		return nil, s.reject(ctx, grant, "type_rejected",
			dErrors.New(dErrors.CodeUnsupportedMedia, "declared type disagrees with detected content"))
	}

	if err := s.store.Write(ctx, key, data); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "object write failed")
	}

	if s.metrics != nil {
		s.metrics.UploadsAccepted.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionUploadAccepted,
		SubjectID: grant.SubjectID,
		Detail:    map[string]string{"object_key": key, "detected_type": string(detected)},
	})

	return &models.UploadedObject{
		Key:          key,
		ByteSize:     int64(len(data)),
		DetectedType: detected,
		DeclaredType: declaredType,
		OwnerID:      grant.SubjectID,
		CreatedAt:    now,
	}, nil
}

func (s *Service) reject(ctx context.Context, grant models.UploadGrant, reason string, err error) error {
	if s.metrics != nil {
		s.metrics.UploadsRejected.WithLabelValues(reason).Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionUploadRejected,
		SubjectID: grant.SubjectID,
		Detail:    map[string]string{"object_key": grant.ObjectKey, "reason": reason},
	})
	s.logger.WarnContext(ctx, "upload rejected",
		"subject_id", grant.SubjectID,
		"object_key", grant.ObjectKey,
		"reason", reason,
	)
	return err
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

// normalizeKey cleans a logical object key and rejects anything that would
// escape the storage root after normalization.
func normalizeKey(key string) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "object key is required")
	}
	if strings.Contains(key, "\\") {
		return "", dErrors.New(dErrors.CodeBadRequest, "object key must use forward slashes")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", dErrors.New(dErrors.CodeBadRequest, "object key escapes storage root")
	}
	return cleaned, nil
}
