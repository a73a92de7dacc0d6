// Package service implements application intake: validate, hash, score,
// persist. Scoring happens exactly once, at submission; the stored score is
// the score of record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"go.opentelemetry.io/otel"

	"provet/internal/audit"
	"provet/internal/intake/models"
	"provet/internal/platform/metrics"
	"provet/internal/scoring"
	id "provet/pkg/domain"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/platform/secrets"
	"provet/pkg/platform/sentinel"
	"provet/pkg/requestcontext"
)

var tracer = otel.Tracer("provet/internal/intake")

// ApplicationStore persists professional applications.
type ApplicationStore interface {
	Create(ctx context.Context, app models.ProfessionalApplication) error
	GetByID(ctx context.Context, applicationID id.ApplicationID) (*models.ProfessionalApplication, error)
	FindByEmail(ctx context.Context, email string) (*models.ProfessionalApplication, error)
	SetVetted(ctx context.Context, applicationID id.ApplicationID, vetted bool) error
}

type Service struct {
	store   ApplicationStore
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

// New builds the intake service.
func New(store ApplicationStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("application store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SubmitRequest carries everything an applicant provides.
type SubmitRequest struct {
	Name          string
	Email         string
	Password      string
	LicenseNumber string
	LicenseState  string
	Specialty     string
	Profile       scoring.Application
	DocumentKeys  []string
}

// SubmitResult is what the applicant gets back: the id of their record and
// where the rubric placed them.
type SubmitResult struct {
	ApplicationID id.ApplicationID
	Level         scoring.Level
	Score         int
}

// Submit validates the application, scores it, and persists the record with
// Vetted=false. Duplicate identity (email or license) is a conflict.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "intake.submit")
	defer span.End()

	if err := validateSubmit(&req); err != nil {
		return nil, err
	}

	passwordHash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	score := scoring.Compute(req.Profile)

	app := models.ProfessionalApplication{
		ID:             id.NewApplicationID(),
		ProfessionalID: id.NewProfessionalID(),
		Name:           req.Name,
		Email:          req.Email,
		LicenseNumber:  req.LicenseNumber,
		LicenseState:   req.LicenseState,
		Specialty:      req.Specialty,
		PasswordHash:   passwordHash,
		Profile:        req.Profile,
		DocumentKeys:   req.DocumentKeys,
		Score:          score,
		Vetted:         false,
		CreatedAt:      requestcontext.Now(ctx),
	}

	if err := s.store.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an application with this email or license already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not persist application")
	}

	if s.metrics != nil {
		s.metrics.ApplicationsScored.WithLabelValues(string(score.Level)).Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionApplicationSubmitted,
		SubjectID: app.ProfessionalID.String(),
		Detail: map[string]string{
			"application_id": app.ID.String(),
			"level":          string(score.Level),
		},
	})
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"professional_id", app.ProfessionalID,
		"level", score.Level,
		"total", score.Total,
		"documents", len(app.DocumentKeys),
	)

	return &SubmitResult{
		ApplicationID: app.ID,
		Level:         score.Level,
		Score:         score.Total,
	}, nil
}

// Review records the human reviewer's decision on an application.
func (s *Service) Review(ctx context.Context, applicationID id.ApplicationID, vetted bool) error {
	if err := s.store.SetVetted(ctx, applicationID, vetted); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not update application")
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionApplicationReviewed,
		SubjectID: requestcontext.ProfessionalID(ctx).String(),
		Detail: map[string]string{
			"application_id": applicationID.String(),
			"vetted":         strconv.FormatBool(vetted),
		},
	})
	s.logger.InfoContext(ctx, "application reviewed",
		"application_id", applicationID,
		"vetted", vetted,
	)
	return nil
}

func validateSubmit(req *SubmitRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	// Email doubles as the login identifier; store it in one canonical case.
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	req.LicenseState = strings.TrimSpace(req.LicenseState)
	req.Specialty = strings.TrimSpace(req.Specialty)

	switch {
	case req.Name == "":
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	case req.Email == "":
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	case !govalidator.IsEmail(req.Email):
		return dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	case len(req.Password) < 8:
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	case req.LicenseNumber == "":
		return dErrors.New(dErrors.CodeInvalidInput, "license number is required")
	case req.LicenseState == "":
		return dErrors.New(dErrors.CodeInvalidInput, "license state is required")
	}

	if req.Profile.YearsPractice < 0 || req.Profile.Publications < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "counts cannot be negative")
	}
	for _, key := range req.DocumentKeys {
		if strings.TrimSpace(key) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "document keys cannot be empty")
		}
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
