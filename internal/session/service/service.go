// Package service implements the login state machine: password first, then a
// one-time code, then a token. No path skips the code.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"

	"provet/internal/audit"
	"provet/internal/platform/metrics"
	"provet/internal/session/models"
	"provet/internal/session/token"
	"provet/pkg/contact"
	id "provet/pkg/domain"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/platform/secrets"
	"provet/pkg/platform/sentinel"
	"provet/pkg/requestcontext"
)

var tracer = otel.Tracer("provet/internal/session")

// dummyHash is a real bcrypt hash of an unguessable value. When the
// identifier is unknown we still run a full compare against it so the
// response time does not reveal which identifiers exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CredentialStore looks up stored identities by login identifier.
type CredentialStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Credential, error)
}

// SessionStore persists in-flight sessions and owns the second-factor
// compare-and-set.
type SessionStore interface {
	Create(ctx context.Context, session models.ProfessionalSession) error
	CompleteSecondFactor(ctx context.Context, sessionID id.SessionID, code string, now time.Time) (*models.ProfessionalSession, error)
}

// CodeSender delivers a one-time code to a contact method on file.
type CodeSender interface {
	SendCode(ctx context.Context, recipient, code string) error
}

// Config carries session and token lifetimes.
type Config struct {
	SessionTTL time.Duration
	TokenTTL   time.Duration
}

type Service struct {
	credentials CredentialStore
	sessions    SessionStore
	tokens      *token.Service
	cfg         Config
	sender      CodeSender
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     *audit.Publisher
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

func WithCodeSender(sender CodeSender) Option {
	return func(s *Service) { s.sender = sender }
}

// New validates dependencies and builds the service.
func New(credentials CredentialStore, sessions SessionStore, tokens *token.Service, cfg Config, opts ...Option) (*Service, error) {
	if credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	svc := &Service{
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokens,
		cfg:         cfg,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// BeginSessionResult is returned after a successful password check. The code
// itself never appears here; only a masked hint of where it went.
type BeginSessionResult struct {
	SessionID    id.SessionID
	DeliveryHint string
}

// BeginSession verifies the password and opens a session awaiting its code.
// An unknown identifier and a wrong password are indistinguishable to the
// caller; only a valid password reveals the not-yet-approved state.
func (s *Service) BeginSession(ctx context.Context, identifier, password string) (*BeginSessionResult, error) {
	ctx, span := tracer.Start(ctx, "session.begin")
	defer span.End()

	cred, err := s.credentials.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn the same bcrypt cost as the known-identifier path.
			_ = secrets.Verify(password, dummyHash)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if err := secrets.Verify(password, cred.PasswordHash); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if !cred.Vetted {
		return nil, dErrors.New(dErrors.CodeForbidden, "application has not been approved")
	}

	code, err := generateCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate code")
	}

	now := requestcontext.Now(ctx)
	session := models.ProfessionalSession{
		ID:             id.NewSessionID(),
		ProfessionalID: cred.ProfessionalID,
		Name:           cred.Name,
		Code:           code,
		Device:         describeDevice(requestcontext.UserAgent(ctx)),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create session")
	}

	// Delivery failure must not fail the login: the code can be re-requested
	// by starting over, and failing here would leak gateway health to callers.
	if s.sender != nil {
		if err := s.sender.SendCode(ctx, cred.Contact, code); err != nil {
			s.logger.ErrorContext(ctx, "code delivery failed",
				"session_id", session.ID,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionSessionStarted,
		SubjectID: cred.ProfessionalID.String(),
		Detail:    map[string]string{"session_id": session.ID.String(), "device": session.Device},
	})
	s.logger.InfoContext(ctx, "session started",
		"session_id", session.ID,
		"professional_id", cred.ProfessionalID,
		"device", session.Device,
	)

	return &BeginSessionResult{
		SessionID:    session.ID,
		DeliveryHint: contact.Mask(cred.Contact),
	}, nil
}

// Professional is the minimal profile returned with a fresh token.
type Professional struct {
	ID   id.ProfessionalID
	Name string
}

// VerifyResult carries the minted token and who it belongs to.
type VerifyResult struct {
	Token        string
	Professional Professional
}

// VerifySecondFactor checks the one-time code and mints an access token.
// The store transition is a single compare-and-set, so of two concurrent
// calls with the valid code exactly one gets a token.
func (s *Service) VerifySecondFactor(ctx context.Context, sessionID id.SessionID, code string) (*VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "session.verify_second_factor")
	defer span.End()

	if !validCodeFormat(code) {
		return nil, s.rejectVerification(ctx, sessionID, "malformed",
			dErrors.New(dErrors.CodeUnauthorized, "invalid session or code"))
	}

	now := requestcontext.Now(ctx)
	session, err := s.sessions.CompleteSecondFactor(ctx, sessionID, code, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, s.rejectVerification(ctx, sessionID, "not_found",
				dErrors.New(dErrors.CodeUnauthorized, "invalid session or code"))
		case errors.Is(err, sentinel.ErrExpired):
			return nil, s.rejectVerification(ctx, sessionID, "expired",
				dErrors.New(dErrors.CodeUnauthorized, "session has expired"))
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, s.rejectVerification(ctx, sessionID, "already_verified",
				dErrors.New(dErrors.CodeUnauthorized, "session already verified"))
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, s.rejectVerification(ctx, sessionID, "code_mismatch",
				dErrors.New(dErrors.CodeUnauthorized, "invalid session or code"))
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "second factor verification failed")
		}
	}

	accessToken, err := s.tokens.GenerateAccessToken(session.ProfessionalID, session.ID, now, s.cfg.TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not mint token")
	}

	if s.metrics != nil {
		s.metrics.SecondFactorResults.WithLabelValues("success").Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionSecondFactorVerified,
		SubjectID: session.ProfessionalID.String(),
		Detail:    map[string]string{"session_id": session.ID.String()},
	})
	s.logger.InfoContext(ctx, "second factor verified",
		"session_id", session.ID,
		"professional_id", session.ProfessionalID,
	)

	return &VerifyResult{
		Token: accessToken,
		Professional: Professional{
			ID:   session.ProfessionalID,
			Name: session.Name,
		},
	}, nil
}

func (s *Service) rejectVerification(ctx context.Context, sessionID id.SessionID, outcome string, err error) error {
	if s.metrics != nil {
		s.metrics.SecondFactorResults.WithLabelValues(outcome).Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Action: audit.ActionSecondFactorRejected,
		Detail: map[string]string{"session_id": sessionID.String(), "outcome": outcome},
	})
	s.logger.WarnContext(ctx, "second factor rejected",
		"session_id", sessionID,
		"outcome", outcome,
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

// generateCode draws a six-digit code from crypto/rand.
func generateCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

func validCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// describeDevice turns a raw User-Agent into a short human label for the
// session record.
func describeDevice(rawUA string) string {
	if rawUA == "" {
		return "unknown device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	if browser == "" {
		return "unknown device"
	}
	if os := ua.OS(); os != "" {
		return browser + " on " + os
	}
	return browser
}
