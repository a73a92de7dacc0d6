package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"provet/internal/intake/store/application"
	"provet/internal/scoring"
	id "provet/pkg/domain"
	dErrors "provet/pkg/domain-errors"
	"provet/pkg/platform/secrets"
	"provet/pkg/requestcontext"
)

type IntakeServiceSuite struct {
	suite.Suite
	store *application.InMemoryStore
	svc   *Service
	now   time.Time
	ctx   context.Context
}

func TestIntakeServiceSuite(t *testing.T) {
	suite.Run(t, new(IntakeServiceSuite))
}

func (s *IntakeServiceSuite) SetupTest() {
	s.store = application.NewMemory()
	svc, err := New(s.store)
	s.Require().NoError(err)
	s.svc = svc
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:          "Dr. Verde",
		Email:         "doc@example.com",
		Password:      "correct-horse",
		LicenseNumber: "A-12345",
		LicenseState:  "CA",
		Specialty:     "oncology",
		Profile: scoring.Application{
			YearsPractice:      12,
			Publications:       8,
			SocietyMemberships: []string{"ASCO"},
		},
		DocumentKeys: []string{"licenses/doc.pdf"},
	}
}

func (s *IntakeServiceSuite) TestSubmit_Success() {
	result, err := s.svc.Submit(s.ctx, validRequest())
	s.Require().NoError(err)

	// 15 years-band + 10 board + 10 publications + 5 societies.
	s.Equal(40, result.Score)
	s.Equal(scoring.LevelSenior, result.Level)

	stored, err := s.store.GetByID(s.ctx, result.ApplicationID)
	s.Require().NoError(err)
	s.False(stored.Vetted, "new applications are never pre-vetted")
	s.Equal(s.now, stored.CreatedAt)
	s.Equal(result.Score, stored.Score.Total)
	s.NotEqual("correct-horse", stored.PasswordHash)
	s.NoError(secrets.Verify("correct-horse", stored.PasswordHash))
}

func (s *IntakeServiceSuite) TestSubmit_NormalizesEmailCase() {
	req := validRequest()
	req.Email = "  Doc@Example.COM "

	result, err := s.svc.Submit(s.ctx, req)
	s.Require().NoError(err)

	stored, err := s.store.GetByID(s.ctx, result.ApplicationID)
	s.Require().NoError(err)
	s.Equal("doc@example.com", stored.Email)
}

func (s *IntakeServiceSuite) TestSubmit_DuplicateIdentity() {
	_, err := s.svc.Submit(s.ctx, validRequest())
	s.Require().NoError(err)

	s.Run("same email", func() {
		req := validRequest()
		req.LicenseNumber = "B-99999"
		_, err := s.svc.Submit(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("same email differing in case", func() {
		req := validRequest()
		req.Email = "DOC@example.com"
		req.LicenseNumber = "B-99999"
		_, err := s.svc.Submit(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("same license", func() {
		req := validRequest()
		req.Email = "other@example.com"
		_, err := s.svc.Submit(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *IntakeServiceSuite) TestSubmit_Validation() {
	mutations := map[string]func(*SubmitRequest){
		"empty name":         func(r *SubmitRequest) { r.Name = "  " },
		"empty email":        func(r *SubmitRequest) { r.Email = "" },
		"malformed email":    func(r *SubmitRequest) { r.Email = "not-an-email" },
		"short password":     func(r *SubmitRequest) { r.Password = "short" },
		"empty license":      func(r *SubmitRequest) { r.LicenseNumber = "" },
		"empty state":        func(r *SubmitRequest) { r.LicenseState = "" },
		"negative years":     func(r *SubmitRequest) { r.Profile.YearsPractice = -1 },
		"blank document key": func(r *SubmitRequest) { r.DocumentKeys = []string{" "} },
	}

	for name, mutate := range mutations {
		s.Run(name, func() {
			req := validRequest()
			mutate(&req)
			_, err := s.svc.Submit(s.ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func (s *IntakeServiceSuite) TestReview() {
	result, err := s.svc.Submit(s.ctx, validRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Review(s.ctx, result.ApplicationID, true))

	stored, err := s.store.GetByID(s.ctx, result.ApplicationID)
	s.Require().NoError(err)
	s.True(stored.Vetted)

	err = s.svc.Review(s.ctx, id.NewApplicationID(), true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
