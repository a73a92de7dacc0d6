package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"provet/internal/session/handler"
	"provet/internal/session/models"
	"provet/internal/session/notify"
	"provet/internal/session/service"
	sessionstore "provet/internal/session/store/session"
	"provet/internal/session/token"
	id "provet/pkg/domain"
	"provet/pkg/platform/secrets"
	"provet/pkg/platform/sentinel"
	"provet/pkg/requestcontext"
	"provet/pkg/testutil"
)

type stubCredentials struct {
	cred models.Credential
}

func (s *stubCredentials) FindByIdentifier(_ context.Context, identifier string) (*models.Credential, error) {
	if identifier == s.cred.Contact {
		cred := s.cred
		return &cred, nil
	}
	return nil, sentinel.ErrNotFound
}

type SessionHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	sender *notify.MemorySender
	now    time.Time
}

func TestSessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SessionHandlerSuite))
}

func (s *SessionHandlerSuite) SetupTest() {
	passwordHash, err := secrets.Hash("correct-horse")
	s.Require().NoError(err)

	creds := &stubCredentials{cred: models.Credential{
		ProfessionalID: id.NewProfessionalID(),
		Name:           "Dr. Verde",
		Contact:        "vetted@example.com",
		PasswordHash:   passwordHash,
		Vetted:         true,
	}}

	s.sender = notify.NewMemorySender()
	svc, err := service.New(creds, sessionstore.NewMemory(), token.NewService("test-key", "provet"),
		service.Config{SessionTTL: 24 * time.Hour, TokenTTL: time.Hour},
		service.WithCodeSender(s.sender),
		service.WithLogger(testutil.DiscardLogger()),
	)
	s.Require().NoError(err)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	handler.New(svc, testutil.DiscardLogger()).Register(s.router)
}

func (s *SessionHandlerSuite) login() handler.BeginSessionResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions", map[string]string{
		"identifier": "vetted@example.com",
		"password":   "correct-horse",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	return *testutil.UnmarshalResponse[handler.BeginSessionResponse](s.T(), rr)
}

func (s *SessionHandlerSuite) TestBeginSession() {
	s.Run("success returns hint, not code", func() {
		resp := s.login()
		s.NotEmpty(resp.SessionID)
		s.Equal("v*****@example.com", resp.DeliveryHint)
	})

	s.Run("unknown identifier is 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions", map[string]string{
			"identifier": "nobody@example.com",
			"password":   "correct-horse",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("missing password is 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions", map[string]string{
			"identifier": "vetted@example.com",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *SessionHandlerSuite) TestVerify() {
	resp := s.login()
	sent := s.sender.Sent()
	s.Require().Len(sent, 1)

	s.Run("wrong code is 401", func() {
		wrong := "000000"
		if wrong == sent[0].Code {
			wrong = "000001"
		}
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions/verify", map[string]string{
			"session_id": resp.SessionID,
			"code":       wrong,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("malformed session id is 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions/verify", map[string]string{
			"session_id": "not-a-uuid",
			"code":       sent[0].Code,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("valid code mints a token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions/verify", map[string]string{
			"session_id": resp.SessionID,
			"code":       sent[0].Code,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		verify := testutil.UnmarshalResponse[handler.VerifyResponse](s.T(), rr)
		s.NotEmpty(verify.Token)
		s.Equal("Dr. Verde", verify.Professional.Name)

		ctx := requestcontext.WithTime(context.Background(), s.now)
		claims, err := token.NewService("test-key", "provet").ValidateToken(ctx, verify.Token)
		s.Require().NoError(err)
		s.Equal(resp.SessionID, claims.SessionID)
	})

	s.Run("replay of the code is 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions/verify", map[string]string{
			"session_id": resp.SessionID,
			"code":       sent[0].Code,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}
