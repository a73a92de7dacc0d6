package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"provet/internal/intake/handler"
	"provet/internal/intake/service"
	"provet/internal/intake/store/application"
	id "provet/pkg/domain"
	"provet/pkg/testutil"
)

type IntakeHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	store  *application.InMemoryStore
}

func TestIntakeHandlerSuite(t *testing.T) {
	suite.Run(t, new(IntakeHandlerSuite))
}

func (s *IntakeHandlerSuite) SetupTest() {
	s.store = application.NewMemory()
	svc, err := service.New(s.store, service.WithLogger(testutil.DiscardLogger()))
	s.Require().NoError(err)

	h := handler.New(svc, testutil.DiscardLogger())
	s.router = chi.NewRouter()
	h.Register(s.router)
	// The real router wraps this in auth middleware; tests inject identity
	// directly via the request context.
	h.RegisterReview(s.router)
}

func validBody() map[string]any {
	return map[string]any{
		"name":                "Dr. Verde",
		"email":               "doc@example.com",
		"password":            "correct-horse",
		"license_number":      "A-12345",
		"license_state":       "CA",
		"specialty":           "oncology",
		"years_practice":      12,
		"publications":        8,
		"society_memberships": []string{"ASCO"},
		"document_keys":       []string{"licenses/doc.pdf"},
	}
}

func (s *IntakeHandlerSuite) submit() handler.SubmitResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/applications", validBody())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	return *testutil.UnmarshalResponse[handler.SubmitResponse](s.T(), rr)
}

func (s *IntakeHandlerSuite) TestSubmit() {
	s.Run("success returns score and level", func() {
		resp := s.submit()
		s.NotEmpty(resp.ApplicationID)
		s.Equal(40, resp.Score)
		s.Equal("SENIOR", resp.Level)
	})

	s.Run("duplicate is 409", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/applications", validBody())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("invalid payload is 400", func() {
		body := validBody()
		body["email"] = "not-an-email"
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/applications", body)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *IntakeHandlerSuite) TestReview() {
	submitted := s.submit()
	reviewer := id.NewProfessionalID().String()

	s.Run("without identity is 401", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/applications/"+submitted.ApplicationID+"/review", map[string]bool{"vetted": true})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("authenticated review flips vetted", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/applications/"+submitted.ApplicationID+"/review", map[string]bool{"vetted": true})
		req = testutil.WithProfessionalID(req, reviewer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[handler.ReviewResponse](s.T(), rr)
		s.True(resp.Vetted)

		appID, err := id.ParseApplicationID(submitted.ApplicationID)
		s.Require().NoError(err)
		stored, err := s.store.GetByID(req.Context(), appID)
		s.Require().NoError(err)
		s.True(stored.Vetted)
	})

	s.Run("unknown application is 404", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/applications/"+id.NewApplicationID().String()+"/review", map[string]bool{"vetted": true})
		req = testutil.WithProfessionalID(req, reviewer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id is 404", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/applications/not-a-uuid/review", map[string]bool{"vetted": true})
		req = testutil.WithProfessionalID(req, reviewer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
