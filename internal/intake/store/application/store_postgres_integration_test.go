//go:build integration

package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"provet/internal/intake/models"
	"provet/internal/intake/store/application"
	"provet/internal/scoring"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
	"provet/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *application.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.ApplySchema(context.Background(), application.Schema))
	s.store = application.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "professional_applications"))
}

func newApplication(email, license string) models.ProfessionalApplication {
	profile := scoring.Application{
		YearsPractice:      12,
		Publications:       8,
		SocietyMemberships: []string{"ASCO"},
	}
	return models.ProfessionalApplication{
		ID:             id.NewApplicationID(),
		ProfessionalID: id.NewProfessionalID(),
		Name:           "Dr. Verde",
		Email:          email,
		LicenseNumber:  license,
		LicenseState:   "CA",
		Specialty:      "oncology",
		PasswordHash:   "$2a$10$hash",
		Profile:        profile,
		DocumentKeys:   []string{"licenses/doc.pdf", "photos/portrait.png"},
		Score:          scoring.Compute(profile),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndReadBack() {
	ctx := context.Background()
	app := newApplication("doc@example.com", "A-12345")

	s.Require().NoError(s.store.Create(ctx, app))

	got, err := s.store.GetByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ProfessionalID, got.ProfessionalID)
	s.Equal(app.Email, got.Email)
	s.Equal(app.Profile, got.Profile)
	s.Equal(app.DocumentKeys, got.DocumentKeys)
	s.Equal(app.Score, got.Score)
	s.False(got.Vetted)
	s.Equal(app.CreatedAt, got.CreatedAt.UTC())

	byEmail, err := s.store.FindByEmail(ctx, "DOC@EXAMPLE.COM")
	s.Require().NoError(err)
	s.Equal(app.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestUniqueConstraints() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newApplication("doc@example.com", "A-12345")))

	s.ErrorIs(s.store.Create(ctx, newApplication("doc@example.com", "B-99999")), sentinel.ErrConflict)
	s.ErrorIs(s.store.Create(ctx, newApplication("other@example.com", "A-12345")), sentinel.ErrConflict)

	// Uniqueness follows the same lower(email) rule FindByEmail matches on.
	s.ErrorIs(s.store.Create(ctx, newApplication("Doc@Example.com", "C-55555")), sentinel.ErrConflict)
}

// TestConcurrentDuplicateSubmissions verifies the unique constraint holds
// under real write contention: one insert wins, the rest conflict.
func (s *PostgresStoreSuite) TestConcurrentDuplicateSubmissions() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newApplication("race@example.com", "R-00001"))
			switch {
			case err == nil:
				successCount.Add(1)
			default:
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one submission should win")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestSetVetted() {
	ctx := context.Background()
	app := newApplication("doc@example.com", "A-12345")
	s.Require().NoError(s.store.Create(ctx, app))

	s.Require().NoError(s.store.SetVetted(ctx, app.ID, true))

	got, err := s.store.GetByID(ctx, app.ID)
	s.Require().NoError(err)
	s.True(got.Vetted)

	s.ErrorIs(s.store.SetVetted(ctx, id.NewApplicationID(), true), sentinel.ErrNotFound)
}
