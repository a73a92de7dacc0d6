package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"provet/internal/intake/models"
	"provet/internal/scoring"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
)

// Schema is the DDL for the applications table. Applied by migrations in
// production and by integration tests directly.
const Schema = `
CREATE TABLE IF NOT EXISTS professional_applications (
	id              UUID PRIMARY KEY,
	professional_id UUID NOT NULL,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	license_number  TEXT NOT NULL,
	license_state   TEXT NOT NULL,
	specialty       TEXT NOT NULL,
	password_hash   TEXT NOT NULL,
	profile         JSONB NOT NULL,
	document_keys   TEXT[] NOT NULL DEFAULT '{}',
	score           JSONB NOT NULL,
	vetted          BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT professional_applications_license_key UNIQUE (license_number)
);
CREATE UNIQUE INDEX IF NOT EXISTS professional_applications_email_key
	ON professional_applications (lower(email));
`

const uniqueViolation = "23505"

// PostgresStore persists applications in Postgres via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool; the caller owns its lifecycle.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, app models.ProfessionalApplication) error {
	profile, err := json.Marshal(app.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	score, err := json.Marshal(app.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO professional_applications
			(id, professional_id, name, email, license_number, license_state,
			 specialty, password_hash, profile, document_keys, score, vetted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(app.ID), uuid.UUID(app.ProfessionalID), app.Name, app.Email,
		app.LicenseNumber, app.LicenseState, app.Specialty, app.PasswordHash,
		profile, app.DocumentKeys, score, app.Vetted, app.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("duplicate identity: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, applicationID id.ApplicationID) (*models.ProfessionalApplication, error) {
	return s.scanOne(ctx, `SELECT `+columns+` FROM professional_applications WHERE id = $1`, uuid.UUID(applicationID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.ProfessionalApplication, error) {
	return s.scanOne(ctx, `SELECT `+columns+` FROM professional_applications WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) SetVetted(ctx context.Context, applicationID id.ApplicationID, vetted bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE professional_applications SET vetted = $2 WHERE id = $1`,
		uuid.UUID(applicationID), vetted,
	)
	if err != nil {
		return fmt.Errorf("update vetted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %s: %w", applicationID, sentinel.ErrNotFound)
	}
	return nil
}

const columns = `id, professional_id, name, email, license_number, license_state,
	specialty, password_hash, profile, document_keys, score, vetted, created_at`

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*models.ProfessionalApplication, error) {
	var (
		app     models.ProfessionalApplication
		appID   uuid.UUID
		profID  uuid.UUID
		profile []byte
		score   []byte
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&appID, &profID, &app.Name, &app.Email, &app.LicenseNumber,
		&app.LicenseState, &app.Specialty, &app.PasswordHash,
		&profile, &app.DocumentKeys, &score, &app.Vetted, &app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query application: %w", err)
	}

	app.ID = id.ApplicationID(appID)
	app.ProfessionalID = id.ProfessionalID(profID)
	if err := json.Unmarshal(profile, &app.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	var sc scoring.Score
	if err := json.Unmarshal(score, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal score: %w", err)
	}
	app.Score = sc
	return &app, nil
}
