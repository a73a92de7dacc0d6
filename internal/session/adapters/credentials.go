// Package adapters bridges the intake record store into the session
// service's credential view.
package adapters

import (
	"context"

	intakeservice "provet/internal/intake/service"
	"provet/internal/session/models"
)

// CredentialAdapter exposes persisted applications as login credentials.
// The application's email doubles as both the login identifier and the
// contact method codes are delivered to.
type CredentialAdapter struct {
	store intakeservice.ApplicationStore
}

func NewCredentialAdapter(store intakeservice.ApplicationStore) *CredentialAdapter {
	return &CredentialAdapter{store: store}
}

func (a *CredentialAdapter) FindByIdentifier(ctx context.Context, identifier string) (*models.Credential, error) {
	app, err := a.store.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return &models.Credential{
		ProfessionalID: app.ProfessionalID,
		Name:           app.Name,
		Contact:        app.Email,
		PasswordHash:   app.PasswordHash,
		Vetted:         app.Vetted,
	}, nil
}
