// Package application persists professional applications. Duplicate identity
// (email or license number) is a store-level fact reported as ErrConflict.
package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"provet/internal/intake/models"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in maps for tests and dev.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[id.ApplicationID]models.ProfessionalApplication
	byEmail   map[string]id.ApplicationID
	byLicense map[string]id.ApplicationID
}

// NewMemory constructs an empty in-memory application store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[id.ApplicationID]models.ProfessionalApplication),
		byEmail:   make(map[string]id.ApplicationID),
		byLicense: make(map[string]id.ApplicationID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemoryStore) Create(_ context.Context, app models.ProfessionalApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := emailKey(app.Email)
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("application with email %q: %w", app.Email, sentinel.ErrConflict)
	}
	if _, ok := s.byLicense[app.LicenseNumber]; ok {
		return fmt.Errorf("application with license %q: %w", app.LicenseNumber, sentinel.ErrConflict)
	}

	s.byID[app.ID] = app
	s.byEmail[email] = app.ID
	s.byLicense[app.LicenseNumber] = app.ID
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, applicationID id.ApplicationID) (*models.ProfessionalApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[applicationID]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", applicationID, sentinel.ErrNotFound)
	}
	return &app, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.ProfessionalApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("application for %q: %w", email, sentinel.ErrNotFound)
	}
	app := s.byID[appID]
	return &app, nil
}

func (s *InMemoryStore) SetVetted(_ context.Context, applicationID id.ApplicationID, vetted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[applicationID]
	if !ok {
		return fmt.Errorf("application %s: %w", applicationID, sentinel.ErrNotFound)
	}
	app.Vetted = vetted
	s.byID[applicationID] = app
	return nil
}
