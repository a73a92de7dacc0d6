// Package session persists in-flight login sessions. The store owns the
// second-factor state transition: CompleteSecondFactor is a single
// compare-and-set so two concurrent verifications can never both succeed.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"provet/internal/session/models"
	id "provet/pkg/domain"
	"provet/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map for tests and dev.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[id.SessionID]models.ProfessionalSession
}

// NewMemory constructs an empty in-memory session store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]models.ProfessionalSession)}
}

func (s *InMemoryStore) Create(_ context.Context, session models.ProfessionalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrConflict)
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (*models.ProfessionalSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return &session, nil
}

// CompleteSecondFactor atomically verifies the code and flips the session to
// authenticated. Outcomes, in check order: not found, expired (the session is
// deleted), already verified, code mismatch, success. Exactly one of two
// concurrent valid calls succeeds.
func (s *InMemoryStore) CompleteSecondFactor(_ context.Context, sessionID id.SessionID, code string, now time.Time) (*models.ProfessionalSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	if session.ExpiredAt(now) {
		delete(s.sessions, sessionID)
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrExpired)
	}
	if session.Factor2Verified {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrAlreadyUsed)
	}
	if session.Code != code {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrInvalidState)
	}

	session.Factor2Verified = true
	s.sessions[sessionID] = session
	return &session, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}
