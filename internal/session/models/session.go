// Package models defines the session domain types. A session tracks one
// login attempt through the second-factor state machine: created with the
// password verified, authenticated only once the one-time code clears.
package models

import (
	"time"

	id "provet/pkg/domain"
)

// Credential is the stored identity a login attempt is checked against.
// Only vetted professionals may authenticate.
type Credential struct {
	ProfessionalID id.ProfessionalID
	Name           string
	Contact        string
	PasswordHash   string
	Vetted         bool
}

// ProfessionalSession is one in-flight login. Factor2Verified flips exactly
// once; an expired session is deleted, not reused.
type ProfessionalSession struct {
	ID              id.SessionID
	ProfessionalID  id.ProfessionalID
	Name            string
	Code            string
	Device          string
	Factor2Verified bool
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// ExpiredAt reports whether the session is invalid at the given instant.
// Like upload grants, the boundary is exclusive on the valid side.
func (s ProfessionalSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
