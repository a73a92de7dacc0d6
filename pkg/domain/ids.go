// Package domain holds typed identifiers used across the pipeline.
//
// IDs are distinct uuid-backed types so a SessionID can never be passed where
// a ProfessionalID is expected. Construct them via the Parse functions at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "provet/pkg/domain-errors"
)

// ProfessionalID identifies a medical professional (applicant or vetted).
type ProfessionalID uuid.UUID

// SessionID identifies an authentication session.
type SessionID uuid.UUID

// ApplicationID identifies a submitted professional application.
type ApplicationID uuid.UUID

func (id ProfessionalID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string      { return uuid.UUID(id).String() }
func (id ApplicationID) String() string  { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id ProfessionalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewProfessionalID mints a fresh professional ID.
func NewProfessionalID() ProfessionalID { return ProfessionalID(uuid.New()) }

// NewSessionID mints a fresh session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewApplicationID mints a fresh application ID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseProfessionalID validates external input into a ProfessionalID.
func ParseProfessionalID(s string) (ProfessionalID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ProfessionalID{}, err
	}
	return ProfessionalID(u), nil
}

// ParseSessionID validates external input into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// ParseApplicationID validates external input into an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(u), nil
}
