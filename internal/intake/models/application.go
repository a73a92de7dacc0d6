// Package models defines the durable professional application record
// produced at intake.
package models

import (
	"time"

	"provet/internal/scoring"
	id "provet/pkg/domain"
)

// ProfessionalApplication is the record created when an applicant submits.
// Vetted starts false and is flipped by a separate review step; only vetted
// professionals can authenticate.
type ProfessionalApplication struct {
	ID             id.ApplicationID
	ProfessionalID id.ProfessionalID
	Name           string
	Email          string
	LicenseNumber  string
	LicenseState   string
	Specialty      string
	PasswordHash   string

	Profile      scoring.Application
	DocumentKeys []string

	Score  scoring.Score
	Vetted bool

	CreatedAt time.Time
}
