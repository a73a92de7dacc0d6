package handler

import (
	"provet/internal/intake/service"
	"provet/internal/scoring"
	dErrors "provet/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /applications.
type SubmitRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	LicenseNumber string   `json:"license_number"`
	LicenseState  string   `json:"license_state"`
	Specialty     string   `json:"specialty"`
	DocumentKeys  []string `json:"document_keys"`

	YearsPractice        int      `json:"years_practice"`
	Subspecialties       []string `json:"subspecialties"`
	Publications         int      `json:"publications"`
	TrialsInvolved       bool     `json:"trials_involved"`
	TrialsDescription    string   `json:"trials_description"`
	ConferencePresenting bool     `json:"conference_presenting"`
	Teaching             bool     `json:"teaching"`
	SocietyMemberships   []string `json:"society_memberships"`
	LeadershipRoles      string   `json:"leadership_roles"`
	PeerReview           string   `json:"peer_review"`
}

// Validate only guards against an absent body; field-level rules live in the
// service so they hold for every caller, not just HTTP.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// ToServiceRequest maps the wire shape onto the domain request.
func (r *SubmitRequest) ToServiceRequest() service.SubmitRequest {
	return service.SubmitRequest{
		Name:          r.Name,
		Email:         r.Email,
		Password:      r.Password,
		LicenseNumber: r.LicenseNumber,
		LicenseState:  r.LicenseState,
		Specialty:     r.Specialty,
		DocumentKeys:  r.DocumentKeys,
		Profile: scoring.Application{
			YearsPractice:        r.YearsPractice,
			Subspecialties:       r.Subspecialties,
			Publications:         r.Publications,
			ClinicalTrials:       scoring.ClinicalTrials{Involved: r.TrialsInvolved, Description: r.TrialsDescription},
			ConferencePresenting: r.ConferencePresenting,
			Teaching:             r.Teaching,
			SocietyMemberships:   r.SocietyMemberships,
			LeadershipRoles:      r.LeadershipRoles,
			PeerReview:           r.PeerReview,
		},
	}
}

// ReviewRequest is the HTTP request body for POST /applications/{id}/review.
type ReviewRequest struct {
	Vetted bool `json:"vetted"`
}

func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}
