package handler

import (
	"strings"

	dErrors "provet/pkg/domain-errors"
)

// IssueGrantRequest is the HTTP request body for POST /uploads/grants.
type IssueGrantRequest struct {
	ObjectKey      string `json:"object_key"`
	SubjectID      string `json:"subject_id"`
	SubjectContact string `json:"subject_contact"`
}

// Validate checks required fields. Key containment is the service's concern;
// the handler only rejects structurally empty requests.
func (r *IssueGrantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.ObjectKey = strings.TrimSpace(r.ObjectKey)
	if r.ObjectKey == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "object_key is required")
	}
	if len(r.ObjectKey) > 512 {
		return dErrors.New(dErrors.CodeInvalidInput, "object_key must be at most 512 characters")
	}

	r.SubjectID = strings.TrimSpace(r.SubjectID)
	if r.SubjectID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subject_id is required")
	}

	r.SubjectContact = strings.TrimSpace(r.SubjectContact)
	if r.SubjectContact == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subject_contact is required")
	}

	return nil
}
