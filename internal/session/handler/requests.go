package handler

import (
	"strings"

	id "provet/pkg/domain"
	dErrors "provet/pkg/domain-errors"
)

// BeginSessionRequest is the HTTP request body for POST /sessions.
type BeginSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r *BeginSessionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

// VerifyRequest is the HTTP request body for POST /sessions/verify.
type VerifyRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`

	parsedSessionID id.SessionID
}

func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.SessionID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "session_id is required")
	}
	sessionID, err := id.ParseSessionID(r.SessionID)
	if err != nil {
		// A malformed session id can never verify; same answer as a wrong one.
		return dErrors.New(dErrors.CodeUnauthorized, "invalid session or code")
	}
	r.parsedSessionID = sessionID

	if r.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "code is required")
	}
	return nil
}

// ParsedSessionID returns the validated session id.
func (r *VerifyRequest) ParsedSessionID() id.SessionID {
	return r.parsedSessionID
}
