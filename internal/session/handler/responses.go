package handler

import (
	"provet/internal/session/service"
)

// BeginSessionResponse is the HTTP response body for POST /sessions.
// It carries where the code went, never the code itself.
type BeginSessionResponse struct {
	SessionID    string `json:"session_id"`
	DeliveryHint string `json:"delivery_hint"`
}

func FromBeginResult(result *service.BeginSessionResult) BeginSessionResponse {
	return BeginSessionResponse{
		SessionID:    result.SessionID.String(),
		DeliveryHint: result.DeliveryHint,
	}
}

// ProfessionalResponse is the minimal profile returned with a token.
type ProfessionalResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VerifyResponse is the HTTP response body for POST /sessions/verify.
type VerifyResponse struct {
	Token        string               `json:"token"`
	Professional ProfessionalResponse `json:"professional"`
}

func FromVerifyResult(result *service.VerifyResult) VerifyResponse {
	return VerifyResponse{
		Token: result.Token,
		Professional: ProfessionalResponse{
			ID:   result.Professional.ID.String(),
			Name: result.Professional.Name,
		},
	}
}
