package token

import (
	"context"

	"provet/internal/platform/middleware"
)

// ServiceAdapter exposes the token service through the middleware's
// validator interface.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(ctx context.Context, tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		ProfessionalID: claims.ProfessionalID,
		SessionID:      claims.SessionID,
	}, nil
}
