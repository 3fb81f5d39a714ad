package jwtauth

import (
	"helpmoto/internal/platform/middleware"
)

// MiddlewareAdapter narrows Service to the middleware's validator interface.
type MiddlewareAdapter struct {
	service *Service
}

// NewMiddlewareAdapter wraps a Service for use with middleware.RequireAuth.
func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: claims.UserID,
		Scopes: claims.Scope,
	}, nil
}
