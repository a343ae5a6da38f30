package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	authdomain "gemini-task-backend/internal/auth/domain"
	"gemini-task-backend/pkg/config"
)

// ErrUnauthorized is the only error a verifier reports to callers. The cause
// is logged, never returned.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier checks a bearer credential and returns who sent it
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authdomain.Identity, error)
}

// NewTokenVerifier picks the verifier for cfg. The bypass is only built when
// it was explicitly enabled in a development environment.
func NewTokenVerifier(cfg *config.Config, firebaseAuth IDTokenVerifier) (TokenVerifier, error) {
	if cfg.AuthBypass {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("AUTH_BYPASS is only allowed when APP_ENV=%s", config.EnvDevelopment)
		}
		log.Printf("[Auth] WARNING: token verification is bypassed, all requests act as %q", cfg.DevUserID)
		return NewBypassVerifier(cfg.DevUserID), nil
	}

	switch cfg.AuthProvider {
	case config.AuthFirebase:
		if firebaseAuth == nil {
			return nil, fmt.Errorf("firebase auth client is required for AUTH_PROVIDER=%s", config.AuthFirebase)
		}
		return NewFirebaseVerifier(firebaseAuth), nil
	case config.AuthJWT:
		return NewJWTVerifier(cfg.JWTSecret)
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}
