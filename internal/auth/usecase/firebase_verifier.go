package usecase

import (
	"context"
	"log"

	authdomain "gemini-task-backend/internal/auth/domain"

	"firebase.google.com/go/v4/auth"
)

// IDTokenVerifier is the part of *auth.Client the gate needs
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseVerifier struct {
	client IDTokenVerifier
}

// NewFirebaseVerifier verifies Firebase ID tokens
func NewFirebaseVerifier(client IDTokenVerifier) TokenVerifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (*authdomain.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		log.Printf("[Auth] Firebase token rejected: %v", err)
		return nil, ErrUnauthorized
	}
	if decoded.UID == "" {
		return nil, ErrUnauthorized
	}

	email, _ := decoded.Claims["email"].(string)
	return &authdomain.Identity{
		UserID:   decoded.UID,
		Email:    email,
		Provider: "firebase",
	}, nil
}
