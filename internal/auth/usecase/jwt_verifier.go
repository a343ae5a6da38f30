package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	authdomain "gemini-task-backend/internal/auth/domain"

	"github.com/golang-jwt/jwt/v5"
)

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier verifies HS256 tokens signed with secret
func NewJWTVerifier(secret string) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required for jwt auth")
	}
	return &jwtVerifier{secret: []byte(secret)}, nil
}

func (v *jwtVerifier) Verify(_ context.Context, tokenString string) (*authdomain.Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		log.Printf("[Auth] JWT rejected: %v", err)
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrUnauthorized
	}
	email, _ := claims["email"].(string)

	return &authdomain.Identity{UserID: userID, Email: email, Provider: "jwt"}, nil
}

// IssueToken signs a token the jwt verifier accepts
func IssueToken(secret, userID, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required")
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
