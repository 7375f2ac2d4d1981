package auth

import (
	"context"
	"fmt"

	"tablestore/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// JWTProvider verifies HS256 tokens signed with a shared secret, as issued by
// Supabase-style providers. It has no user directory: every subject counts
// as existing and accounts cannot be created through it.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) VerifyCredential(_ context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidCredential)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		logger.Sugar.Debugf("Invalid token: %v", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: could not parse token claims", ErrInvalidCredential)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: subject claim is missing or invalid", ErrInvalidCredential)
	}
	return sub, nil
}

func (p *JWTProvider) UserExists(context.Context, string) (bool, error) {
	return true, nil
}

func (p *JWTProvider) CreateUser(context.Context, string, string, string) error {
	return ErrUnsupported
}
