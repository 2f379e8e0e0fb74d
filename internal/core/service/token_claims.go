package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields of an access token the portal displays or logs.
// The signature is not checked: the backend is the only verifier.
type TokenClaims struct {
	UserID    string
	Role      string
	ExpiresAt *time.Time
}

// InspectToken decodes an access token without verifying it.
func InspectToken(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("inspect token: %w", err)
	}

	var out TokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	switch id := claims["user_id"].(type) {
	case string:
		out.UserID = id
	case float64:
		out.UserID = fmt.Sprintf("%.0f", id)
	}
	return out, nil
}
