// Package token reads the claims of the backend-issued JWT without verifying
// its signature. The client never holds the signing secret; claims are only
// used to skip calls that would certainly be rejected.
package token

import (
	"fmt"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID uint64        `json:"user_id"`
	Role   constant.Role `json:"role"`
	jwt.RegisteredClaims
}

func Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the exp claim lies before now. Tokens that cannot
// be parsed or carry no exp are left to the backend to judge.
func Expired(tokenString string, now time.Time) bool {
	claims, err := Parse(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
