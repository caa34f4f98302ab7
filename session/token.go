package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client inspects. The token
// is decoded without signature verification; the server is the authority,
// the client only peeks for diagnostics and expiry hints.
type Claims struct {
	Subject   string
	Email     string
	UserType  UserType
	ExpiresAt time.Time
}

// PeekClaims decodes the claims of a bearer token without verifying it.
func PeekClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("jwt parse: %w", err)
	}

	c := Claims{
		Subject:  getStringClaim(claims, "sub"),
		Email:    getStringClaim(claims, "email"),
		UserType: UserType(getStringClaim(claims, "userType")),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
