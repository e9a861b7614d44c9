package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var errNoExpiry = errors.New("token carries no expiry claim")

// TokenExpiry reads the expiry claim from the access token the shop
// API issued. The token is the remote's to verify; this side only
// inspects it for diagnostics, so the signature is not checked.
func TokenExpiry(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("no session token")
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
