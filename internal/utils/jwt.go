package utils // package utils holds token inspection and at-rest sealing helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token is not a JWT or carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenExpiry reads the exp claim of the upstream token without verifying
// its signature; the signing key belongs to the records API.  The token is
// sent raw in the Authorization header, but a "Bearer " prefix is tolerated.
func TokenExpiry(token string) (time.Time, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if strings.Count(token, ".") != 2 {
		return time.Time{}, ErrNoExpiry
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time.UTC(), nil
}

// TokenExpiryPtr is TokenExpiry for optional fields: nil when unknown.
func TokenExpiryPtr(token string) *time.Time {
	exp, err := TokenExpiry(token)
	if err != nil {
		return nil
	}
	return &exp
}

// TokenExpired reports whether a known expiry has passed at now.  Tokens
// without a readable expiry are never reported expired.
func TokenExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
