package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
)

// Claims is an unverified reading of a JWT. The signature is not checked, so
// it is only fit for diagnostics and expiry hints.
type Claims struct {
	UserID    string
	TokenType string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Raw       jwt.MapClaims
}

func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the payload of a token without verifying it.
func Inspect(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "inspect token")
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return nil, errors.Wrapf(err, "inspect token")
	}

	claims := &Claims{Raw: mapClaims}
	if v, ok := mapClaims["user_id"]; ok {
		claims.UserID = claimString(v)
	} else if sub, err := mapClaims.GetSubject(); err == nil {
		claims.UserID = sub
	}
	if v, ok := mapClaims["token_type"]; ok {
		claims.TokenType = claimString(v)
	}
	if v, ok := mapClaims["jti"]; ok {
		claims.ID = claimString(v)
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// claimString prints numeric ids without an exponent.
func claimString(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
