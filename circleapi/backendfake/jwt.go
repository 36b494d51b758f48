package backendfake

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type claims struct {
	UserID     int64  `json:"user_id"`
	TokenType  string `json:"token_type"`
	Generation int    `json:"gen,omitempty"`
	jwtlib.RegisteredClaims
}

func (b *Backend) issueLocked(userID int64) circlemodel.AuthTokens {
	return circlemodel.AuthTokens{
		Access:  b.signLocked(userID, tokenTypeAccess, accessTokenTTL),
		Refresh: b.signLocked(userID, tokenTypeRefresh, refreshTokenTTL),
	}
}

func (b *Backend) signLocked(userID int64, tokenType string, ttl time.Duration) string {
	now := time.Now()
	c := claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if tokenType == tokenTypeAccess {
		c.Generation = b.generation
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// parseLocked validates signature, expiry and token type. Access tokens from an
// older generation and revoked refresh tokens are rejected.
func (b *Backend) parseLocked(raw, tokenType string) (*claims, error) {
	var c claims
	_, err := jwtlib.ParseWithClaims(raw, &c, func(*jwtlib.Token) (any, error) {
		return b.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c.TokenType != tokenType {
		return nil, fmt.Errorf("token type %q, want %q", c.TokenType, tokenType)
	}
	if tokenType == tokenTypeAccess && c.Generation != b.generation {
		return nil, fmt.Errorf("token expired")
	}
	if tokenType == tokenTypeRefresh && b.revoked[c.ID] {
		return nil, fmt.Errorf("token blacklisted")
	}
	return &c, nil
}
