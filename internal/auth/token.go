// Package auth issues and verifies session tokens, hashes passwords and
// carries the authenticated identity through HTTP requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionDuration is the lifetime of both the token and its cookie.
const SessionDuration = 7 * 24 * time.Hour

// ErrInvalidToken is returned for every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed session payload.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens with one secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    SessionDuration,
		now:    time.Now,
	}
}

// Issue returns a signed token for the identity, valid for SessionDuration.
func (m *TokenManager) Issue(userID, email, name string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Expired, tampered, malformed
// and wrongly-signed tokens all yield ErrInvalidToken.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
