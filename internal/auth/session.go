package auth

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "ft_token"

type contextKey string

const claimsContextKey contextKey = "session_claims"

// Sessions binds tokens to the session cookie.
type Sessions struct {
	tokens *TokenManager
	secure bool
}

// NewSessions returns a cookie session manager. secure marks cookies
// Secure and should be true in production.
func NewSessions(tokens *TokenManager, secure bool) *Sessions {
	return &Sessions{tokens: tokens, secure: secure}
}

// Identify returns the claims of the request's session, if any.
// A missing cookie and an invalid token are indistinguishable.
func (s *Sessions) Identify(r *http.Request) (*Claims, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := s.tokens.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Start issues a token for the user and sets it as the session cookie.
func (s *Sessions) Start(w http.ResponseWriter, userID, email, name string) error {
	token, err := s.tokens.Issue(userID, email, name)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear overwrites the session cookie with an expired empty one.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // emitted as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require rejects requests without a valid session by calling
// onUnauthorized; otherwise the claims are stored in the request context.
func (s *Sessions) Require(onUnauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := s.Identify(r)
			if !ok {
				onUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFromContext returns the identity stored by Require.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}
