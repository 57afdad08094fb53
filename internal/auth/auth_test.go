package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-1234"

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager(testSecret)

	tok, err := m.Issue("u1", "a@x.com", "Alice")
	require.NoError(t, err)

	c, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "a@x.com", c.Email)
	assert.Equal(t, "Alice", c.Name)
	assert.WithinDuration(t, time.Now().Add(SessionDuration), c.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_VerifyFailuresCollapse(t *testing.T) {
	m := NewTokenManager(testSecret)
	tok, err := m.Issue("u1", "a@x.com", "Alice")
	require.NoError(t, err)

	expired := NewTokenManager(testSecret)
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	old, err := expired.Issue("u1", "a@x.com", "Alice")
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret-another-secret-123").Issue("u1", "a@x.com", "Alice")
	require.NoError(t, err)

	mallory, err := m.Issue("u2", "m@x.com", "Mallory")
	require.NoError(t, err)
	parts, forged := strings.Split(tok, "."), strings.Split(mallory, ".")
	tampered := parts[0] + "." + forged[1] + "." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"tampered":     tampered,
		"expired":      old,
		"wrong secret": other,
		"alg none":     unsigned,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(input)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
	assert.False(t, CheckPassword("not-a-hash", "pw1"))
}

func TestSessions_StartAndIdentify(t *testing.T) {
	s := NewSessions(NewTokenManager(testSecret), true)

	rec := httptest.NewRecorder()
	require.NoError(t, s.Start(rec, "u1", "a@x.com", "Alice"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int(SessionDuration.Seconds()), c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	claims, ok := s.Identify(req)
	require.True(t, ok)
	assert.Equal(t, "u1", claims.UserID)
}

func TestSessions_IdentifyWithoutCookie(t *testing.T) {
	s := NewSessions(NewTokenManager(testSecret), false)

	_, ok := s.Identify(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})
	_, ok = s.Identify(req)
	assert.False(t, ok)
}

func TestSessions_Clear(t *testing.T) {
	s := NewSessions(NewTokenManager(testSecret), false)
	rec := httptest.NewRecorder()
	s.Clear(rec)

	header := rec.Header().Get("Set-Cookie")
	assert.Contains(t, header, CookieName+"=;")
	assert.Contains(t, header, "Max-Age=0")
	assert.Contains(t, header, "HttpOnly")
}

func TestSessions_Require(t *testing.T) {
	tokens := NewTokenManager(testSecret)
	s := NewSessions(tokens, false)

	var seen *Claims
	h := s.Require(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	tok, err := tokens.Issue("u1", "a@x.com", "Alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}
