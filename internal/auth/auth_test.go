package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "fitness.test", TTL: time.Hour}

type stubRevocations struct {
	revoked map[string]bool
}

func (s *stubRevocations) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	if s.revoked == nil {
		s.revoked = map[string]bool{}
	}
	s.revoked[tokenID] = true
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	token, issued, err := Issue(testConfig, 42, "ada", time.Now())
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "ada", claims.Username)
	require.Equal(t, issued.TokenID, claims.TokenID)
	require.True(t, claims.HasScope(ScopeFitnessWrite))
	require.True(t, claims.HasScope(ScopeFitnessRead))
}

func TestParseRejectsWrongIssuerAndExpired(t *testing.T) {
	token, _, err := Issue(testConfig, 1, "a", time.Now())
	require.NoError(t, err)

	_, err = Parse(token, Config{Secret: testConfig.Secret, Issuer: "someone-else"})
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := Issue(testConfig, 1, "a", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = Parse(expired, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestParseRejectsNonNumericSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	_, err = Parse(signed, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	ok, err := CheckPassword(hash, "s3cret")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	revocations := &stubRevocations{}
	mw := NewMiddleware(testConfig, PublicPaths("/healthz"), revocations)

	var seen *Claims
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/workouts", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"type":"unauthorized","detail":"missing bearer token"}`, rec.Body.String())

	token, claims, err := Issue(testConfig, 7, "gus", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(7), seen.UserID)

	require.NoError(t, revocations.Revoke(context.Background(), claims.TokenID, claims.ExpiresAt))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "revoked")
}
