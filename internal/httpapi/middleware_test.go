package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/internal/service"
	"github.com/odelu/catalog/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims identityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func testServer() *Server {
	return New(Deps{Log: logger.NewNope(), JWTSecret: testSecret})
}

func identityEcho(captured **service.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = identity(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	t.Run("no header passes through anonymous", func(t *testing.T) {
		t.Parallel()

		var got *service.Identity
		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, got)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		t.Parallel()

		token := signToken(t, testSecret, identityClaims{
			Username: "alice",
			Role:     "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		var got *service.Identity
		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, "user-1", got.ID)
		require.Equal(t, "alice", got.Username)
		require.True(t, got.IsAdmin())
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		t.Parallel()

		token := signToken(t, "other-secret", identityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		var got *service.Identity
		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Nil(t, got)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		t.Parallel()

		token := signToken(t, testSecret, identityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})

		var got *service.Identity
		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without subject is rejected", func(t *testing.T) {
		t.Parallel()

		token := signToken(t, testSecret, identityClaims{
			Username: "ghost",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var got *service.Identity
		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		t.Parallel()

		srv := testServer()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		var got *service.Identity
		srv.resolveIdentity(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	srv := testServer()

	t.Run("anonymous is rejected", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		var got *service.Identity
		srv.requireAuth(identityEcho(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		t.Parallel()

		token := signToken(t, testSecret, identityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var got *service.Identity
		srv.resolveIdentity(srv.requireAuth(identityEcho(&got))).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
	})
}
