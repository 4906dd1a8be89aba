package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeep/internal/identity"
	"shopkeep/internal/token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func principalEcho(t *testing.T, captured **identity.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = identity.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthResolvesPrincipal(t *testing.T) {
	tokens := token.NewService("middleware-test-key", time.Hour)
	want := &identity.Principal{ID: uuid.New(), Role: identity.RoleSeller, Name: "Sam", Email: "sam@example.com"}
	signed, err := tokens.Issue(want)
	require.NoError(t, err)

	var got *identity.Principal
	handler := RequireAuth(tokens, discardLogger())(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Role, got.Role)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	tokens := token.NewService("middleware-test-key", time.Hour)

	var got *identity.Principal
	handler := RequireAuth(tokens, discardLogger())(principalEcho(t, &got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	tokens := token.NewService("middleware-test-key", time.Hour)

	var got *identity.Principal
	handler := RequireAuth(tokens, discardLogger())(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(discardLogger(), identity.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	adminReq := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
	adminCtx := identity.ContextWithPrincipal(adminReq.Context(), &identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminReq.WithContext(adminCtx))
	assert.Equal(t, http.StatusOK, rec.Code)

	sellerReq := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
	sellerCtx := identity.ContextWithPrincipal(sellerReq.Context(), &identity.Principal{ID: uuid.New(), Role: identity.RoleSeller})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sellerReq.WithContext(sellerCtx))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	anonReq := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, anonReq)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
