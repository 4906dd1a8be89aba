package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"shopkeep/internal/identity"
)

// PrincipalVerifier validates a bearer token and returns the principal it
// encodes.
type PrincipalVerifier interface {
	Verify(tokenString string) (*identity.Principal, error)
}

// RequireAuth resolves the principal from the Authorization header exactly
// once per request and stores it on the context. Downstream services receive
// it explicitly; there is no ambient session state beyond this.
func RequireAuth(verifier PrincipalVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "

			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.ContextWithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole rejects requests whose principal does not carry one of the
// given roles. It guards admin-only surfaces; services still run their own
// gate checks.
func RequireRole(logger *slog.Logger, roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if err := identity.Require(identity.PrincipalFromContext(ctx), roles...); err != nil {
				logger.WarnContext(ctx, "forbidden access - role mismatch",
					"error", err,
					"path", r.URL.Path,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"Insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
