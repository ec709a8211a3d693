package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pvolkov/shoply/internal/adapter/auth"
	"github.com/pvolkov/shoply/internal/core/domain"
)

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "application/json") &&
			!strings.HasPrefix(ct, "multipart/form-data") {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func Logging(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return http.HandlerFunc(hf)
}

type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type claimsCtxKey struct{}

// Authenticate verifies the bearer token and stores the claims in the
// request context. Handlers pull the claims out and hand the user id to
// services as an explicit argument.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondJSON(w, http.StatusUnauthorized, envelope{
					Message: "access denied",
					Errors:  []string{"no token provided"},
				})
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, envelope{
					Message: "invalid token",
					Errors:  []string{"token is invalid or expired"},
				})
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hf)
	}
}

// RequireAdmin allows only requests authenticated as an admin. Must be
// wrapped by [Authenticate].
func RequireAdmin(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r.Context())
		if !ok || claims.Role != domain.RoleAdmin {
			respondJSON(w, http.StatusForbidden, envelope{
				Message: "access denied",
				Errors:  []string{"admin privileges required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func claimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(auth.Claims)
	return claims, ok
}
