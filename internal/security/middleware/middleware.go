package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/auth"
	"github.com/yourorg/qaboard/internal/security/ratelimit"
)

type claimsContextKey struct{}

// isPublic reports whether a request requires no bearer token:
// health/metrics, the auth endpoints, and all reads of questions.
func isPublic(r *http.Request) bool {
	path := r.URL.Path
	if path == "/healthz" || path == "/readyz" || path == "/metrics" {
		return true
	}
	if strings.HasPrefix(path, "/api/auth/") {
		return true
	}
	if r.Method == http.MethodGet && strings.HasPrefix(path, "/api/questions") {
		return true
	}
	return false
}

// JWTMiddleware verifies the bearer token on every non-public request
// and attaches the claims to the request context. Missing or malformed
// headers are UNAUTHORIZED; bad or expired tokens carry their own code.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, domain.CodeUnauthorized, "missing bearer token")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeAuthError(w, domain.CodeUnauthorized, "invalid authorization header")
				return
			}

			claims, err := tm.Verify(tokenString)
			if err != nil {
				log.Debug("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				// Surface the stable code Verify produced so clients can
				// tell an expired token from a bad one.
				message := "invalid token"
				var de *domain.Error
				if errors.As(err, &de) {
					message = de.Message
				}
				writeAuthError(w, domain.CodeOf(err), message)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware limits write traffic per authenticated user.
// Public reads pass through; login gets its own strict limit keyed by
// remote address since there is no user identity yet.
func RateLimitMiddleware(limiter *ratelimit.Limiter, loginLimit int, loginWindow time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/register" {
				if !limiter.AllowStrict(remoteHost(r), loginLimit, loginWindow) {
					log.Warn("login rate limit exceeded", slog.String("remote", remoteHost(r)))
					http.Error(w, `{"code":"RATE_LIMITED","error":"too many attempts, slow down"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if !limiter.Allow(userID) {
				http.Error(w, `{"code":"RATE_LIMITED","error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the verified token claims, or nil for
// unauthenticated requests
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, "{\"code\":%q,\"error\":%q}\n", code, message)
}

func remoteHost(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
